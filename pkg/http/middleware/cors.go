package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodOptions}, ", ")
	corsHeaders = strings.Join([]string{echo.HeaderOrigin, echo.HeaderAccept, echo.HeaderXRequestID}, ", ")
)

// CORS allows cross-origin reads of the API from origins ("*" for any).
// Requests from other origins pass through without CORS headers; preflights
// from allowed origins are answered with 204.
func CORS(origins []string, maxAgeSec int) echo.MiddlewareFunc {
	anyOrigin := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			anyOrigin = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Add(echo.HeaderVary, echo.HeaderOrigin)

			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin == "" || !(anyOrigin || allowed[origin]) {
				return next(c)
			}

			h.Set(echo.HeaderAccessControlAllowOrigin, origin)
			h.Set(echo.HeaderAccessControlExposeHeaders, echo.HeaderXRequestID)
			if c.Request().Method != http.MethodOptions {
				return next(c)
			}

			h.Set(echo.HeaderAccessControlAllowMethods, corsMethods)
			h.Set(echo.HeaderAccessControlAllowHeaders, corsHeaders)
			if maxAgeSec > 0 {
				h.Set(echo.HeaderAccessControlMaxAge, strconv.Itoa(maxAgeSec))
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}
