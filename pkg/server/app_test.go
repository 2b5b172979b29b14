package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinScope/internal/handler/cli"
	"CoinScope/internal/repository"
	"CoinScope/internal/service/charts"
	"CoinScope/internal/usecase"
	"CoinScope/pkg/config"
	xhttp "CoinScope/pkg/http"
	applogger "CoinScope/pkg/logger"
)

const csvBody = `SNo,Name,Symbol,Date,High,Low,Open,Close,Volume,Marketcap
1,Bitcoin,BTC,2021-01-04 23:59:59,1,1,1,100,10,1
2,Bitcoin,BTC,2021-01-05 23:59:59,1,1,1,110,20,1
`

func newTestApp(t *testing.T, dataDir string) (*App, int) {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Dir = dataDir
	l := applogger.Nop()

	store := repository.NewSeriesStore(repository.NewCSVSource(dataDir, "coin_*.csv"), nil)
	analyzer := usecase.NewAnalyzer(store, nil, usecase.DefaultAnalysisOptions())
	reloader, err := usecase.NewReloader(store, "")
	require.NoError(t, err)
	menu := cli.NewMenu(analyzer, charts.NewPlotter(), t.TempDir())

	port := freePort(t)
	srv := xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(port))
	return New(cfg, l, store, reloader, menu, srv), port
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func writeCSV(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coin_Bitcoin.csv"), []byte(csvBody), 0o644))
	return dir
}

func TestApp_MenuMode(t *testing.T) {
	app, _ := newTestApp(t, writeCSV(t))
	var out bytes.Buffer
	app.SetIO(strings.NewReader("0\n"), &out)

	require.NoError(t, app.Run(context.Background(), ModeMenu))
	assert.Contains(t, out.String(), "Select Option:")
	assert.Equal(t, []string{"BTC"}, app.store.Symbols())
}

func TestApp_UnknownMode(t *testing.T) {
	app, _ := newTestApp(t, writeCSV(t))
	err := app.Run(context.Background(), "daemon")
	assert.ErrorContains(t, err, "unknown mode")
}

func TestApp_ServeUntilCancelled(t *testing.T) {
	app, port := newTestApp(t, writeCSV(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, ModeServe) }()

	url := "http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(port)) + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, err == nil || errors.Is(err, context.Canceled), "unexpected error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
