package service

import "CoinScope/internal/domain/models"

// Plotter renders presentation artifacts to encoded images.
type Plotter interface {
	Line(chart *models.LineChart) ([]byte, error)
	Heatmap(h *models.Heatmap) ([]byte, error)
	Seasonality(s *models.Seasonality) ([]byte, error)
}
