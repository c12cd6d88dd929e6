package api

import (
	"errors"

	"stocktagger/internal/domain"

	"github.com/gin-gonic/gin"
)

type predictResponse struct {
	Ticker string          `json:"ticker"`
	Labels map[string]bool `json:"labels"`
}

func (m ApiHandler) predict(c *gin.Context) {
	prediction, err := m.InferenceService.Predict(c.Request.Context(), c.Query("ticker"))

	invalidTicker := domain.InvalidTickerError{}
	notFound := domain.TickerNotFoundError{}
	if errors.As(err, &invalidTicker) {
		returnErrorJsonCode(err, c, 400)
		return
	}
	if errors.As(err, &notFound) {
		returnErrorJsonCode(err, c, 404)
		return
	}
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, predictResponse{
		Ticker: prediction.Ticker,
		Labels: prediction.Labels,
	})
}
