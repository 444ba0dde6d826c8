package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/interact"
)

// DataResponse is the envelope of every successful admin API response.
type DataResponse struct {
	Data    any             `json:"data"`
	Notices []domain.Notice `json:"notices,omitempty"`
}

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data, Notices: noticesFrom(c)})
}

func noticesFrom(c *gin.Context) []domain.Notice {
	collector, ok := interact.CollectorFromContext(c.Request.Context())
	if !ok {
		return nil
	}
	return collector.Notices()
}
