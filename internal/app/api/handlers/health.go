package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/travelpay/pkg/response"
)

// HealthCheck reports whether a dependency is reachable. Nil means healthy.
type HealthCheck func(ctx context.Context) error

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// @Summary      Health check
// @Description  Returns service status and database reachability
// @Tags         System
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Failure      503  {object}  handlers.RespOK
// @Router       /healthz [get]
func Healthz(db HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, response.OKT(healthStatus{Status: "ok"}))
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, response.ErrorT(response.APIResponseCodeError, healthStatus{Status: "degraded", Database: err.Error()}))
			return
		}
		c.JSON(http.StatusOK, response.OKT(healthStatus{Status: "ok", Database: "ok"}))
	}
}

func RegisterHealthRoutes(r gin.IRouter, db HealthCheck) {
	r.GET("/healthz", Healthz(db))
}
