package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/endpoint"

	"github.com/flarexio/faqbot"
)

const failedQueryMessage = "Failed to process query"

func QueryHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req faqbot.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Error(err)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, req)
		if err != nil {
			c.Error(err)
			c.Abort()

			if errors.Is(err, faqbot.ErrInvalidQuery) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			c.JSON(http.StatusInternalServerError, gin.H{"error": failedQueryMessage})
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

type HealthResponse struct {
	Status    string       `json:"status"`
	Index     faqbot.State `json:"index"`
	Documents int          `json:"documents"`
}

func HealthHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		resp, err := endpoint(ctx, nil)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			c.Error(err)
			c.Abort()
			return
		}

		state, ok := resp.(faqbot.StateResponse)
		if !ok {
			err := errors.New("invalid response type")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			c.Error(err)
			c.Abort()
			return
		}

		c.JSON(http.StatusOK, HealthResponse{
			Status:    "ok",
			Index:     state.State,
			Documents: state.Documents,
		})
	}
}
