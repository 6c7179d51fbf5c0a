package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/endpoint"

	"github.com/flarexio/faqbot"
	"github.com/flarexio/faqbot/history"
)

func historyStatus(err error) int {
	if errors.Is(err, history.ErrInvalidRecord) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func ListHistoryHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(string(faqbot.UserID))

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, userID)
		if err != nil {
			c.JSON(historyStatus(err), gin.H{"message": "Failed to fetch history"})
			c.Error(err)
			c.Abort()
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func CreateHistoryHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req history.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			c.Error(err)
			c.Abort()
			return
		}

		req.UserID = c.GetString(string(faqbot.UserID))

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, req)
		if err != nil {
			c.JSON(historyStatus(err), gin.H{"message": "Failed to save history"})
			c.Error(err)
			c.Abort()
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func SuggestionsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req history.SuggestionsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			c.Error(err)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch suggestions"})
			c.Error(err)
			c.Abort()
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}
