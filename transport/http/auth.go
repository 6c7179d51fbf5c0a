package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/endpoint"

	"github.com/flarexio/faqbot"
	"github.com/flarexio/faqbot/auth"
)

const TokenCookie = "token"

type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithAuthError(c *gin.Context, err error) {
	status := authStatus(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Authentication failed"
	}

	c.JSON(status, gin.H{"message": message})
	c.Error(err)
	c.Abort()
}

func SignupHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			c.Error(err)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, req)
		if err != nil {
			abortWithAuthError(c, err)
			return
		}

		c.JSON(http.StatusCreated, &resp)
	}
}

func LoginHandler(endpoint endpoint.Endpoint, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			c.Error(err)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, req)
		if err != nil {
			abortWithAuthError(c, err)
			return
		}

		login, ok := resp.(auth.LoginResponse)
		if !ok {
			err := errors.New("invalid response type")
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			c.Error(err)
			c.Abort()
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(TokenCookie, login.Token, int(cookie.MaxAge.Seconds()), "/", "", cookie.Secure, true)
		c.JSON(http.StatusOK, &login)
	}
}

func LogoutHandler(cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(TokenCookie, "", -1, "/", "", cookie.Secure, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

func VerifyHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(TokenCookie)
		if err != nil || token == "" {
			abortWithAuthError(c, auth.ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, token)
		if err != nil {
			abortWithAuthError(c, err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

// Authenticated verifies the session cookie and stores the user ID in the
// gin context under faqbot.UserID.
func Authenticated(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(TokenCookie)
		if err != nil || token == "" {
			abortWithAuthError(c, auth.ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, token)
		if err != nil {
			abortWithAuthError(c, err)
			return
		}

		user, ok := resp.(auth.UserResponse)
		if !ok {
			abortWithAuthError(c, errors.New("invalid response type"))
			return
		}

		c.Set(string(faqbot.UserID), user.User.ID)
		c.Next()
	}
}
