// Package controller provides the HTTP handlers of the collector API:
// token issuance, user management and device-status ingestion/queries.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sensorlab/doorwatch/logger"
	"github.com/sensorlab/doorwatch/web/entity"
	"github.com/sensorlab/doorwatch/web/service"
)

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(g *gin.RouterGroup, authService *service.AuthService) *AuthController {
	a := &AuthController{authService: authService}

	g.POST("/token", a.token)
	g.POST("/token/refresh", a.refresh)

	return a
}

// token exchanges form credentials for a bearer token pair. Failures are
// reported with a single generic message so usernames cannot be probed.
func (a *AuthController) token(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	access, refresh, err := a.authService.Login(username, password)
	if err != nil {
		logger.Infof("failed login for %q from %s", username, getRemoteIp(c))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	c.JSON(http.StatusOK, entity.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (a *AuthController) refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	access, err := a.authService.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authentication credentials"})
		return
	}

	c.JSON(http.StatusOK, entity.TokenResponse{
		AccessToken: access,
		TokenType:   "bearer",
	})
}
