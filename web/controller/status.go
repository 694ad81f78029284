package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sensorlab/doorwatch/database/model"
	"github.com/sensorlab/doorwatch/web/entity"
	"github.com/sensorlab/doorwatch/web/middleware"
	"github.com/sensorlab/doorwatch/web/service"
)

type StatusController struct {
	statusService *service.StatusService
}

// NewStatusController registers the ingest endpoint and the role-gated
// status queries. Ingest is deliberately unauthenticated: the agent
// channel is treated as trusted network-internal traffic.
func NewStatusController(g *gin.RouterGroup, authService *service.AuthService, userService *service.UserService) *StatusController {
	s := &StatusController{statusService: &service.StatusService{}}

	g.POST("/shelly", s.ingest)

	status := g.Group("/door-status")
	status.Use(middleware.TokenAuth(authService, userService))
	{
		status.GET("/latest", s.latest)

		history := status.Group("")
		history.Use(middleware.RoleRequired(string(model.RoleAuditor), string(model.RoleAdmin)))
		{
			history.GET("/history", s.history)
		}
	}

	return s
}

func (s *StatusController) ingest(c *gin.Context) {
	var payload entity.DevicePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	snapshot, err := s.statusService.Ingest(&payload)
	if err != nil {
		if errors.Is(err, service.ErrMalformedPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store status"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": snapshot.Id})
}

func (s *StatusController) latest(c *gin.Context) {
	out, err := s.statusService.Latest()
	if err != nil {
		if errors.Is(err, service.ErrNoStatus) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no status recorded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load status"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *StatusController) history(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		limit = parsed
	}

	snapshots, err := s.statusService.History(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	if snapshots == nil {
		snapshots = []model.StatusSnapshot{}
	}
	c.JSON(http.StatusOK, snapshots)
}
