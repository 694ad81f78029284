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

type UserController struct {
	userService *service.UserService
}

// NewUserController registers the user management endpoints. Account
// CRUD is admin only; any authenticated caller may inspect itself.
func NewUserController(g *gin.RouterGroup, authService *service.AuthService, userService *service.UserService) *UserController {
	u := &UserController{userService: userService}

	users := g.Group("/users")
	users.Use(middleware.TokenAuth(authService, userService))
	{
		users.GET("/me", u.me)

		admin := users.Group("")
		admin.Use(middleware.RoleRequired(string(model.RoleAdmin)))
		{
			admin.GET("", u.list)
			admin.POST("", u.create)
			admin.DELETE("/:id", u.delete)
		}
	}

	return u
}

func (u *UserController) list(c *gin.Context) {
	users, err := u.userService.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	out := make([]entity.UserOut, 0, len(users))
	for i := range users {
		out = append(out, toUserOut(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

type createUserReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

func (u *UserController) create(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleViewer
	}

	user, err := u.userService.CreateUser(req.Username, req.Password, role)
	switch {
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
		return
	case errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, toUserOut(user))
}

func (u *UserController) delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if err := u.userService.DeleteUser(id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (u *UserController) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":       c.GetInt(middleware.CtxUserId),
		"username": c.GetString(middleware.CtxUsername),
		"role":     c.GetString(middleware.CtxRole),
	})
}
