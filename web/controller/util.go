package controller

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sensorlab/doorwatch/database/model"
	"github.com/sensorlab/doorwatch/web/entity"
)

// getRemoteIp extracts the real client address from proxy headers or the
// remote address, for login audit logging.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return ips[0]
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

func toUserOut(u *model.User) entity.UserOut {
	return entity.UserOut{
		Id:        u.Id,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
