package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS 为浏览器客户端放开跨域访问。
// 通配 Origin 不能与 Allow-Credentials 同时使用, 接口无认证, 不下发凭据头。
// 生产部署时应将 Access-Control-Allow-Origin 收紧为前端域名。
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
