package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const ClientAddressKey = "client_address"

var forwardedHeaders = []string{"X-Forwarded-For", "X-Real-IP", "CF-Connecting-IP"}

// ClientAddress records the caller address reported by the fronting proxy,
// falling back to the connection's remote address.
func ClientAddress() gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := ""
		for _, h := range forwardedHeaders {
			if v := c.GetHeader(h); v != "" {
				// X-Forwarded-For may carry a chain; the first hop is the client
				addr = strings.TrimSpace(strings.Split(v, ",")[0])
				break
			}
		}
		if addr == "" {
			addr = c.RemoteIP()
		}
		c.Set(ClientAddressKey, addr)
		c.Next()
	}
}
