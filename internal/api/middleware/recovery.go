package middleware

import (
	"errors"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"catalogfeed/internal/logger"

	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into a 500 JSON response. Panics caused by
// a client hanging up are dropped without a response.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if err, ok := recovered.(error); ok && isBrokenPipe(err) {
			c.Abort()
			return
		}

		log.Error("panic in %s %s (store=%q): %v", c.Request.Method, c.Request.URL.Path, c.Query("store"), recovered)
		if log.IsDebug() {
			log.Debug("%s", debug.Stack())
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}

func isBrokenPipe(err error) bool {
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if !errors.As(opErr.Err, &sysErr) {
		return false
	}
	msg := strings.ToLower(sysErr.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
