package middleware

import (
	"fmt"
	"time"

	"catalogfeed/internal/logger"

	"github.com/gin-gonic/gin"
)

// Logger writes one access line per request. Requests are logged at info
// level, so a warn or error level logger silences them.
func Logger(log *logger.Logger) gin.HandlerFunc {
	formatter := func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] %s %s %d %s %s\n",
			param.TimeStamp.Format(time.RFC3339),
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency,
			param.ClientIP,
		)
	}
	if !log.IsInfo() {
		return func(c *gin.Context) { c.Next() }
	}
	return gin.LoggerWithFormatter(formatter)
}
