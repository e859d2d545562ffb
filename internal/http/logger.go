package http

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// redactedParams are query parameters whose values never reach the access log.
var redactedParams = []string{"token", "access_token", "password"}

// accessLogger is gin's access log with secrets scrubbed from the query string.
func accessLogger(out io.Writer) gin.HandlerFunc {
	if out == nil {
		out = gin.DefaultWriter
	}
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    out,
		Formatter: formatAccessLog,
	})
}

func formatAccessLog(p gin.LogFormatterParams) string {
	if p.Latency > time.Minute {
		p.Latency = p.Latency.Truncate(time.Second)
	}
	return fmt.Sprintf("[GIN] %v | %3d | %13v | %15s | %-7s %#v\n%s",
		p.TimeStamp.Format("2006/01/02 - 15:04:05"),
		p.StatusCode,
		p.Latency,
		p.ClientIP,
		p.Method,
		redactPath(p.Path),
		p.ErrorMessage,
	)
}

// redactPath replaces sensitive query values in a request path. Unparseable
// query strings are dropped entirely.
func redactPath(path string) string {
	base, rawQuery, found := strings.Cut(path, "?")
	if !found {
		return path
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return base + "?REDACTED"
	}
	for _, name := range redactedParams {
		if _, ok := query[name]; ok {
			query.Set(name, "REDACTED")
		}
	}
	return base + "?" + query.Encode()
}
