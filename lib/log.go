package lib

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
)

// JsonLogFormatter renders gin access logs as one JSON object per line, matching the
// zerolog output of the rest of the service.
func JsonLogFormatter(params gin.LogFormatterParams) string {
	logline := map[string]interface{}{
		"level":   "info",
		"time":    params.TimeStamp.UTC().Format("2006-01-02T15:04:05.999"),
		"status":  params.StatusCode,
		"latency": params.Latency.String(),
		"client":  params.ClientIP,
		"method":  params.Method,
		"path":    params.Path,
		"bytes":   params.BodySize,
	}
	if params.StatusCode >= 500 {
		logline["level"] = "error"
	}
	if params.ErrorMessage != "" {
		logline["error"] = params.ErrorMessage
	}
	if len(params.Keys) > 0 {
		logline["context"] = params.Keys
	}
	b, _ := json.Marshal(logline)
	return string(b) + "\n"
}
