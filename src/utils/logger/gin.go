package logger

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const ginLoggerKey = "sublogger"

// Request-scoped logger, cached in gin's context
func LOG(c *gin.Context) (entry *logrus.Entry) {
	v, ok := c.Get(ginLoggerKey)
	if ok {
		return v.(*logrus.Entry)
	}

	entry = NewSublogger("server").
		WithField("method", c.Request.Method).
		WithField("path", c.FullPath())
	c.Set(ginLoggerKey, entry)
	return
}

// Aborts the request with the given status and returns the logger,
// so the caller can still attach a message
func LOGE(c *gin.Context, err error, status int) (entry *logrus.Entry) {
	entry = LOG(c)
	if err != nil {
		entry = entry.WithError(err)
		// Stored for gin middlewares
		_ = c.Error(err)
	}
	c.AbortWithStatus(status)
	return
}
