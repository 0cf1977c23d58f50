package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const genericErrorMessage = "Internal server error"

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// errorBody hides err from clients in production; elsewhere it carries the
// error text and, when available, its stack.
func errorBody(err error, stack string, production bool, publicMessage string) gin.H {
	if production {
		if publicMessage == "" {
			publicMessage = genericErrorMessage
		}
		return gin.H{"error": publicMessage}
	}

	body := gin.H{"error": err.Error()}
	if stack != "" {
		body["stack"] = stack
	}
	return body
}

func stackOf(err error) string {
	var st stackTracer
	if errors.As(err, &st) {
		return fmt.Sprintf("%+v", st.StackTrace())
	}
	return ""
}

// ErrorHandler turns errors attached with c.Error into a 500 response. A
// string set as the error's meta is used as the production message.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		publicMessage, _ := last.Meta.(string)

		logrus.WithFields(logrus.Fields{
			"request_id": GetRequestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).Errorf("%s: %+v", publicMessage, last.Err)

		c.JSON(http.StatusInternalServerError, errorBody(last.Err, stackOf(last.Err), production, publicMessage))
	}
}

// Recovery converts panics into the same 500 body ErrorHandler produces.
func Recovery(production bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", recovered)
		}
		stack := string(debug.Stack())

		logrus.WithFields(logrus.Fields{
			"request_id": GetRequestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).Errorf("Recovered from panic: %v\n%s", err, stack)

		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(err, stack, production, ""))
	})
}
