package tracing

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HTTPMiddleware opens a span for every local API request. An incoming
// X-Request-ID is reused as the trace id and echoed in the response.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if incoming := c.GetHeader(HeaderTraceID); incoming != "" {
			ctx = context.WithValue(ctx, traceIDKey, TraceID(incoming))
		}

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+name)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderTraceID, string(span.TraceID))

		c.Next()

		span.SetStatus(c.Writer.Status())
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		} else if c.Writer.Status() >= http.StatusInternalServerError {
			span.SetError(errStatus(c.Writer.Status()))
		}
		span.Finish()
		tracer.Submit(span)
	}
}

type errStatus int

func (e errStatus) Error() string {
	return http.StatusText(int(e))
}
