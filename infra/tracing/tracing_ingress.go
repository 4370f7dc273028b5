package tracing

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// TracingIngress opens a server span for every inbound request, continuing
// the trace when the caller carried one in its headers.
func TracingIngress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tracer := opentracing.GlobalTracer()
		carrier := opentracing.HTTPHeadersCarrier(ctx.Request.Header)
		parentCtx, _ := tracer.Extract(opentracing.HTTPHeaders, carrier)

		operation := ctx.Request.Method + " " + ctx.FullPath()
		span := tracer.StartSpan(operation, ext.RPCServerOption(parentCtx))
		ext.HTTPMethod.Set(span, ctx.Request.Method)
		ext.HTTPUrl.Set(span, ctx.Request.RequestURI)

		ctx.Request = ctx.Request.WithContext(opentracing.ContextWithSpan(ctx.Request.Context(), span))
		ctx.Next()

		ext.HTTPStatusCode.Set(span, uint16(ctx.Writer.Status()))
		if ctx.Writer.Status() >= 500 {
			ext.Error.Set(span, true)
			span.SetTag("error.count", strconv.Itoa(len(ctx.Errors)))
		}
		span.Finish()
	}
}
