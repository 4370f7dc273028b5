package es

import (
	"net/http"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// TracingTransport wraps the elasticsearch client transport so every search
// call shows up as a client span under the request's server span.
type TracingTransport struct {
	Transport http.RoundTripper
}

func (t *TracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	parentSpan := opentracing.SpanFromContext(req.Context())
	if parentSpan == nil {
		return t.Transport.RoundTrip(req)
	}

	tracer := parentSpan.Tracer()
	span := tracer.StartSpan("elasticsearch "+req.Method+" "+req.URL.Path, opentracing.ChildOf(parentSpan.Context()))
	defer span.Finish()

	ext.SpanKindRPCClient.Set(span)
	ext.HTTPMethod.Set(span, req.Method)
	ext.HTTPUrl.Set(span, req.URL.String())
	ext.DBType.Set(span, "elasticsearch")

	tracer.Inject(span.Context(), opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(req.Header))

	res, err := t.Transport.RoundTrip(req)
	if err != nil {
		ext.Error.Set(span, true)
		return res, err
	}
	ext.HTTPStatusCode.Set(span, uint16(res.StatusCode))
	ext.Error.Set(span, res.StatusCode >= 400)
	return res, err
}
