package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingOptions customises the tracing middleware.
type TracingOptions struct {
	ServiceName    string
	TracerProvider trace.TracerProvider
	Propagators    propagation.TextMapPropagator
}

// Tracing opens a server span per request, continuing any W3C trace context
// sent by the caller. Without options it uses the global provider.
func Tracing(opts TracingOptions) gin.HandlerFunc {
	name := opts.ServiceName
	if name == "" {
		name = "devclub-api"
	}

	options := make([]otelgin.Option, 0, 2)
	if opts.TracerProvider != nil {
		options = append(options, otelgin.WithTracerProvider(opts.TracerProvider))
	}
	if opts.Propagators != nil {
		options = append(options, otelgin.WithPropagators(opts.Propagators))
	}
	return otelgin.Middleware(name, options...)
}
