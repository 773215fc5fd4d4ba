package cwlpack

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"

	"github.com/cwlpack/cwlpack/service/fetcher"
	"github.com/cwlpack/cwlpack/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Option func(s *Service)

// WithFS sets the afs service used for every read and write.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithFsOptions sets storage options passed to every file system call.
func WithFsOptions(options ...storage.Option) Option {
	return func(s *Service) { s.fsOptions = options }
}

// WithTimeout sets the per-document fetch timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.timeout = timeout }
}

// WithRetry sets the retry policy applied to remote fetches.
func WithRetry(retry fetcher.RetryConfig) Option {
	return func(s *Service) { s.retry = retry }
}

// WithLogger sets the structured logger; by default logging is discarded.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAddIDs makes Pack insert an id into the root process when the source
// declares none and the output is a single-process document.
func WithAddIDs(addIDs bool) Option {
	return func(s *Service) { s.addIDs = addIDs }
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times – the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter. This enables
// integrations with exporters other than the built-in stdout exporter, for example OTLP, Jaeger or
// Zipkin. The function is safe to call multiple times – the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
