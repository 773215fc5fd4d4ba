// Package tracing is a thin wrapper around OpenTelemetry tracing so that the
// rest of the code base can instrument pack, walk and fetch operations
// without importing the upstream packages directly. Until Init is called all
// spans are no-ops.
package tracing
