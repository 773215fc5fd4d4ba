package fetcher

import (
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
)

type Option func(s *Service)

// WithFS sets the afs service used for all downloads.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithFsOptions sets storage options passed to every download, for example an
// embed.FS pointer backing embed:// locations.
func WithFsOptions(options ...storage.Option) Option {
	return func(s *Service) { s.fsOptions = options }
}

// WithTimeout bounds each individual download. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.timeout = timeout }
}

// WithRetry sets the bounded retry policy for transient remote failures.
func WithRetry(retry RetryConfig) Option {
	return func(s *Service) { s.retry = retry }
}
