package walker

import (
	"github.com/charmbracelet/log"

	"github.com/cwlpack/cwlpack/service/fetcher"
)

type Option func(s *Service)

// WithFetcher sets the document fetcher shared with the rest of the pipeline.
func WithFetcher(service *fetcher.Service) Option {
	return func(s *Service) { s.fetcher = service }
}

// WithLogger sets the progress logger. The default logger discards output.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}
