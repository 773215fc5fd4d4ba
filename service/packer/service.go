package packer

import (
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
)

type Service struct {
	fs        afs.Service
	fsOptions []storage.Option
	addIDs    bool
}

// New creates a new packer service instance.
func New(opts ...Option) *Service {
	ret := &Service{fs: afs.New()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

type Option func(s *Service)

// WithFS sets the afs service used to write unpacked files.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithFsOptions sets storage options passed to every write.
func WithFsOptions(options ...storage.Option) Option {
	return func(s *Service) { s.fsOptions = options }
}

// WithAddIDs makes Assemble insert an id into the root process when the
// source document declares none and the output is not a $graph document.
func WithAddIDs(addIDs bool) Option {
	return func(s *Service) { s.addIDs = addIDs }
}
