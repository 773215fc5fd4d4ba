package cwlpack

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"

	"github.com/cwlpack/cwlpack/internal/yml"
	"github.com/cwlpack/cwlpack/model"
	"github.com/cwlpack/cwlpack/service/dedup"
	"github.com/cwlpack/cwlpack/service/fetcher"
	"github.com/cwlpack/cwlpack/service/normalizer"
	"github.com/cwlpack/cwlpack/service/packer"
	"github.com/cwlpack/cwlpack/service/walker"
	"github.com/cwlpack/cwlpack/tracing"
)

// Service is the packing façade. It owns the fetch cache, the graph walker
// and the document assembler; a single instance is safe to reuse across
// consecutive Pack calls.
type Service struct {
	fs        afs.Service
	fsOptions []storage.Option
	logger    *log.Logger
	timeout   time.Duration
	retry     fetcher.RetryConfig
	addIDs    bool

	fetcher *fetcher.Service
	walker  *walker.Service
	packer  *packer.Service
}

// New creates a new packing service.
func New(options ...Option) *Service {
	ret := &Service{fs: afs.New(), logger: log.New(io.Discard)}
	for _, option := range options {
		option(ret)
	}
	ret.ensureBaseSetup()
	return ret
}

func (s *Service) ensureBaseSetup() {
	fetcherOptions := []fetcher.Option{fetcher.WithFS(s.fs)}
	if len(s.fsOptions) > 0 {
		fetcherOptions = append(fetcherOptions, fetcher.WithFsOptions(s.fsOptions...))
	}
	if s.timeout > 0 {
		fetcherOptions = append(fetcherOptions, fetcher.WithTimeout(s.timeout))
	}
	if s.retry.Attempts > 0 {
		fetcherOptions = append(fetcherOptions, fetcher.WithRetry(s.retry))
	}
	s.fetcher = fetcher.New(fetcherOptions...)
	s.walker = walker.New(walker.WithFetcher(s.fetcher), walker.WithLogger(s.logger))
	s.packer = packer.New(
		packer.WithFS(s.fs),
		packer.WithFsOptions(s.fsOptions...),
		packer.WithAddIDs(s.addIDs))
}

// Pack resolves the workflow rooted at the given location and returns it as
// one self-contained document. The input files are never modified. Packing
// an already packed document returns a copy of it unchanged.
func (s *Service) Pack(ctx context.Context, location string) (*yml.Node, error) {
	ctx, span := tracing.StartSpan(ctx, "pack", "SERVER")
	var err error
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"location": location})

	var root model.Location
	if root, err = s.rootLocation(location); err != nil {
		return nil, err
	}
	s.fetcher.Reset()

	var doc *yml.Node
	if doc, err = s.fetcher.Fetch(ctx, root.Document()); err != nil {
		return nil, err
	}
	var packed *yml.Node
	packed, err = s.packRoot(ctx, root, doc, location)
	return packed, err
}

// PackDocument packs an already parsed root document. The location anchors
// relative references inside it; the document itself is never fetched.
func (s *Service) PackDocument(ctx context.Context, doc *yml.Node, location string) (*yml.Node, error) {
	ctx, span := tracing.StartSpan(ctx, "pack", "SERVER")
	var err error
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"location": location})

	var root model.Location
	if root, err = s.rootLocation(location); err != nil {
		return nil, err
	}
	s.fetcher.Reset()
	s.fetcher.Seed(root, doc.Clone())

	var packed *yml.Node
	packed, err = s.packRoot(ctx, root, doc, location)
	return packed, err
}

func (s *Service) packRoot(ctx context.Context, root model.Location, doc *yml.Node, location string) (*yml.Node, error) {
	if packer.IsPacked(doc) {
		s.logger.Info("document already packed", "location", location)
		return doc.Clone(), nil
	}

	var err error
	var graph *model.Graph
	if graph, err = s.walker.Walk(ctx, root); err != nil {
		return nil, err
	}
	var result *normalizer.Result
	if result, err = normalizer.Normalize(graph); err != nil {
		return nil, err
	}
	result.Defs = dedup.Dedupe(graph, result.Defs)

	var packed *yml.Node
	if packed, err = s.packer.Assemble(graph, result); err != nil {
		return nil, err
	}
	s.logger.Info("packed",
		"location", location,
		"processes", len(result.Processes())+1,
		"schemas", len(result.Schemas()),
		"fetches", s.fetcher.FetchCount())
	return packed, nil
}

// Unpack splits a packed document into standalone files under targetDir and
// returns the relative paths written.
func (s *Service) Unpack(ctx context.Context, doc *yml.Node, targetDir string) ([]string, error) {
	return s.packer.Unpack(ctx, doc, targetDir)
}

// rootLocation turns the user supplied location into an absolute one, so
// relative references inside the root document resolve regardless of the
// process working directory.
func (s *Service) rootLocation(location string) (model.Location, error) {
	loc := model.ParseLocation(location)
	if strings.TrimSpace(loc.URL) == "" {
		return model.Location{}, &model.InvalidReferenceError{Reference: location, Reason: "empty document location"}
	}
	if !strings.Contains(loc.URL, "://") && !filepath.IsAbs(loc.URL) {
		abs, err := filepath.Abs(loc.URL)
		if err != nil {
			return model.Location{}, err
		}
		loc.URL = abs
	}
	return loc, nil
}
