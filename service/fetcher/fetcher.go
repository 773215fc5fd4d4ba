// Package fetcher retrieves and parses documents by absolute location, from
// the local filesystem or over the network, through the afs abstraction.
//
// Content is cached by document location for the duration of one run: the
// cache is write-once per key, so every distinct location is downloaded at
// most once no matter how many references point at it.
package fetcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"

	"github.com/cwlpack/cwlpack/internal/clock"
	"github.com/cwlpack/cwlpack/internal/yml"
	"github.com/cwlpack/cwlpack/model"
	"github.com/cwlpack/cwlpack/service/resolver"
	"github.com/cwlpack/cwlpack/tracing"
)

// RetryConfig bounds re-attempts for transient network failures. Local reads
// are never retried.
type RetryConfig struct {
	Attempts int
	Backoff  time.Duration
}

type entry struct {
	downloadOnce sync.Once
	parseOnce    sync.Once
	location     model.Location
	raw          []byte
	node         *yml.Node
	downloadErr  error
	parseErr     error
}

type Service struct {
	fs        afs.Service
	resolver  *resolver.Service
	fsOptions []storage.Option
	timeout   time.Duration
	retry     RetryConfig

	mux        sync.Mutex
	entries    map[string]*entry
	fetchCount int64
}

// New creates a new fetcher service instance.
func New(opts ...Option) *Service {
	ret := &Service{
		fs:       afs.New(),
		resolver: resolver.New(),
		timeout:  30 * time.Second,
		retry:    RetryConfig{Attempts: 1, Backoff: 500 * time.Millisecond},
		entries:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Reset invalidates the cache. Called at the start of each top-level pack or
// unpack invocation so that no staleness crosses runs.
func (s *Service) Reset() {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.entries = make(map[string]*entry)
	atomic.StoreInt64(&s.fetchCount, 0)
}

// FetchCount returns the number of downloads attempted since the last Reset,
// failed ones included. Bounded retries of one download count once.
func (s *Service) FetchCount() int64 {
	return atomic.LoadInt64(&s.fetchCount)
}

// Seed registers an already parsed document under the given location; a
// subsequent Fetch for that document returns it without touching storage.
func (s *Service) Seed(location model.Location, node *yml.Node) {
	document := location.Document()
	e := &entry{location: document, node: node}
	e.downloadOnce.Do(func() {})
	e.parseOnce.Do(func() {})
	s.mux.Lock()
	s.entries[document.URL] = e
	s.mux.Unlock()
}

// Fetch returns the parsed document at the given location. The fragment, if
// any, is not applied; use ExtractFragment on the result.
func (s *Service) Fetch(ctx context.Context, location model.Location) (*yml.Node, error) {
	e, err := s.download(ctx, location.Document())
	if err != nil {
		return nil, err
	}
	e.parseOnce.Do(func() {
		node, parseErr := yml.Parse(e.raw)
		if parseErr != nil {
			e.parseErr = &model.ParseError{Location: e.location, Err: parseErr}
			return
		}
		e.node = node
	})
	if e.parseErr != nil {
		return nil, e.parseErr
	}
	return e.node, nil
}

// FetchText returns the raw content at the given location without parsing.
// Used for include-style splicing where content is opaque.
func (s *Service) FetchText(ctx context.Context, location model.Location) (string, error) {
	e, err := s.download(ctx, location.Document())
	if err != nil {
		return "", err
	}
	return string(e.raw), nil
}

// download returns the cache entry for a document location, fetching at most
// once per key. The check-and-mark is atomic; concurrent callers share one
// in-flight download.
func (s *Service) download(ctx context.Context, location model.Location) (*entry, error) {
	key := location.URL
	s.mux.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{location: location}
		s.entries[key] = e
	}
	s.mux.Unlock()

	e.downloadOnce.Do(func() {
		ctx, span := tracing.StartSpan(ctx, "fetch", "CLIENT")
		defer func() { tracing.EndSpan(span, e.downloadErr) }()
		e.raw, e.location, e.downloadErr = s.doDownload(ctx, location, 0)
	})
	if e.downloadErr != nil {
		return nil, e.downloadErr
	}
	return e, nil
}

const maxLinkDepth = 10

func (s *Service) doDownload(ctx context.Context, location model.Location, depth int) ([]byte, model.Location, error) {
	if depth > maxLinkDepth {
		return nil, location, &model.FetchError{Location: location, Err: errTooManyLinks}
	}
	atomic.AddInt64(&s.fetchCount, 1)
	data, err := s.downloadWithRetry(ctx, location)
	if err != nil {
		return nil, location, err
	}

	// A remote file whose whole body is a single extension-bearing line is a
	// github symbolic link; follow it.
	if target, ok := symbolicLink(location, data); ok {
		resolved, rerr := s.resolver.Resolve(target, location)
		if rerr != nil {
			return nil, location, rerr
		}
		return s.doDownload(ctx, resolved, depth+1)
	}
	return data, location, nil
}

func (s *Service) downloadWithRetry(ctx context.Context, location model.Location) ([]byte, error) {
	attempts := s.retry.Attempts
	if attempts < 1 || !location.IsRemote() {
		attempts = 1
	}
	backoff := s.retry.Backoff
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			clock.Sleep(ctx, backoff)
			backoff *= 2
		}
		data, err := s.downloadOnce(ctx, location)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, &model.FetchError{Location: location, Err: lastErr}
}

func (s *Service) downloadOnce(ctx context.Context, location model.Location) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.fs.DownloadWithURL(ctx, location.URL, s.fsOptions...)
}

// ExtractFragment selects a named sub-element from a parsed document. A
// fragment matches an element whose name or id equals the fragment text.
func ExtractFragment(location model.Location, node *yml.Node, fragment string) (*yml.Node, error) {
	if fragment == "" {
		return node, nil
	}
	if found := findNamed(node, fragment); found != nil {
		return found, nil
	}
	return nil, &model.FragmentNotFoundError{Location: location.Document(), Fragment: fragment}
}

func findNamed(node *yml.Node, fragment string) *yml.Node {
	if node == nil {
		return nil
	}
	node = node.Root()
	if isSequence(node) {
		var found *yml.Node
		_ = node.Items(func(index int, item *yml.Node) error {
			if found == nil && matchesName(item, fragment) {
				found = item
			}
			return nil
		})
		return found
	}
	if matchesName(node, fragment) {
		return node
	}
	if graph := node.Lookup("$graph"); graph != nil {
		return findNamed(graph, fragment)
	}
	return nil
}

func matchesName(node *yml.Node, fragment string) bool {
	name := node.LookupString("name")
	id := strings.TrimPrefix(node.LookupString("id"), "#")
	return name == fragment || id == fragment
}

func isSequence(node *yml.Node) bool {
	return node != nil && node.Tag == "!!seq"
}

var errTooManyLinks = errors.New("too many levels of symbolic links")

// symbolicLink detects the github symbolic link convention: a remote body
// that is a single line, carries no newline and contains a dot.
func symbolicLink(location model.Location, contents []byte) (string, bool) {
	if !location.IsRemote() {
		return "", false
	}
	text := string(contents)
	if strings.Contains(text, "\n") {
		return "", false
	}
	if !strings.Contains(text, ".") {
		return "", false
	}
	return strings.TrimSpace(text), true
}
