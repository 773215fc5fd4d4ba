// Package walker traverses a root document's structure, discovers every
// outgoing reference, resolves each one and builds the in-memory graph of
// resolved nodes that the normalizer and deduplicator operate on.
//
// The traversal is depth first with fields visited in declared order, so node
// discovery order is deterministic for unchanged input. Each distinct
// location is processed once; re-references share the already-built node. A
// location revisited while still on the recursion stack is a cycle and aborts
// the walk.
package walker

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/cwlpack/cwlpack/internal/yml"
	"github.com/cwlpack/cwlpack/model"
	"github.com/cwlpack/cwlpack/service/fetcher"
	"github.com/cwlpack/cwlpack/service/resolver"
	"github.com/cwlpack/cwlpack/tracing"
)

type Service struct {
	resolver *resolver.Service
	fetcher  *fetcher.Service
	logger   *log.Logger
}

// New creates a new walker service instance.
func New(opts ...Option) *Service {
	ret := &Service{
		resolver: resolver.New(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.fetcher == nil {
		ret.fetcher = fetcher.New()
	}
	return ret
}

// Walk resolves the complete reference graph rooted at the given location.
// Any failure aborts the whole walk; no partial graph is returned.
func (s *Service) Walk(ctx context.Context, root model.Location) (*model.Graph, error) {
	ctx, span := tracing.StartSpan(ctx, "walk", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	w := &walk{s: s, graph: model.NewGraph()}
	var doc *yml.Node
	if doc, err = w.fetchProcess(ctx, root); err != nil {
		return nil, err
	}
	if _, err = w.walkProcess(ctx, root, doc, nil); err != nil {
		return nil, err
	}
	return w.graph, nil
}

// walk holds the mutable state of one traversal.
type walk struct {
	s     *Service
	graph *model.Graph
	stack []model.Location
}

// fetchProcess retrieves a document, applies the fragment and returns a deep
// copy that the walk is free to mutate.
func (w *walk) fetchProcess(ctx context.Context, location model.Location) (*yml.Node, error) {
	doc, err := w.s.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	part, err := fetcher.ExtractFragment(location, doc, location.Fragment)
	if err != nil {
		return nil, err
	}
	return part.Clone(), nil
}

func (w *walk) onStack(location model.Location) bool {
	for _, entry := range w.stack {
		if entry == location {
			return true
		}
	}
	return false
}

// walkProcess resolves one process document and everything it references.
// The document node is owned by the resulting graph node and mutated in
// place.
func (w *walk) walkProcess(ctx context.Context, location model.Location, doc *yml.Node, parentTypes *typeRegistry) (*model.Node, error) {
	if w.onStack(location) {
		return nil, &model.CyclicReferenceError{Location: location, Stack: append([]model.Location{}, w.stack...)}
	}
	if existing := w.graph.Lookup(location); existing != nil {
		return existing, nil
	}

	node := &model.Node{
		Location: location,
		Kind:     model.KindProcess,
		Content:  doc,
		Class:    doc.LookupString("class"),
		Version:  doc.LookupString("cwlVersion"),
	}
	w.graph.Add(node)
	w.graph.Version = maxVersion(w.graph.Version, node.Version)

	w.stack = append(w.stack, location)
	defer func() { w.stack = w.stack[:len(w.stack)-1] }()

	canonicalize(doc)

	types, err := w.harvestSchemaDefs(ctx, doc, location, parentTypes)
	if err != nil {
		return nil, err
	}
	if err := w.resolveDirectives(ctx, doc, location); err != nil {
		return nil, err
	}
	for _, port := range []string{"inputs", "outputs"} {
		if err := w.resolvePortTypes(node, doc.Lookup(port), location, types, []string{port}); err != nil {
			return nil, err
		}
	}
	if node.Class == "Workflow" {
		if err := w.walkSteps(ctx, node, location, types); err != nil {
			return nil, err
		}
		if err := w.validateFlows(node, location); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// walkSteps recurses into every step's process reference in declared order.
func (w *walk) walkSteps(ctx context.Context, node *model.Node, location model.Location, types *typeRegistry) error {
	steps := node.Content.Lookup("steps")
	return steps.Items(func(index int, step *yml.Node) error {
		stepID := step.LookupString("id")
		run := step.Lookup("run")
		if run == nil {
			return &model.UnresolvedReferenceError{Location: location, Reference: "run", Path: []string{"steps", stepID}}
		}
		w.s.logger.Debug("recursing into step", "location", location.String(), "step", stepID)

		if run.Kind == scalarKind {
			target, err := w.s.resolver.Resolve(run.Value, location)
			if err != nil {
				return err
			}
			doc, err := w.fetchProcess(ctx, target)
			if err != nil {
				return err
			}
			// External processes resolve their types against their own
			// schema requirements, never the caller's.
			child, err := w.walkProcess(ctx, target, doc, nil)
			if err != nil {
				return err
			}
			node.AddRef(&model.Reference{
				Kind:   model.RefRun,
				Path:   []string{"steps", stepID, "run"},
				Raw:    run.Value,
				Target: target,
				Node:   child,
				Value:  run,
			})
			return nil
		}

		// Inline process: becomes a first-class node at a synthetic
		// fragment location, visible to the parent's type namespace. The
		// child owns a copy so rewriting the step's run reference cannot
		// clobber the extracted definition.
		inlineLoc := location.WithFragment(joinFragment(location.Fragment, "steps/"+stepID+"/run"))
		child, err := w.walkProcess(ctx, inlineLoc, run.Clone(), types)
		if err != nil {
			return err
		}
		node.AddRef(&model.Reference{
			Kind:   model.RefRun,
			Path:   []string{"steps", stepID, "run"},
			Target: inlineLoc,
			Node:   child,
			Value:  run,
		})
		return nil
	})
}

func joinFragment(base, suffix string) string {
	if base == "" {
		return suffix
	}
	return base + "/" + suffix
}
