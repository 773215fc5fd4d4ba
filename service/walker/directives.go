package walker

import (
	"context"

	"github.com/cwlpack/cwlpack/internal/yml"
	"github.com/cwlpack/cwlpack/model"
	"github.com/cwlpack/cwlpack/service/fetcher"
)

// resolveDirectives walks the whole document tree and splices import and
// include directives in place. The two are deliberately distinct paths:
// imported content is parsed and remains referenceable structure, while
// included content is spliced as opaque text and is never deduplicated.
func (w *walk) resolveDirectives(ctx context.Context, node *yml.Node, base model.Location) error {
	switch node.Kind {
	case mappingKind:
		return node.Pairs(func(key string, value *yml.Node) error {
			if err := w.spliceDirective(ctx, value, base); err != nil {
				return err
			}
			return w.resolveDirectives(ctx, value, base)
		})
	case sequenceKind:
		return node.Items(func(index int, value *yml.Node) error {
			if err := w.spliceDirective(ctx, value, base); err != nil {
				return err
			}
			return w.resolveDirectives(ctx, value, base)
		})
	}
	return nil
}

// spliceDirective replaces a single-key {$import: ref} or {$include: ref}
// mapping with the referenced content. An import target that is still being
// spliced is a cycle.
func (w *walk) spliceDirective(ctx context.Context, value *yml.Node, base model.Location) error {
	directive, ref := importDirective(value)
	if directive == "" {
		return nil
	}
	target, err := w.s.resolver.Resolve(ref, base)
	if err != nil {
		return err
	}
	if directive == "$include" {
		text, err := w.s.fetcher.FetchText(ctx, target)
		if err != nil {
			return err
		}
		value.SetScalar(text)
		return nil
	}

	if w.onStack(target) {
		return &model.CyclicReferenceError{Location: target, Stack: append([]model.Location{}, w.stack...)}
	}
	doc, err := w.s.fetcher.Fetch(ctx, target)
	if err != nil {
		return err
	}
	part, err := fetcher.ExtractFragment(target, doc, target.Fragment)
	if err != nil {
		return err
	}
	imported := part.Clone()
	w.stack = append(w.stack, target)
	err = w.resolveDirectives(ctx, imported, target.Document())
	w.stack = w.stack[:len(w.stack)-1]
	if err != nil {
		return err
	}
	value.SetFrom(imported)
	return nil
}

// importDirective recognizes a mapping holding exactly one $import or
// $include entry with a scalar reference.
func importDirective(node *yml.Node) (directive, reference string) {
	if node == nil || node.Kind != mappingKind || len(node.Content) != 2 {
		return "", ""
	}
	key := node.Content[0].Value
	if key != "$import" && key != "$include" {
		return "", ""
	}
	if node.Content[1].Kind != scalarKind {
		return "", ""
	}
	return key, node.Content[1].Value
}
