// Package normalizer assigns a collision-free identifier to every node of a
// resolved graph and rewrites every recorded reference to point at the
// assigned identifiers, leaving no location-valued reference behind.
//
// Identifier assignment follows the graph's discovery order, so results are
// deterministic for unchanged input: the first node to claim a base name
// keeps it, later claimants receive a numeric suffix.
package normalizer

import (
	"fmt"

	"github.com/cwlpack/cwlpack/internal/idgen"
	"github.com/cwlpack/cwlpack/model"
)

// RootID names the root process in the packed output.
const RootID = "main"

// Result is the normalized graph: the root node plus every other node as a
// named definition, in discovery order.
type Result struct {
	Root *model.Node
	Defs []model.Definition
}

// Processes returns the process definitions in order.
func (r *Result) Processes() []model.Definition {
	return r.filter(model.KindProcess)
}

// Schemas returns the schema-type definitions in order.
func (r *Result) Schemas() []model.Definition {
	return r.filter(model.KindSchemaType)
}

func (r *Result) filter(kind model.Kind) []model.Definition {
	var ret []model.Definition
	for _, def := range r.Defs {
		if def.Node.Kind == kind {
			ret = append(ret, def)
		}
	}
	return ret
}

// Normalize assigns identifiers and rewrites references in place.
func Normalize(graph *model.Graph) (*Result, error) {
	ret := &Result{}
	used := make(map[string]bool)

	for _, node := range graph.Nodes() {
		var id string
		if node == graph.Root {
			id = RootID
		} else {
			id = assign(node, used)
		}
		used[id] = true
		node.ID = id
		if node != graph.Root {
			ret.Defs = append(ret.Defs, model.Definition{ID: id, Node: node})
		}
	}
	ret.Root = graph.Root

	for _, ref := range graph.References() {
		if err := rewrite(ref); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// assign derives an identifier from the node's original location base name,
// disambiguating collisions with a numeric suffix in first-discovery order.
func assign(node *model.Node, used map[string]bool) string {
	base := sanitize(node.Location.Base())
	if base == "" {
		base = fmt.Sprintf("%s_%s", node.Kind, idgen.New()[:8])
	}
	if !used[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !used[candidate] {
			return candidate
		}
	}
}

// sanitize keeps identifiers within the safe character set.
func sanitize(name string) string {
	ret := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-', c == '.':
			ret = append(ret, c)
		default:
			ret = append(ret, '_')
		}
	}
	return string(ret)
}

// rewrite replaces the reference scalar with the identifier form of its
// resolved target.
func rewrite(ref *model.Reference) error {
	if ref.Node == nil || ref.Value == nil {
		return &model.UnresolvedReferenceError{
			Location:  ref.Owner.Location,
			Reference: ref.Raw,
			Path:      ref.Path,
		}
	}
	switch ref.Kind {
	case model.RefRun:
		ref.Value.SetScalar("#" + ref.Node.ID)
	case model.RefType:
		ref.Value.SetScalar(ref.Node.ID)
	}
	return nil
}
