// Package dedup collapses structurally identical schema-type definitions
// discovered at different locations into a single shared definition.
//
// Equality is structural: field names, field order and field types
// recursively equal, with provenance fields ignored. Because a definition's
// internal references are already rewritten to identifiers, two definitions
// only hash identically once the types they reference have been merged
// themselves; the pass therefore iterates to a fixed point.
package dedup

import (
	"github.com/cwlpack/cwlpack/model"
)

// Dedupe merges equal schema definitions and rewrites every reference to a
// merged definition to its surviving identifier. The survivor is always the
// definition encountered first in the graph's discovery order. The returned
// slice preserves the order of the surviving definitions.
func Dedupe(graph *model.Graph, defs []model.Definition) []model.Definition {
	for {
		aliases := mergeOnce(defs)
		if len(aliases) == 0 {
			return defs
		}
		defs = drop(defs, aliases)
		for _, ref := range graph.References() {
			if ref.Kind != model.RefType || ref.Node == nil {
				continue
			}
			if survivor, ok := aliases[ref.Node.ID]; ok {
				ref.Node = survivor
				ref.Value.SetScalar(survivor.ID)
			}
		}
	}
}

// mergeOnce finds definitions that currently hash identically and maps each
// dropped identifier to its surviving node.
func mergeOnce(defs []model.Definition) map[string]*model.Node {
	aliases := make(map[string]*model.Node)
	seen := make(map[string]*model.Node)
	for _, def := range defs {
		if def.Node.Kind != model.KindSchemaType {
			continue
		}
		fingerprint := def.Node.Content.Fingerprint("name", "id")
		if survivor, ok := seen[fingerprint]; ok {
			aliases[def.ID] = survivor
			continue
		}
		seen[fingerprint] = def.Node
	}
	return aliases
}

func drop(defs []model.Definition, aliases map[string]*model.Node) []model.Definition {
	ret := defs[:0]
	for _, def := range defs {
		if _, dropped := aliases[def.ID]; dropped {
			continue
		}
		ret = append(ret, def)
	}
	return ret
}
