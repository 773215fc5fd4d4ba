package walker

import (
	"github.com/cwlpack/cwlpack/internal/yml"
	"github.com/cwlpack/cwlpack/model"
	"github.com/cwlpack/cwlpack/service/schema/typeexpr"
)

// validateFlows checks every data-flow reference of a workflow against its
// sibling steps and inputs, and rewrites each to the canonical unprefixed
// form. These references live entirely within one process; they never enter
// the global location space.
func (w *walk) validateFlows(node *model.Node, location model.Location) error {
	doc := node.Content
	stepIDs := make(map[string]bool)
	runTargets := make(map[string]*model.Node)
	_ = doc.Lookup("steps").Items(func(index int, step *yml.Node) error {
		stepIDs[step.LookupString("id")] = true
		return nil
	})
	for _, ref := range node.Refs {
		if ref.Kind == model.RefRun && len(ref.Path) == 3 {
			runTargets[ref.Path[1]] = ref.Node
		}
	}
	inputIDs := make(map[string]bool)
	_ = doc.Lookup("inputs").Items(func(index int, input *yml.Node) error {
		if input.Kind == mappingKind {
			inputIDs[input.LookupString("id")] = true
		}
		return nil
	})

	err := doc.Lookup("steps").Items(func(index int, step *yml.Node) error {
		stepID := step.LookupString("id")
		return step.Lookup("in").Items(func(i int, entry *yml.Node) error {
			if entry.Kind != mappingKind {
				return nil
			}
			source := entry.Lookup("source")
			if source == nil {
				// valueFrom or default only entry
				return nil
			}
			path := []string{"steps", stepID, "in", entry.LookupString("id"), "source"}
			return w.validateSource(source, location, stepIDs, inputIDs, runTargets, path)
		})
	})
	if err != nil {
		return err
	}

	return doc.Lookup("outputs").Items(func(index int, output *yml.Node) error {
		if output.Kind != mappingKind {
			return nil
		}
		source := output.Lookup("outputSource")
		if source == nil {
			return nil
		}
		path := []string{"outputs", output.LookupString("id"), "outputSource"}
		return w.validateSource(source, location, stepIDs, inputIDs, runTargets, path)
	})
}

func (w *walk) validateSource(source *yml.Node, location model.Location, stepIDs, inputIDs map[string]bool, runTargets map[string]*model.Node, path []string) error {
	if source.Kind == sequenceKind {
		return source.Items(func(index int, item *yml.Node) error {
			return w.validateSource(item, location, stepIDs, inputIDs, runTargets, path)
		})
	}
	if source.Kind != scalarKind {
		return nil
	}
	ref, err := typeexpr.ParseSource([]byte(source.Value))
	if err != nil {
		return &model.InvalidReferenceError{Reference: source.Value, Base: location, Reason: err.Error()}
	}

	if ref.Step != "" {
		if !stepIDs[ref.Step] {
			return &model.UnresolvedReferenceError{Location: location, Reference: source.Value, Path: path}
		}
		if target := runTargets[ref.Step]; target != nil && !hasPort(target.Content, "outputs", ref.Port) {
			return &model.UnresolvedReferenceError{Location: location, Reference: source.Value, Path: path}
		}
	} else if !inputIDs[ref.Port] && !stepIDs[ref.Port] {
		return &model.UnresolvedReferenceError{Location: location, Reference: source.Value, Path: path}
	}

	source.SetScalar(ref.String())
	return nil
}

// hasPort reports whether a process declares a port with the given id. A
// process without the port list at all is not judged.
func hasPort(doc *yml.Node, field, id string) bool {
	ports := doc.Lookup(field)
	if ports == nil || ports.Kind != sequenceKind {
		return true
	}
	found := false
	_ = ports.Items(func(index int, port *yml.Node) error {
		switch port.Kind {
		case mappingKind:
			if port.LookupString("id") == id {
				found = true
			}
		case scalarKind:
			if port.Value == id {
				found = true
			}
		}
		return nil
	})
	return found
}
