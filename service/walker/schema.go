package walker

import (
	"context"
	"fmt"
	"strings"

	"github.com/cwlpack/cwlpack/internal/yml"
	"github.com/cwlpack/cwlpack/model"
	"github.com/cwlpack/cwlpack/service/fetcher"
	"github.com/cwlpack/cwlpack/service/schema/typeexpr"
)

// builtinTypes are the primitive type names that never resolve to a
// definition.
var builtinTypes = map[string]bool{
	"null":      true,
	"boolean":   true,
	"int":       true,
	"long":      true,
	"float":     true,
	"double":    true,
	"string":    true,
	"File":      true,
	"Directory": true,
	"stdin":     true,
	"stdout":    true,
	"stderr":    true,
	"Any":       true,
}

func isBuiltin(name string) bool { return builtinTypes[name] }

// typeRegistry maps fully qualified "url#name" keys to user-defined type
// definitions. Registries chain: an inline process sees the types of its
// enclosing document, an external process never does.
type typeRegistry struct {
	parent *typeRegistry
	types  map[string]*registryEntry
}

type registryEntry struct {
	key  string
	def  *yml.Node
	base model.Location
	node *model.Node
}

func newTypeRegistry(parent *typeRegistry) *typeRegistry {
	return &typeRegistry{parent: parent, types: make(map[string]*registryEntry)}
}

func (r *typeRegistry) lookup(key string) *registryEntry {
	for reg := r; reg != nil; reg = reg.parent {
		if entry, ok := reg.types[key]; ok {
			return entry
		}
	}
	return nil
}

func (r *typeRegistry) register(key string, def *yml.Node, base model.Location) error {
	if existing, ok := r.types[key]; ok {
		if existing.def.Fingerprint("name") != def.Fingerprint("name") {
			return &model.AmbiguousDefinitionError{
				Name:      key,
				Locations: []model.Location{existing.base, base},
			}
		}
		return nil
	}
	r.types[key] = &registryEntry{key: key, def: def, base: base}
	return nil
}

// harvestSchemaDefs collects the user-defined types declared by the
// document's schema requirement, following import directives in the type
// list, and removes the requirement: the packer reconstructs it from the
// deduplicated definitions.
func (w *walk) harvestSchemaDefs(ctx context.Context, doc *yml.Node, base model.Location, parent *typeRegistry) (*typeRegistry, error) {
	reg := newTypeRegistry(parent)
	reqs := doc.Lookup("requirements")
	if reqs == nil || reqs.Kind != sequenceKind {
		return reg, nil
	}
	schemaDefIdx := -1
	err := reqs.Items(func(index int, req *yml.Node) error {
		if req.LookupString("class") != "SchemaDefRequirement" {
			return nil
		}
		schemaDefIdx = index
		types := req.Lookup("types")
		if types == nil || types.Kind != sequenceKind {
			return &model.ParseError{Location: base, Err: fmt.Errorf("schema requirement types have to be a list")}
		}
		return types.Items(func(i int, entry *yml.Node) error {
			return w.harvestTypeEntry(ctx, entry, base, reg)
		})
	})
	if err != nil {
		return nil, err
	}
	if schemaDefIdx != -1 {
		reqs.Content = append(reqs.Content[:schemaDefIdx], reqs.Content[schemaDefIdx+1:]...)
	}
	return reg, nil
}

func (w *walk) harvestTypeEntry(ctx context.Context, entry *yml.Node, base model.Location, reg *typeRegistry) error {
	if directive, ref := importDirective(entry); directive == "$import" {
		target, err := w.s.resolver.Resolve(ref, base)
		if err != nil {
			return err
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
		defs := []*yml.Node{imported}
		if imported.Kind == sequenceKind {
			defs = defs[:0]
			_ = imported.Items(func(i int, def *yml.Node) error {
				defs = append(defs, def)
				return nil
			})
		}
		w.s.logger.Debug("harvesting schema definitions", "location", target.String())
		w.stack = append(w.stack, target)
		defer func() { w.stack = w.stack[:len(w.stack)-1] }()
		for _, def := range defs {
			// an imported type list may import further files
			if d, _ := importDirective(def); d == "$import" {
				if err := w.harvestTypeEntry(ctx, def, target.Document(), reg); err != nil {
					return err
				}
				continue
			}
			name := def.LookupString("name")
			if name == "" {
				return &model.ParseError{Location: target, Err: fmt.Errorf("type definition missing name")}
			}
			if err := reg.register(target.URL+"#"+name, def, target.Document()); err != nil {
				return err
			}
		}
		return nil
	}

	if entry.Kind != mappingKind {
		return &model.ParseError{Location: base, Err: fmt.Errorf("user type has to be a mapping")}
	}
	name := entry.LookupString("name")
	if name == "" {
		return &model.ParseError{Location: base, Err: fmt.Errorf("type definition missing name")}
	}
	return reg.register(base.URL+"#"+name, entry.Clone(), base.Document())
}

// resolvePortTypes resolves the type expression of every input or output
// port against the registry.
func (w *walk) resolvePortTypes(owner *model.Node, ports *yml.Node, base model.Location, types *typeRegistry, path []string) error {
	if ports == nil || ports.Kind != sequenceKind {
		return nil
	}
	return ports.Items(func(index int, port *yml.Node) error {
		if port.Kind != mappingKind {
			return nil
		}
		portType := port.Lookup("type")
		if portType == nil {
			return nil
		}
		portPath := append(append([]string{}, path...), port.LookupString("id"), "type")
		return w.resolveTypeValue(owner, portType, base, types, portPath)
	})
}

// resolveTypeValue resolves one type-bearing value in any of its shapes:
// bare name, sugared name, qualified reference, wrapper mapping or list of
// alternatives. References to user-defined types are recorded for later
// identifier rewriting; the scalar itself is left in place.
func (w *walk) resolveTypeValue(owner *model.Node, value *yml.Node, base model.Location, types *typeRegistry, path []string) error {
	switch value.Kind {
	case scalarKind:
		return w.resolveTypeName(owner, value, base, types, path)
	case sequenceKind:
		return value.Items(func(index int, item *yml.Node) error {
			return w.resolveTypeValue(owner, item, base, types, path)
		})
	case mappingKind:
		return w.resolveTypeMapping(owner, value, base, types, path)
	}
	return nil
}

func (w *walk) resolveTypeName(owner *model.Node, value *yml.Node, base model.Location, types *typeRegistry, path []string) error {
	name := value.Value
	if value.Tag != "!!str" || name == "" || isBuiltin(name) {
		return nil
	}

	// Array sugar unrolls into an explicit wrapper so that the inner name
	// becomes an addressable node.
	if strings.HasSuffix(name, "[]") {
		wrapper := (*yml.Node)(yml.NewMap())
		wrapper.Put("type", "array")
		wrapper.Put("items", name[:len(name)-2])
		value.SetFrom(wrapper)
		return w.resolveTypeValue(owner, value.Lookup("items"), base, types, path)
	}
	// Optional sugar becomes a union with null.
	if strings.HasSuffix(name, "?") {
		union := (*yml.Node)(yml.NewSlice())
		union.Append("null")
		union.Append(name[:len(name)-1])
		value.SetFrom(union)
		return w.resolveTypeValue(owner, (*yml.Node)(value.Content[1]), base, types, path)
	}

	expr, err := typeexpr.Parse([]byte(name))
	if err != nil {
		return &model.InvalidReferenceError{Reference: name, Base: base, Reason: err.Error()}
	}
	key := base.URL + "#" + expr.Name
	target := base.WithFragment(expr.Name)
	if expr.Qualified() {
		resolved, err := w.s.resolver.Resolve(expr.Base, base)
		if err != nil {
			return err
		}
		key = resolved.URL + "#" + expr.Name
		target = resolved.WithFragment(expr.Name)
	}

	entry := types.lookup(key)
	if entry == nil {
		return &model.UnresolvedReferenceError{Location: base, Reference: name, Path: path}
	}
	schemaNode, err := w.schemaNode(entry, types)
	if err != nil {
		return err
	}
	owner.AddRef(&model.Reference{
		Kind:   model.RefType,
		Path:   path,
		Raw:    name,
		Target: target,
		Node:   schemaNode,
		Value:  value,
	})
	return nil
}

func (w *walk) resolveTypeMapping(owner *model.Node, value *yml.Node, base model.Location, types *typeRegistry, path []string) error {
	typeNode := value.Lookup("type")
	if typeNode == nil {
		return &model.ParseError{Location: base, Err: fmt.Errorf("missing type name at %s", strings.Join(path, "/"))}
	}
	if typeNode.Kind != scalarKind {
		return w.resolveTypeValue(owner, typeNode, base, types, path)
	}
	switch typeNode.Value {
	case "enum":
		return nil
	case "array":
		items := value.Lookup("items")
		if items == nil {
			return &model.ParseError{Location: base, Err: fmt.Errorf("array type missing items at %s", strings.Join(path, "/"))}
		}
		return w.resolveTypeValue(owner, items, base, types, append(path, "items"))
	case "record":
		fields := value.Lookup("fields")
		if fields == nil {
			return &model.ParseError{Location: base, Err: fmt.Errorf("record type missing fields at %s", strings.Join(path, "/"))}
		}
		normalizeToList(value, "fields", "name", "type")
		fields = value.Lookup("fields")
		return fields.Items(func(index int, field *yml.Node) error {
			if field.Kind != mappingKind {
				return nil
			}
			fieldType := field.Lookup("type")
			if fieldType == nil {
				return nil
			}
			fieldPath := append(append([]string{}, path...), "fields", field.LookupString("name"))
			return w.resolveTypeValue(owner, fieldType, base, types, fieldPath)
		})
	default:
		if isBuiltin(typeNode.Value) {
			return nil
		}
		return w.resolveTypeValue(owner, typeNode, base, types, path)
	}
}

// schemaNode returns the graph node for a registered definition, creating it
// on first reference. The node is registered before its internals are
// resolved so that self-referential record types terminate.
func (w *walk) schemaNode(entry *registryEntry, types *typeRegistry) (*model.Node, error) {
	if entry.node != nil {
		return entry.node, nil
	}
	location := model.ParseLocation(entry.key)
	// Another process may have registered the same definition already; the
	// graph node is shared, not duplicated.
	if existing := w.graph.Lookup(location); existing != nil {
		entry.node = existing
		return existing, nil
	}
	content := entry.def.Clone()
	node := &model.Node{
		Location: location,
		Kind:     model.KindSchemaType,
		Content:  content,
	}
	w.graph.Add(node)
	entry.node = node
	if err := w.resolveTypeMapping(node, content, entry.base, types, []string{entry.key}); err != nil {
		return nil, err
	}
	return node, nil
}
