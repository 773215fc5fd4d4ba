package packer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"gopkg.in/yaml.v3"

	"github.com/cwlpack/cwlpack/internal/yml"
	"github.com/cwlpack/cwlpack/model"
	"github.com/cwlpack/cwlpack/service/normalizer"
	"github.com/cwlpack/cwlpack/tracing"
)

const (
	scalarKind   = yaml.ScalarNode
	mappingKind  = yaml.MappingNode
	sequenceKind = yaml.SequenceNode
)

// Unpack splits a packed document into standalone files under targetDir: a
// distinguished root file, one file per subprocess definition and one file
// per schema definition. References are rewritten from local identifiers
// back to relative-path and fragment form, the structural inverse of
// normalization. The original file layout is not reproduced; the emitted set
// is independently loadable and packs back to an equivalent graph.
func (s *Service) Unpack(ctx context.Context, doc *yml.Node, targetDir string) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "unpack", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	var written []string
	version := doc.LookupString("cwlVersion")

	root := doc
	var processes []model.Definition
	if graphList := doc.Lookup("$graph"); graphList != nil {
		root = nil
		err = graphList.Items(func(index int, entry *yml.Node) error {
			id := strings.TrimPrefix(entry.LookupString("id"), "#")
			if id == normalizer.RootID && root == nil {
				root = entry
				return nil
			}
			processes = append(processes, model.Definition{ID: id, Node: &model.Node{ID: id, Kind: model.KindProcess, Content: entry}})
			return nil
		})
		if err != nil {
			return nil, err
		}
		if root == nil {
			err = &model.FragmentNotFoundError{Location: model.Location{URL: targetDir}, Fragment: normalizer.RootID}
			return nil, err
		}
	}
	root = root.Clone()
	for i := range processes {
		processes[i].Node.Content = processes[i].Node.Content.Clone()
	}

	schemas, schemaOrder := extractSchemas(root)
	processIDs := make(map[string]bool)
	for _, def := range processes {
		processIDs[def.ID] = true
	}

	// Schema files first: they are referenced by everything else.
	schemaDeps := make(map[string][]string)
	for _, id := range schemaOrder {
		content := schemas[id]
		var used []string
		rewriteTypeMapping(content, func(name string) (string, bool) {
			if _, ok := schemas[name]; !ok || name == id {
				return "", false
			}
			used = append(used, name)
			return name + ".yml#" + name, true
		})
		schemaDeps[id] = used
		data, merr := yml.Marshal(content)
		if merr != nil {
			err = merr
			return nil, err
		}
		rel := "schemas/" + id + ".yml"
		if err = s.upload(ctx, targetDir, rel, data); err != nil {
			return nil, err
		}
		written = append(written, rel)
	}

	emit := func(id string, content *yml.Node, rel string, inSteps bool) error {
		prefix := "schemas/"
		runPrefix := "steps/"
		if inSteps {
			prefix = "../schemas/"
			runPrefix = ""
		}
		var used []string
		seen := make(map[string]bool)
		for _, port := range []string{"inputs", "outputs"} {
			ports := content.Lookup(port)
			_ = ports.Items(func(index int, entry *yml.Node) error {
				if entry.Kind != mappingKind {
					return nil
				}
				portType := entry.Lookup("type")
				if portType == nil {
					return nil
				}
				rewriteTypeValue(portType, func(name string) (string, bool) {
					if _, ok := schemas[name]; !ok {
						return "", false
					}
					if !seen[name] {
						seen[name] = true
						used = append(used, name)
					}
					return prefix + name + ".yml#" + name, true
				})
				return nil
			})
		}
		rewriteRunRefs(content, func(ref string) (string, bool) {
			if !processIDs[ref] {
				return "", false
			}
			return runPrefix + ref + ".cwl", true
		})
		if len(used) > 0 {
			addSchemaImports(content, prefix, closure(used, schemaDeps))
		}
		if version != "" && content.LookupString("cwlVersion") == "" {
			content.PutFirst("cwlVersion", version)
		}
		content.Delete("id")
		data, merr := yml.Marshal(content)
		if merr != nil {
			return merr
		}
		if uerr := s.upload(ctx, targetDir, rel, data); uerr != nil {
			return uerr
		}
		written = append(written, rel)
		return nil
	}

	if err = emit(normalizer.RootID, root, "main.cwl", false); err != nil {
		return nil, err
	}
	for _, def := range processes {
		if err = emit(def.ID, def.Node.Content, "steps/"+def.ID+".cwl", true); err != nil {
			return nil, err
		}
	}
	return written, nil
}

func (s *Service) upload(ctx context.Context, targetDir, rel string, data []byte) error {
	target := url.Join(targetDir, rel)
	if err := s.fs.Upload(ctx, target, file.DefaultFileOsMode, bytes.NewReader(data), s.fsOptions...); err != nil {
		return &model.FetchError{Location: model.Location{URL: target}, Err: fmt.Errorf("failed to write: %w", err)}
	}
	return nil
}

// extractSchemas removes the root's schema requirement and returns its
// definitions keyed by name, preserving declaration order.
func extractSchemas(root *yml.Node) (map[string]*yml.Node, []string) {
	schemas := make(map[string]*yml.Node)
	var order []string
	reqs := root.Lookup("requirements")
	if reqs == nil || reqs.Kind != sequenceKind {
		return schemas, order
	}
	idx := -1
	_ = reqs.Items(func(index int, req *yml.Node) error {
		if req.LookupString("class") != "SchemaDefRequirement" {
			return nil
		}
		idx = index
		_ = req.Lookup("types").Items(func(i int, def *yml.Node) error {
			name := def.LookupString("name")
			if name != "" {
				schemas[name] = def
				order = append(order, name)
			}
			return nil
		})
		return nil
	})
	if idx != -1 {
		reqs.Content = append(reqs.Content[:idx], reqs.Content[idx+1:]...)
		if len(reqs.Content) == 0 {
			root.Delete("requirements")
		}
	}
	return schemas, order
}

// addSchemaImports declares the schema files a process depends on.
func addSchemaImports(content *yml.Node, prefix string, names []string) {
	types := (*yml.Node)(yml.NewSlice())
	for _, name := range names {
		entry := (*yml.Node)(yml.NewMap())
		entry.Put("$import", prefix+name+".yml")
		types.Append(entry)
	}
	requirement := (*yml.Node)(yml.NewMap())
	requirement.Put("class", "SchemaDefRequirement")
	requirement.Put("types", types)
	appendRequirement(content, requirement)
}

// closure expands a set of schema names with everything those schemas
// reference, in first-use order.
func closure(names []string, deps map[string][]string) []string {
	var ret []string
	seen := make(map[string]bool)
	queue := append([]string{}, names...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		ret = append(ret, name)
		queue = append(queue, deps[name]...)
	}
	return ret
}

// rewriteRunRefs rewrites every step's "#identifier" run reference.
func rewriteRunRefs(content *yml.Node, replace func(string) (string, bool)) {
	steps := content.Lookup("steps")
	if steps == nil || steps.Kind != sequenceKind {
		return
	}
	_ = steps.Items(func(index int, step *yml.Node) error {
		run := step.Lookup("run")
		if run == nil || run.Kind != scalarKind || !strings.HasPrefix(run.Value, "#") {
			return nil
		}
		if target, ok := replace(strings.TrimPrefix(run.Value, "#")); ok {
			run.SetScalar(target)
		}
		return nil
	})
}

// rewriteTypeValue rewrites identifier-valued type references in any type
// shape back to path#fragment form.
func rewriteTypeValue(value *yml.Node, replace func(string) (string, bool)) {
	switch value.Kind {
	case scalarKind:
		if target, ok := replace(value.Value); ok {
			value.SetScalar(target)
		}
	case sequenceKind:
		_ = value.Items(func(index int, item *yml.Node) error {
			rewriteTypeValue(item, replace)
			return nil
		})
	case mappingKind:
		rewriteTypeMapping(value, replace)
	}
}

func rewriteTypeMapping(value *yml.Node, replace func(string) (string, bool)) {
	typeNode := value.Lookup("type")
	if typeNode == nil {
		return
	}
	if typeNode.Kind != scalarKind {
		rewriteTypeValue(typeNode, replace)
		return
	}
	switch typeNode.Value {
	case "enum":
	case "array":
		if items := value.Lookup("items"); items != nil {
			rewriteTypeValue(items, replace)
		}
	case "record":
		fields := value.Lookup("fields")
		if fields == nil {
			return
		}
		_ = fields.Items(func(index int, fieldEntry *yml.Node) error {
			if fieldEntry.Kind != mappingKind {
				return nil
			}
			if fieldType := fieldEntry.Lookup("type"); fieldType != nil {
				rewriteTypeValue(fieldType, replace)
			}
			return nil
		})
	default:
		rewriteTypeValue(typeNode, replace)
	}
}
