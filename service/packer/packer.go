// Package packer assembles a normalized, deduplicated graph into one
// self-contained document, and splits such a document back into discrete
// files. Both directions preserve the identifier scheme produced by the
// normalizer.
package packer

import (
	"github.com/cwlpack/cwlpack/internal/yml"
	"github.com/cwlpack/cwlpack/model"
	"github.com/cwlpack/cwlpack/service/normalizer"
)

// Assemble emits the packed document: the root process plus every
// subprocess definition under $graph, with the deduplicated schema
// definitions embedded in the root's schema requirement.
func (s *Service) Assemble(graph *model.Graph, result *normalizer.Result) (*yml.Node, error) {
	root := result.Root.Content

	if schemas := result.Schemas(); len(schemas) > 0 {
		types := (*yml.Node)(yml.NewSlice())
		for _, def := range schemas {
			def.Node.Content.PutFirst("name", def.ID)
			types.Append(def.Node.Content)
		}
		requirement := (*yml.Node)(yml.NewMap())
		requirement.Put("class", "SchemaDefRequirement")
		requirement.Put("types", types)
		appendRequirement(root, requirement)
	}

	for _, node := range graph.Nodes() {
		if needsSubworkflowFeature(node) {
			requirement := (*yml.Node)(yml.NewMap())
			requirement.Put("class", "SubworkflowFeatureRequirement")
			appendRequirement(node.Content, requirement)
		}
	}

	version := graph.Version
	processes := result.Processes()
	if len(processes) == 0 {
		if version != "" {
			root.Put("cwlVersion", version)
		}
		if s.addIDs && root.LookupString("id") == "" {
			root.PutFirst("id", result.Root.ID)
		}
		return root, nil
	}

	root.Delete("cwlVersion")
	root.PutFirst("id", result.Root.ID)
	graphList := (*yml.Node)(yml.NewSlice())
	graphList.Append(root)
	for _, def := range processes {
		def.Node.Content.Delete("cwlVersion")
		def.Node.Content.PutFirst("id", def.ID)
		graphList.Append(def.Node.Content)
	}

	packed := (*yml.Node)(yml.NewMap())
	if version != "" {
		packed.Put("cwlVersion", version)
	}
	packed.Put("$graph", graphList)
	return packed, nil
}

// appendRequirement adds a requirement entry unless the class is already
// declared, creating the requirements list when absent.
func appendRequirement(doc *yml.Node, requirement *yml.Node) {
	class := requirement.LookupString("class")
	reqs := doc.Lookup("requirements")
	if reqs == nil {
		list := (*yml.Node)(yml.NewSlice())
		doc.Put("requirements", list)
		reqs = doc.Lookup("requirements")
	}
	present := false
	_ = reqs.Items(func(index int, req *yml.Node) error {
		if req.LookupString("class") == class {
			present = true
		}
		return nil
	})
	if !present {
		reqs.Append(requirement)
	}
}

// needsSubworkflowFeature reports whether a workflow runs another workflow as
// a step and does not already declare the feature.
func needsSubworkflowFeature(node *model.Node) bool {
	if node.Class != "Workflow" {
		return false
	}
	for _, ref := range node.Refs {
		if ref.Kind == model.RefRun && ref.Node != nil && ref.Node.Class == "Workflow" {
			return true
		}
	}
	return false
}

// IsPacked reports whether a document already is a packed document.
func IsPacked(doc *yml.Node) bool {
	return doc != nil && doc.Lookup("$graph") != nil
}
