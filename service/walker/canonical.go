package walker

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwlpack/cwlpack/internal/yml"
)

const (
	scalarKind   = yaml.ScalarNode
	mappingKind  = yaml.MappingNode
	sequenceKind = yaml.SequenceNode
)

// canonicalize rewrites the shorthand map forms of ports, requirements and
// steps into the canonical list form, so that the rest of the pipeline deals
// with exactly one shape.
func canonicalize(doc *yml.Node) {
	normalizeToList(doc, "inputs", "id", "type")
	normalizeToList(doc, "outputs", "id", "type")
	normalizeToList(doc, "requirements", "class", "")
	normalizeToList(doc, "hints", "class", "")

	if doc.LookupString("class") != "Workflow" {
		return
	}
	normalizeToList(doc, "steps", "id", "")
	steps := doc.Lookup("steps")
	_ = steps.Items(func(index int, step *yml.Node) error {
		if step.Kind == mappingKind {
			normalizeToList(step, "in", "id", "source")
		}
		return nil
	})
}

// normalizeToList converts a mapping-form field into its list form: each
// entry becomes a mapping with keyField holding the original key. A scalar or
// sequence entry value is wrapped under valueField when one is declared.
func normalizeToList(parent *yml.Node, field, keyField, valueField string) {
	value := parent.Lookup(field)
	if value == nil || value.Kind != mappingKind {
		return
	}
	list := (*yml.Node)(yml.NewSlice())
	_ = value.Pairs(func(key string, entry *yml.Node) error {
		switch {
		case entry.Kind == mappingKind:
			entry.PutFirst(keyField, key)
			list.Append(entry)
		case valueField != "":
			item := (*yml.Node)(yml.NewMap())
			item.Put(keyField, key)
			item.Put(valueField, entry)
			list.Append(item)
		default:
			item := (*yml.Node)(yml.NewMap())
			item.Put(keyField, key)
			list.Append(item)
		}
		return nil
	})
	value.SetFrom(list)
}

// maxVersion returns the later of two declared format versions, parsing
// dotted numeric components and ignoring a leading "v".
func maxVersion(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if compareVersion(a, b) >= 0 {
		return a
	}
	return b
}

func compareVersion(a, b string) int {
	av := versionParts(a)
	bv := versionParts(b)
	for i := 0; i < len(av) || i < len(bv); i++ {
		var x, y int
		if i < len(av) {
			x = av[i]
		}
		if i < len(bv) {
			y = bv[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

func versionParts(version string) []int {
	version = strings.TrimPrefix(version, "v")
	parts := strings.Split(version, ".")
	ret := make([]int, 0, len(parts))
	for _, part := range parts {
		// Tolerate suffixes such as "0-dev3".
		if idx := strings.IndexByte(part, '-'); idx != -1 {
			part = part[:idx]
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			break
		}
		ret = append(ret, n)
	}
	return ret
}
