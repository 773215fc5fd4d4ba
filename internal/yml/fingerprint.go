package yml

import (
	"crypto/sha256"
	"encoding/hex"
	"gopkg.in/yaml.v3"
	"io"
)

// Fingerprint returns a content hash of the node. Two nodes with the same
// kinds, scalar values, field names and field order hash identically,
// regardless of where the documents came from. Top-level mapping keys listed
// in skip are excluded, which lets callers ignore provenance fields such as
// "name" or "id" when comparing definitions.
func (n *Node) Fingerprint(skip ...string) string {
	h := sha256.New()
	skipSet := map[string]bool{}
	for _, key := range skip {
		skipSet[key] = true
	}
	writeFingerprint(h, n, skipSet)
	return hex.EncodeToString(h.Sum(nil))
}

func writeFingerprint(w io.Writer, n *Node, skip map[string]bool) {
	if n == nil {
		_, _ = io.WriteString(w, "~")
		return
	}
	switch n.Kind {
	case yaml.DocumentNode:
		writeFingerprint(w, n.Root(), skip)
	case yaml.ScalarNode:
		_, _ = io.WriteString(w, "s(")
		_, _ = io.WriteString(w, n.Tag)
		_, _ = io.WriteString(w, ":")
		_, _ = io.WriteString(w, n.Value)
		_, _ = io.WriteString(w, ")")
	case yaml.MappingNode:
		_, _ = io.WriteString(w, "m(")
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if skip[key] {
				continue
			}
			_, _ = io.WriteString(w, key)
			_, _ = io.WriteString(w, "=")
			// skip applies to the top mapping only
			writeFingerprint(w, (*Node)(n.Content[i+1]), nil)
			_, _ = io.WriteString(w, ";")
		}
		_, _ = io.WriteString(w, ")")
	case yaml.SequenceNode:
		_, _ = io.WriteString(w, "l(")
		for i := 0; i < len(n.Content); i++ {
			writeFingerprint(w, (*Node)(n.Content[i]), nil)
			_, _ = io.WriteString(w, ";")
		}
		_, _ = io.WriteString(w, ")")
	}
}
