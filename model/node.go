package model

import (
	"github.com/cwlpack/cwlpack/internal/yml"
)

// Kind classifies a resolved node.
type Kind int

const (
	// KindProcess is a runnable process document (workflow or tool).
	KindProcess Kind = iota
	// KindSchemaType is a user-defined type definition.
	KindSchemaType
	// KindValue is opaque spliced content, never assigned an identifier.
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindProcess:
		return "process"
	case KindSchemaType:
		return "schema-type"
	default:
		return "value"
	}
}

// Node is one resolved document or document fragment. Content is an ordered
// mapping tree owned by the node; it is mutated during normalization and must
// not alias the fetcher cache.
type Node struct {
	Location Location
	Kind     Kind
	Content  *yml.Node
	Refs     []*Reference

	// ID is the packed-output identifier, assigned by the normalizer.
	ID string
	// Class is the declared process class, empty for schema types.
	Class string
	// Version is the declared format version of the source document.
	Version string
}

// AddRef records an outgoing reference discovered during the walk.
func (n *Node) AddRef(ref *Reference) {
	ref.Owner = n
	n.Refs = append(n.Refs, ref)
}

// RefKind tags the shape a rewritten reference must take.
type RefKind int

const (
	// RefRun is a step process reference, rewritten to "#identifier".
	RefRun RefKind = iota
	// RefType is a schema type reference, rewritten to the bare identifier.
	RefType
)

// Reference is one place in a node's content that points at another node.
// Value is the scalar holding the reference text; rewriting it in place keeps
// the node's field order untouched.
type Reference struct {
	Owner  *Node
	Kind   RefKind
	Path   []string
	Raw    string
	Target Location
	Node   *Node
	Value  *yml.Node
}

// Definition pairs a packed identifier with its node.
type Definition struct {
	ID   string
	Node *Node
}
