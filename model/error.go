package model

import (
	"fmt"
	"strings"
)

// InvalidReferenceError indicates a reference string that cannot be resolved
// against any base location.
type InvalidReferenceError struct {
	Reference string
	Base      Location
	Reason    string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference %q in %s: %s", e.Reference, e.Base, e.Reason)
}

// FetchError indicates an I/O or network failure retrieving a location.
type FetchError struct {
	Location Location
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError indicates content that is not valid structured data.
type ParseError struct {
	Location Location
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed document %s: %v", e.Location, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FragmentNotFoundError indicates a named fragment absent from a document.
type FragmentNotFoundError struct {
	Location Location
	Fragment string
}

func (e *FragmentNotFoundError) Error() string {
	return fmt.Sprintf("fragment %q not found in %s", e.Fragment, e.Location)
}

// UnresolvedReferenceError indicates a step, type or output reference that
// cannot be matched to any known element.
type UnresolvedReferenceError struct {
	Location  Location
	Reference string
	Path      []string
}

func (e *UnresolvedReferenceError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("unresolved reference %q at %s in %s", e.Reference, strings.Join(e.Path, "/"), e.Location)
	}
	return fmt.Sprintf("unresolved reference %q in %s", e.Reference, e.Location)
}

// CyclicReferenceError indicates a process graph that transitively references
// itself.
type CyclicReferenceError struct {
	Location Location
	Stack    []Location
}

func (e *CyclicReferenceError) Error() string {
	chain := make([]string, 0, len(e.Stack)+1)
	for _, loc := range e.Stack {
		chain = append(chain, loc.String())
	}
	chain = append(chain, e.Location.String())
	return fmt.Sprintf("cyclic process reference: %s", strings.Join(chain, " -> "))
}

// AmbiguousDefinitionError indicates two same-named but structurally different
// definitions that cannot be safely merged.
type AmbiguousDefinitionError struct {
	Name      string
	Locations []Location
}

func (e *AmbiguousDefinitionError) Error() string {
	origins := make([]string, 0, len(e.Locations))
	for _, loc := range e.Locations {
		origins = append(origins, loc.String())
	}
	return fmt.Sprintf("ambiguous definition %q declared with different content at %s", e.Name, strings.Join(origins, ", "))
}
