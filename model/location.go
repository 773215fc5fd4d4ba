package model

import (
	"path"
	"strings"
)

// Location is an absolute reference to a document or a fragment within one.
// URL holds the document portion as a filesystem path or a scheme-qualified
// URL; Fragment optionally selects a named sub-element.
type Location struct {
	URL      string
	Fragment string
}

// ParseLocation splits a reference on the first fragment marker.
func ParseLocation(value string) Location {
	if idx := strings.Index(value, "#"); idx != -1 {
		return Location{URL: value[:idx], Fragment: value[idx+1:]}
	}
	return Location{URL: value}
}

// String renders the location in url#fragment form.
func (l Location) String() string {
	if l.Fragment == "" {
		return l.URL
	}
	return l.URL + "#" + l.Fragment
}

// Document returns the location with the fragment stripped.
func (l Location) Document() Location {
	return Location{URL: l.URL}
}

// WithFragment returns the document location with the given fragment.
func (l Location) WithFragment(fragment string) Location {
	return Location{URL: l.URL, Fragment: fragment}
}

// IsRemote reports whether the document has to be retrieved over the network.
func (l Location) IsRemote() bool {
	return strings.HasPrefix(l.URL, "http://") || strings.HasPrefix(l.URL, "https://")
}

// IsEmpty reports whether the location carries no document reference.
func (l Location) IsEmpty() bool {
	return l.URL == "" && l.Fragment == ""
}

// Base returns the document file name without its extension, the raw material
// for identifier assignment. A fragment takes precedence since it already
// names a sub-element.
func (l Location) Base() string {
	if l.Fragment != "" {
		return path.Base(l.Fragment)
	}
	base := path.Base(l.URL)
	if ext := path.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "." || base == "/" {
		return ""
	}
	return base
}
