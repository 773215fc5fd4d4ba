// Package resolver turns reference strings found inside documents into
// absolute locations, applying the relative-resolution rules of the document
// format.
//
// Resolution always starts from a base location ("this document"). A
// fragment-only reference stays within the base document; an absolute URL or
// path stands on its own; a relative path resolves against the base
// document's directory, locally or remotely depending on where the base
// lives.
package resolver

import (
	neturl "net/url"
	"path"
	"strings"

	"github.com/cwlpack/cwlpack/model"
)

type Service struct{}

// New creates a new resolver service instance.
func New() *Service {
	return &Service{}
}

// Resolve combines a reference with a base location into an absolute
// location.
func (s *Service) Resolve(reference string, base model.Location) (model.Location, error) {
	if strings.TrimSpace(reference) == "" {
		return model.Location{}, &model.InvalidReferenceError{Reference: reference, Base: base, Reason: "empty reference"}
	}
	if strings.TrimSpace(reference) != reference {
		return model.Location{}, &model.InvalidReferenceError{Reference: reference, Base: base, Reason: "leading or trailing whitespace"}
	}

	// Same document, different fragment.
	if strings.HasPrefix(reference, "#") {
		fragment := reference[1:]
		if fragment == "" {
			return model.Location{}, &model.InvalidReferenceError{Reference: reference, Base: base, Reason: "empty fragment"}
		}
		return base.WithFragment(fragment), nil
	}

	ref := model.ParseLocation(reference)
	if ref.URL == "" {
		return model.Location{}, &model.InvalidReferenceError{Reference: reference, Base: base, Reason: "missing document component"}
	}
	if strings.Count(reference, "#") > 1 {
		return model.Location{}, &model.InvalidReferenceError{Reference: reference, Base: base, Reason: "multiple fragment markers"}
	}

	switch {
	case hasScheme(ref.URL):
		// Host may legitimately be empty for virtual schemes (embed:///...).
		if _, err := neturl.Parse(ref.URL); err != nil {
			return model.Location{}, &model.InvalidReferenceError{Reference: reference, Base: base, Reason: "malformed URL"}
		}
		return ref, nil

	case path.IsAbs(ref.URL):
		if hasScheme(base.URL) {
			resolved, err := resolveAgainstURL(base.URL, ref.URL)
			if err != nil {
				return model.Location{}, &model.InvalidReferenceError{Reference: reference, Base: base, Reason: err.Error()}
			}
			return model.Location{URL: resolved, Fragment: ref.Fragment}, nil
		}
		return model.Location{URL: path.Clean(ref.URL), Fragment: ref.Fragment}, nil

	default:
		if hasScheme(base.URL) {
			resolved, err := resolveAgainstURL(base.URL, ref.URL)
			if err != nil {
				return model.Location{}, &model.InvalidReferenceError{Reference: reference, Base: base, Reason: err.Error()}
			}
			return model.Location{URL: resolved, Fragment: ref.Fragment}, nil
		}
		baseDir := path.Dir(base.URL)
		return model.Location{URL: path.Clean(path.Join(baseDir, ref.URL)), Fragment: ref.Fragment}, nil
	}
}

// resolveAgainstURL joins a relative or absolute path against a
// scheme-qualified base URL, collapsing dot segments in a scheme-appropriate
// manner. Used for remote bases as well as virtual schemes such as mem:// or
// embed://.
func resolveAgainstURL(baseURL, link string) (string, error) {
	base, err := neturl.Parse(baseURL)
	if err != nil {
		return "", err
	}
	ref, err := neturl.Parse(link)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// hasScheme reports whether the reference is already an absolute URL. A bare
// drive-letter-free path never contains "://".
func hasScheme(value string) bool {
	idx := strings.Index(value, "://")
	if idx <= 0 {
		return false
	}
	scheme := value[:idx]
	for _, r := range scheme {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && r != '+' && r != '-' && r != '.' {
			return false
		}
	}
	return true
}
