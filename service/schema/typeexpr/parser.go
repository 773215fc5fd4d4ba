// Package typeexpr parses the reference expressions embedded in document
// fields: type expressions such as "record.yml#Rec[]?" with array and
// optional sugar, and data-flow references such as "step/port" or "#input".
// The parser produces tagged variants so that callers never inspect raw
// strings ad hoc.
package typeexpr

import (
	"bytes"

	"github.com/viant/parsly"
)

// Expr is a parsed type expression.
type Expr struct {
	// Base is the document component of a qualified reference, empty when
	// the type is named without a document.
	Base string
	// Name is the type name.
	Name string
	// Dims counts trailing "[]" array wrappers.
	Dims int
	// Optional is set for the "?" suffix.
	Optional bool
}

// Qualified reports whether the expression names a document explicitly.
func (e *Expr) Qualified() bool { return e.Base != "" }

// Plain reports whether the expression is a bare name with no sugar.
func (e *Expr) Plain() bool {
	return e.Base == "" && e.Dims == 0 && !e.Optional
}

// Parse parses a type expression in the format: [path#]name[sugar] where
// sugar is any combination of "[]" and "?" suffixes.
func Parse(input []byte) (*Expr, error) {
	expr := &Expr{}
	cursor := parsly.NewCursor("", input, 0)

	if idx := bytes.IndexByte(input, '#'); idx > 0 {
		matched := cursor.MatchOne(pathToken)
		if matched.Code != pathToken.Code {
			return nil, cursor.NewError(pathToken)
		}
		expr.Base = matched.Text(cursor)
		if matched = cursor.MatchOne(hashToken); matched.Code != hashToken.Code {
			return nil, cursor.NewError(hashToken)
		}
	} else if idx == 0 {
		// Leading fragment marker: same-document type reference.
		if matched := cursor.MatchOne(hashToken); matched.Code != hashToken.Code {
			return nil, cursor.NewError(hashToken)
		}
	}

	matched := cursor.MatchOne(nameToken)
	if matched.Code != nameToken.Code {
		return nil, cursor.NewError(nameToken)
	}
	expr.Name = matched.Text(cursor)

	for cursor.Pos < cursor.InputSize {
		matched = cursor.MatchAny(arrayToken, optionalToken)
		switch matched.Code {
		case arrayToken.Code:
			expr.Dims++
		case optionalToken.Code:
			expr.Optional = true
		default:
			return nil, cursor.NewError(arrayToken, optionalToken)
		}
	}
	return expr, nil
}

// SourceRef is a parsed data-flow reference. Step is empty when the reference
// names a process input directly.
type SourceRef struct {
	Step string
	Port string
}

// String renders the reference back to its canonical form.
func (r *SourceRef) String() string {
	if r.Step == "" {
		return r.Port
	}
	return r.Step + "/" + r.Port
}

// ParseSource parses a data-flow reference in the format: [#]id or
// [#]step/port. The leading fragment marker is accepted and dropped; packed
// output always uses the canonical unprefixed form.
func ParseSource(input []byte) (*SourceRef, error) {
	ref := &SourceRef{}
	cursor := parsly.NewCursor("", input, 0)

	if cursor.InputSize > 0 && input[0] == '#' {
		if matched := cursor.MatchOne(hashToken); matched.Code != hashToken.Code {
			return nil, cursor.NewError(hashToken)
		}
	}

	matched := cursor.MatchOne(nameToken)
	if matched.Code != nameToken.Code {
		return nil, cursor.NewError(nameToken)
	}
	ref.Port = matched.Text(cursor)

	if cursor.Pos >= cursor.InputSize {
		return ref, nil
	}
	if matched = cursor.MatchOne(slashToken); matched.Code != slashToken.Code {
		return nil, cursor.NewError(slashToken)
	}
	ref.Step = ref.Port

	matched = cursor.MatchOne(nameToken)
	if matched.Code != nameToken.Code {
		return nil, cursor.NewError(nameToken)
	}
	ref.Port = matched.Text(cursor)

	if cursor.Pos < cursor.InputSize {
		return nil, cursor.NewError(whitespaceToken)
	}
	return ref, nil
}
