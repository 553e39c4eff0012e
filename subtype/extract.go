// Copyright © 2024 The ELPS authors

package subtype

import (
	"github.com/luthersystems/subcheck/ast"
	"github.com/luthersystems/subcheck/parser/token"
)

// AnnotationName is the simple name of the annotation declaring a tag.
const AnnotationName = "Subtyping"

// ExtractTag returns the tag declared by the first Subtyping annotation in
// annots.  The tag is the first string literal among the annotation's
// element values, so @Subtyping("X") and @Subtyping(value = "X") are
// equivalent.  ok is false when no Subtyping annotation is present.  An
// annotation without a string literal value is an error wrapping
// ErrMalformedAnnotation.
func ExtractTag(annots []*ast.Annotation) (tag Tag, ok bool, err error) {
	for _, a := range annots {
		if a.SimpleName() != AnnotationName {
			continue
		}
		for _, arg := range a.Args {
			lit, isLit := arg.Value.(*ast.Literal)
			if isLit && (lit.Kind == token.STRING || lit.Kind == token.TEXT_BLOCK) {
				return Tag(lit.Value), true, nil
			}
		}
		return "", false, token.Errorf(a.Pos(), "%w: @%s has no string value", ErrMalformedAnnotation, a.Name)
	}
	return "", false, nil
}
