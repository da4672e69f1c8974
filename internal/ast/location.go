// Package ast defines the shared token, location and syntax tree data model used by every
// later compiler stage.
package ast

import "fmt"

// Location marks the origin of a token or syntax tree node in source text.
type Location struct {
	File   string
	Line   int
	Column int
}

// sentinel is the zero Location used by tests that compare tree structure without positions.
var sentinel = Location{}

// Equal compares two locations, treating the sentinel Location as equal to any other so that
// structural tree comparisons can ignore position bookkeeping.
func (l Location) Equal(o Location) bool {
	if l == sentinel || o == sentinel {
		return true
	}
	return l == o
}

// String renders the location as "file:line:column", omitting the file when empty.
func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}
