package tempel

import "strings"

// ValueKind identifies which variant a Value holds
type ValueKind int

// Value kinds
const (
	KindScalar ValueKind = iota
	KindList
)

// Value kind names
const (
	KindNameScalar = "scalar"
	KindNameList   = "list"
)

// String returns the kind name
func (k ValueKind) String() string {
	if k == KindList {
		return KindNameList
	}
	return KindNameScalar
}

// Value is the content of one binding: a single string or an ordered list of
// strings. Lists drive loop blocks; substituted into a plain placeholder they
// render as "[a, b, c]".
type Value struct {
	kind   ValueKind
	scalar string
	items  []string
}

// Scalar creates a single-string value
func Scalar(text string) Value {
	return Value{kind: KindScalar, scalar: text}
}

// List creates a list value. The items are copied.
func List(items ...string) Value {
	copied := make([]string, len(items))
	copy(copied, items)
	return Value{kind: KindList, items: copied}
}

// Kind returns which variant the value holds
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsList reports whether the value is a list
func (v Value) IsList() bool {
	return v.kind == KindList
}

// Items returns a copy of the list items, or nil for a scalar
func (v Value) Items() []string {
	if v.kind != KindList {
		return nil
	}
	items := make([]string, len(v.items))
	copy(items, v.items)
	return items
}

// String returns the text substituted for a placeholder bound to this value
func (v Value) String() string {
	if v.kind == KindList {
		return ListOpen + strings.Join(v.items, ListSeparator) + ListClose
	}
	return v.scalar
}
