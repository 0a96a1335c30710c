package tempel

import (
	"fmt"
	"reflect"
)

// Bindings maps variable names to values for one render call.
// The template never mutates it.
type Bindings map[string]Value

// Pair is one name/value entry for NewBindings
type Pair struct {
	Name  string
	Value Value
}

// Var builds a Pair from a Go value. Slices and arrays become a List of their
// elements formatted with %v; everything else becomes a Scalar.
func Var(name string, value any) Pair {
	return Pair{Name: name, Value: ValueOf(value)}
}

// NewBindings assembles a binding set from pairs. Later pairs win on
// duplicate names.
//
//	b := tempel.NewBindings(
//	    tempel.Var("name", "foo"),
//	    tempel.Var("names", []string{"foo", "bar"}),
//	)
func NewBindings(pairs ...Pair) Bindings {
	b := make(Bindings, len(pairs))
	for _, p := range pairs {
		b[p.Name] = p.Value
	}
	return b
}

// BindingsFromMap converts decoded JSON or YAML data into bindings using the
// same rules as Var.
func BindingsFromMap(data map[string]any) Bindings {
	b := make(Bindings, len(data))
	for name, value := range data {
		b[name] = ValueOf(value)
	}
	return b
}

// ValueOf converts a Go value to a Value. A Value is returned unchanged, nil
// becomes an empty Scalar, slices and arrays become a List.
func ValueOf(value any) Value {
	switch v := value.(type) {
	case Value:
		return v
	case nil:
		return Scalar("")
	case string:
		return Scalar(v)
	case []string:
		return List(v...)
	case fmt.Stringer:
		return Scalar(v.String())
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = formatItem(rv.Index(i).Interface())
		}
		return List(items...)
	}
	return Scalar(fmt.Sprintf("%v", value))
}

func formatItem(item any) string {
	if item == nil {
		return ""
	}
	return fmt.Sprintf("%v", item)
}

// With returns a copy of b with name bound to value. b is unchanged.
func (b Bindings) With(name string, value Value) Bindings {
	out := make(Bindings, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	out[name] = value
	return out
}

// Get returns the value bound to name
func (b Bindings) Get(name string) (Value, bool) {
	v, ok := b[name]
	return v, ok
}

// List returns the items of the list bound to name. ok is false when the name
// is unbound or bound to a scalar.
func (b Bindings) List(name string) ([]string, bool) {
	v, ok := b[name]
	if !ok || !v.IsList() {
		return nil, false
	}
	return v.Items(), true
}

// lookup resolves a placeholder to its substituted text
func (b Bindings) lookup(name string) (string, bool) {
	v, ok := b[name]
	if !ok {
		return "", false
	}
	return v.String(), true
}
