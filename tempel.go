// Package tempel renders text documents that contain placeholders and
// simple loops.
//
// Placeholders are written between double braces and are replaced by the
// bound value:
//
//	Hello {{ name }}
//
// Loops repeat their body once per element of a bound list:
//
//	{% for item in items %}Greetings to {{ item }}! {% endfor %}
//
// # Basic Usage
//
// Compile once, render many times:
//
//	tmpl, err := tempel.Compile("Hello {{ name }}")
//	if err != nil {
//	    return err
//	}
//	out, err := tmpl.Render(tempel.NewBindings(tempel.Var("name", "Alice")))
//	// out: "Hello Alice"
//
// A compiled Template is immutable and safe for concurrent use.
//
// # Values
//
// Bindings map names to scalar or list values. A list bound to a plain
// placeholder renders as "[a, b, c]"; inside a loop each element is bound
// to the loop variable in turn. Placeholders without a binding are left in
// the output unchanged, and bindings that no placeholder uses are ignored.
//
// # Errors
//
// Compilation reports unbalanced or misordered braces with ErrUnbalancedBraces
// and ErrFormat, and loop structure problems with ErrNestedLoop and
// ErrUnbalancedForLoop. Rendering a loop whose list is not bound fails with
// ErrNoSuchList unless the MissingListEmpty strategy is configured:
//
//	tmpl, err := tempel.Compile(src, tempel.WithMissingListStrategy(tempel.MissingListEmpty))
//
// Use errors.Is to test the kind and FormatErrorRange, MissingListName and
// ErrorPosition to read the details.
//
// # Storage
//
// Templates can be stored and versioned through pluggable backends opened
// by driver name ("memory", "filesystem", "postgres") and rendered through a
// StorageEngine that caches compiled templates:
//
//	storage, _ := tempel.OpenStorage("filesystem", "/var/lib/templates")
//	se := tempel.MustNewStorageEngine(tempel.StorageEngineConfig{Storage: storage})
//	out, err := se.Render(ctx, "greeting", bindings)
package tempel
