//go:build debug

package debug

// Debug reports whether the library was built with the debug tag.
const Debug = true
