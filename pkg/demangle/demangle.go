// Package demangle defines the single interface consumed by hierarchical
// identifier reconstruction for canonicalizing identifier strings that
// originate from an upstream hardware-description toolchain's
// name-mangling convention. The actual demangling service is an
// external collaborator; this package owns only the adapter shape, a
// shared, read-only, construction-time-injected capability with a
// single string-in/string-out entry point.
package demangle

// Demangler canonicalizes a raw identifier string before hierarchical
// parsing. Implementations must be safe for concurrent read-only use
// across independently-constructed parsers.
type Demangler interface {
	// Demangle returns the canonical form of mangled, or an error if
	// mangled is not a recognizable mangled identifier.
	Demangle(mangled string) (string, error)
}

// Identity is a no-op Demangler that returns its input unchanged. It is
// useful for tests and for callers that want the demangle hook point
// exercised without depending on the real external service.
type Identity struct{}

// Demangle implements Demangler.
func (Identity) Demangle(mangled string) (string, error) { return mangled, nil }
