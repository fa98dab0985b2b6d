//go:build !invariants

package buildtags

// Invariants is true if this binary was built with the "invariants" build tag.
const Invariants = false
