//go:build !race

package buildtags

// Race is true if this binary was built with the "race" build tag.
const Race = false
