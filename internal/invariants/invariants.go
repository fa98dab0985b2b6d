// Package invariants centralizes the engine's debug-assertion gating.
//
// spec §9 notes that the original C implementation's `assert(1)` in two
// schema-dispatch default cases looks like a typo for `assert(0)`: an
// unknown schema kind byte is a programming error, not a possible input,
// and should abort loudly in a debug build while still degrading to a
// returned error in a production build that would rather stay up. Enabled
// reports which of those two behaviors is active.
package invariants

import "github.com/pkgadb/adbc/internal/buildtags"

// Enabled is true if this binary was built with the "invariants" or "race"
// build tag. Callers that want to abort on programming errors only in
// debug/test builds should gate on this.
const Enabled = buildtags.Invariants || buildtags.Race
