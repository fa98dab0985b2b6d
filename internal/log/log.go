// Package log defines the engine's logging interface and a default
// implementation, adapted from the teacher's base.Logger to route
// through cockroachdb/redact so container paths and schema names (which
// may originate from untrusted input) are marked redactable rather than
// concatenated into plain format strings.
package log

import (
	"os"

	"github.com/cockroachdb/redact"
)

// Logger is the interface the CLI logs through. Tests install
// testutils.Logger, which reports through testing.TB instead of
// stderr.
type Logger interface {
	Infof(format redact.RedactableString, args ...interface{})
	Errorf(format redact.RedactableString, args ...interface{})
	Fatalf(format redact.RedactableString, args ...interface{})
}

// Default logs to stderr via redact, stripping markers (this process is
// not itself a multi-tenant log sink, so there is no redaction
// boundary to preserve past this point).
type Default struct{}

func (Default) Infof(format redact.RedactableString, args ...interface{}) {
	writeLine(os.Stderr, "I", format, args...)
}

func (Default) Errorf(format redact.RedactableString, args ...interface{}) {
	writeLine(os.Stderr, "E", format, args...)
}

func (Default) Fatalf(format redact.RedactableString, args ...interface{}) {
	writeLine(os.Stderr, "F", format, args...)
	os.Exit(1)
}

func writeLine(w *os.File, level string, format redact.RedactableString, args ...interface{}) {
	msg := redact.Sprintf(string(format), args...)
	w.WriteString(level)
	w.WriteString(": ")
	w.WriteString(msg.StripMarkers())
	w.WriteString("\n")
}
