// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package testutils

import (
	"testing"

	"github.com/cockroachdb/redact"
)

// Logger is a log.Logger that writes to a testing.TB instead of stderr, for
// tests that need to observe or suppress CLI logging.
type Logger struct {
	T testing.TB
}

func (l Logger) Infof(format redact.RedactableString, args ...interface{}) {
	l.T.Logf("%s", redact.Sprintf(string(format), args...).StripMarkers())
}

func (l Logger) Errorf(format redact.RedactableString, args ...interface{}) {
	l.T.Logf("%s", redact.Sprintf(string(format), args...).StripMarkers())
}

func (l Logger) Fatalf(format redact.RedactableString, args ...interface{}) {
	l.T.Helper()
	l.T.Fatalf("%s", redact.Sprintf(string(format), args...).StripMarkers())
}
