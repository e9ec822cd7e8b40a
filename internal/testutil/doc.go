// Package testutil holds deterministic test signals and assertions shared
// by the processor tests.
package testutil
