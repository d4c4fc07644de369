// Package session implements the edit session that sits between a caller and the
// imaging pipeline.
//
// A Session owns the loaded original buffer, the current (edited) buffer and two
// derived views: the edge overlay and the before/after histograms. Callers drive it
// with Command values; each command runs one pipeline operation to completion.
//
// # Source policy
//
// Every edit except rotation recomputes from the original, so only the most
// recently changed parameter is visible:
//
//	Command     Reads     Writes        Recomputes
//	Contrast    original  current       histogram
//	Brightness  original  current       histogram
//	Noise       original  current       histogram
//	Sharpen     original  current       histogram
//	Edges       current   overlay only  -
//	Rotate      current   current       histogram
//
// WithChaining(true) makes every command read from current instead, so edits
// compose in the order they are applied.
//
// Commands issued before an image is loaded are skipped: they return a Result with
// Skipped set and a nil error.
//
// A Session is not safe for concurrent use.
package session
