// Package logtail reads the tail of presser's own log file for the Activity
// view.
//
// Read extracts the last N lines with a ring buffer sized to N, so memory
// stays O(N) no matter how large the file grows. Missing files return nil,
// nil; other I/O errors are wrapped.
//
// Parse and ParseAll decode the zerolog JSON lines written by the logging
// package into Entry values. Anything that is not a JSON object is kept
// verbatim in Entry.Raw. Styling is left to the UI.
//
// There is no file watching here. The UI re-reads the tail on its refresh
// tick.
package logtail
