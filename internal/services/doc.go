// Package services defines the shared error taxonomy for samplegraph
// components.
//
// Errors are tagged with sentinel markers (ErrCheckpoint, ErrDataQuality,
// ErrExternalAPI, ...) via Wrap so callers can classify failures without
// string matching. IsHardStop separates structural checkpoint failures,
// which abort a run, from coordination and data-quality conditions, which
// the pipeline absorbs and logs.
package services
