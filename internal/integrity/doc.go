// Package integrity validates and repairs the metadata cache.
//
// A scan classifies every record against the expected field schema and
// produces a persistable issue set. Repair gap-fills the flagged samples
// from fresh Freesound fetches without ever overwriting populated values,
// while Refresh unconditionally rewrites the engagement counters. Both
// run in bounded batches under a per-run fetch budget so a single run can
// never exceed the upstream rate limit.
package integrity
