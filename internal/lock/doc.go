// Package lock implements file-based mutual exclusion for checkpoint
// mutation across CI job processes that share only a filesystem path.
//
// A lock is a single file created with an exclusive-create open, holding the
// acquisition timestamp and an opaque holder identifier. There is no lease
// renewal: a record older than the staleness threshold is treated as
// abandoned and reclaimed by the next acquirer. That forced takeover is a
// deliberate, bounded-risk tradeoff; the alternative (a crashed holder
// blocking every future run) is worse for this pipeline.
package lock
