// Package workflows coordinates CI job classes that must not overlap.
//
// A static, symmetric conflict matrix names the exclusions. The status
// client asks the CI status API which classes currently have in-progress
// runs, caching answers briefly, and the coordinator waits out any
// conflicting run up to a deadline. Status-API failure degrades to an
// Unknown state and the job proceeds: the checkpoint lock remains the
// actual mutual-exclusion guarantee.
package workflows
