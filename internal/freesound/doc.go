// Package freesound is a thin client for the Freesound APIv2 batched sample
// lookup used by the integrity repair cycle. One FetchByIDs call resolves up
// to a full search page of sample ids; ids missing from the response were
// deleted upstream and are reported by omission, not by error.
package freesound
