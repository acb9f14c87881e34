package checkpoint

import (
	"sort"
	"time"
)

// Bookkeeping keys maintained inside sample records alongside the Freesound
// fields themselves. The underscore prefix on KeyMissingFromFreesound is
// load-bearing: older collector versions already wrote it that way.
const (
	KeyDataQualityChecked   = "data_quality_checked"
	KeyAPIDataUnavailable   = "api_data_unavailable"
	KeyMissingFromFreesound = "_missing_from_freesound"
)

// Record is one sample's metadata: a loosely typed field map as returned by
// the Freesound API, plus local bookkeeping fields.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	cp := make(Record, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

// Bool reads a boolean field, tolerating absence.
func (r Record) Bool(key string) bool {
	v, ok := r[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Unavailable reports whether the sample was confirmed absent upstream.
func (r Record) Unavailable() bool {
	return r.Bool(KeyAPIDataUnavailable)
}

// MarkChecked stamps the record as quality-checked at the given time.
func (r Record) MarkChecked(at time.Time) {
	r[KeyDataQualityChecked] = at.UTC().Format(time.RFC3339)
}

// MarkUnavailable flags the whole record as confirmed absent upstream and
// records which fields were still missing at that point.
func (r Record) MarkUnavailable(missingFields []string) {
	r[KeyAPIDataUnavailable] = true
	r.AddMissingFromFreesound(missingFields)
}

// MissingFromFreesound returns the set of field names known to be absent
// upstream, so scans do not re-flag them.
func (r Record) MissingFromFreesound() map[string]struct{} {
	set := make(map[string]struct{})
	raw, ok := r[KeyMissingFromFreesound]
	if !ok {
		return set
	}
	switch value := raw.(type) {
	case []string:
		for _, name := range value {
			set[name] = struct{}{}
		}
	case []any:
		// JSON round-trips string slices as []any.
		for _, item := range value {
			if name, ok := item.(string); ok {
				set[name] = struct{}{}
			}
		}
	}
	return set
}

// AddMissingFromFreesound merges field names into the known-absent set.
func (r Record) AddMissingFromFreesound(fields []string) {
	if len(fields) == 0 {
		return
	}
	set := r.MissingFromFreesound()
	for _, name := range fields {
		set[name] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	r[KeyMissingFromFreesound] = names
}

// Empty reports whether a field value counts as missing for data-quality
// purposes: nil, empty string, empty slice, or empty map.
func Empty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}
