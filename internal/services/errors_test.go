package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("open graph_topology.json: no such file")
	err := Wrap(ErrCheckpoint, "verifier", "verify", "topology missing", inner)
	if !errors.Is(err, ErrCheckpoint) {
		t.Fatalf("expected checkpoint marker, got %v", err)
	}
	if !errors.Is(err, inner) {
		t.Fatal("expected wrapped inner error to survive")
	}
	if !strings.Contains(err.Error(), "verifier: verify: topology missing") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "status", "fetch", "", nil)
	if !errors.Is(err, ErrExternalAPI) {
		t.Fatalf("expected default external-api marker, got %v", err)
	}
}

func TestIsHardStop(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		expect bool
	}{
		{"checkpoint", Wrap(ErrCheckpoint, "verifier", "verify", "empty graph", nil), true},
		{"configuration", Wrap(ErrConfiguration, "config", "load", "bad value", nil), true},
		{"data quality", Wrap(ErrDataQuality, "scan", "classify", "missing field", nil), false},
		{"external api", Wrap(ErrExternalAPI, "freesound", "fetch", "429", nil), false},
		{"timeout", Wrap(ErrTimeout, "lock", "acquire", "deadline", nil), false},
	}
	for _, tc := range cases {
		if got := IsHardStop(tc.err); got != tc.expect {
			t.Errorf("%s: expected IsHardStop=%v, got %v", tc.name, tc.expect, got)
		}
	}
}
