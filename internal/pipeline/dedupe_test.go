// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"testing"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

func TestDedupeWithinBatch(t *testing.T) {
	records := []types.Paper{
		paper("Deep Learning", "Y LeCun", 2015),
		paper("DEEP LEARNING", "y lecun", 2016),
		paper("Deep Learning", "I Goodfellow", 2016),
	}

	out, removed := Dedupe(records, nil)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	// First occurrence wins.
	if *out[0].Year != 2015 {
		t.Errorf("kept year = %d, want 2015", *out[0].Year)
	}
}

func TestDedupeAgainstKnown(t *testing.T) {
	known := NewKeySet(paper("Stored Paper", "Someone", 0))
	records := []types.Paper{
		paper("stored paper", "SOMEONE", 2010),
		paper("New Paper", "Someone", 2011),
	}

	out, removed := Dedupe(records, known)
	if removed != 1 || len(out) != 1 {
		t.Fatalf("removed=%d len=%d, want 1 and 1", removed, len(out))
	}
	if out[0].Title != "New Paper" {
		t.Errorf("kept %q, want %q", out[0].Title, "New Paper")
	}
}

func TestDedupeNoFuzzyMatch(t *testing.T) {
	records := []types.Paper{
		paper("Deep Learning", "Y LeCun", 0),
		paper("Deep Learning.", "Y LeCun", 0),
		paper("Deep Learning", "Y. LeCun", 0),
	}
	out, removed := Dedupe(records, nil)
	if removed != 0 || len(out) != 3 {
		t.Errorf("removed=%d len=%d, want 0 and 3", removed, len(out))
	}
}

func TestDedupeNoEqualKeysAndIdempotent(t *testing.T) {
	records := []types.Paper{
		paper("A", "x", 0), paper("a", "X", 0), paper("B", "x", 0),
		paper("b", "x", 0), paper("C", "y", 0), paper("A", "x", 0),
	}

	once, _ := Dedupe(records, nil)
	seen := make(map[types.Key]bool)
	for _, p := range once {
		if seen[p.Key()] {
			t.Fatalf("duplicate key %v in output", p.Key())
		}
		seen[p.Key()] = true
	}

	twice, removed := Dedupe(once, nil)
	if removed != 0 {
		t.Errorf("second pass removed %d, want 0", removed)
	}
	if len(twice) != len(once) {
		t.Fatalf("second pass len = %d, want %d", len(twice), len(once))
	}
	for i := range once {
		if once[i].Key() != twice[i].Key() {
			t.Errorf("order changed at %d: %v vs %v", i, once[i].Key(), twice[i].Key())
		}
	}
}

func TestDedupeEmpty(t *testing.T) {
	out, removed := Dedupe(nil, NewKeySet())
	if len(out) != 0 || removed != 0 {
		t.Errorf("Dedupe(nil) = %v, %d", out, removed)
	}
}
