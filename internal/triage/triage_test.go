package triage

import (
	"strings"
	"testing"
)

func TestDetectDefaultKeywords(t *testing.T) {
	d := NewDetector(nil)

	cases := []struct {
		text     string
		critical bool
		matched  []string
	}{
		{"Likely a mild cold.", false, nil},
		{"Symptoms consistent with a STROKE.", true, []string{"stroke"}},
		{"Possible Heart Attack with chest pain radiating to the arm", true, []string{"heart attack", "chest pain"}},
		{"Patient may become unconscious", true, []string{"unconscious"}},
		{"Severe breathing difficulty reported", true, []string{"severe breathing difficulty"}},
		{"No history of chest pain.", true, []string{"chest pain"}},
		{"", false, nil},
	}

	for _, tc := range cases {
		got := d.Detect(tc.text)
		if got.Critical != tc.critical {
			t.Fatalf("Detect(%q).Critical = %v, want %v", tc.text, got.Critical, tc.critical)
		}
		if strings.Join(got.Matched, ",") != strings.Join(tc.matched, ",") {
			t.Fatalf("Detect(%q).Matched = %v, want %v", tc.text, got.Matched, tc.matched)
		}
	}
}

// Critical must hold exactly when some keyword is a case-insensitive substring.
func TestDetectMatchesSubstringDefinition(t *testing.T) {
	d := NewDetector(nil)
	texts := []string{
		"strokes of luck", "HEART ATTACKS", "heartattack", "chest  pain", "Unconsciousness",
		"breathing difficulty", "severe breathing difficulty!", "nothing to see",
	}
	for _, text := range texts {
		want := false
		for _, k := range DefaultKeywords() {
			if strings.Contains(strings.ToLower(text), strings.ToLower(k)) {
				want = true
			}
		}
		if got := d.Detect(text).Critical; got != want {
			t.Fatalf("Detect(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestNewDetectorNormalizesKeywords(t *testing.T) {
	d := NewDetector([]string{" Seizure ", "seizure", ""})
	if got := d.Keywords(); len(got) != 1 || got[0] != "seizure" {
		t.Fatalf("unexpected keywords %v", got)
	}
	if !d.Detect("possible SEIZURE activity").Critical {
		t.Fatal("expected override keyword to match")
	}
	if d.Detect("stroke").Critical {
		t.Fatal("override should replace the default list")
	}
}

func TestHospitalsDirectory(t *testing.T) {
	list := Hospitals()
	if len(list) != 5 {
		t.Fatalf("expected 5 hospitals, got %d", len(list))
	}
	if list[0].Name != "AIIMS Delhi" || list[4].Name != "CMC Vellore" {
		t.Fatalf("unexpected order %v", list)
	}

	list[0].Name = "changed"
	if Hospitals()[0].Name != "AIIMS Delhi" {
		t.Fatal("directory must not be mutable through the returned slice")
	}
}
