package prompt

import (
	"strings"
	"testing"

	"github.com/Skufu/GoMedic/internal/patient"
)

func TestSymptomsRendersPatientFields(t *testing.T) {
	got, err := Symptoms(patient.Patient{Name: "Jane Doe", Age: 52, Gender: "Female", Symptoms: "chest pain"})
	if err != nil {
		t.Fatalf("Symptoms: %v", err)
	}

	for _, want := range []string{
		"**Patient Name:** Jane Doe",
		"**Age:** 52",
		"**Gender:** Female",
		"**Symptoms:** chest pain",
		"**Past Medical History:** None",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in prompt:\n%s", want, got)
		}
	}
}

func TestSymptomsKeepsHistory(t *testing.T) {
	got, err := Symptoms(patient.Patient{Name: "A", Age: 30, Gender: "Other", Symptoms: "x", History: "Diabetes"})
	if err != nil {
		t.Fatalf("Symptoms: %v", err)
	}
	if !strings.Contains(got, "**Past Medical History:** Diabetes") {
		t.Fatalf("history missing from prompt:\n%s", got)
	}
}

func TestAllListsEveryPrompt(t *testing.T) {
	names := map[string]bool{}
	for _, p := range All() {
		if strings.TrimSpace(p.Text) == "" {
			t.Fatalf("prompt %s is empty", p.Name)
		}
		names[p.Name] = true
	}
	for _, want := range []string{"image_analysis", "image_chat", "symptoms"} {
		if !names[want] {
			t.Fatalf("missing prompt %s", want)
		}
	}
}
