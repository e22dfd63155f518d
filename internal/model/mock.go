package model

import (
	"context"
	"fmt"
	"strings"
)

// Mock answers without network access. The reply echoes the user text and the
// symptom line of a symptom prompt, so symptoms naming a critical keyword come back
// critical.
type Mock struct{}

const symptomMarker = "**Symptoms:**"

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Generate(ctx context.Context, req Request) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Diagnosis (mock): ")
	if req.Media != nil {
		fmt.Fprintf(&b, "received %s image of %d bytes. ", req.Media.MIMEType, len(req.Media.Data))
	}
	if text := strings.TrimSpace(req.UserText); text != "" {
		fmt.Fprintf(&b, "Reported concerns: %s. ", text)
	}
	if symptoms := promptSymptoms(req.Prompt); symptoms != "" {
		fmt.Fprintf(&b, "Reported symptoms: %s. ", symptoms)
	}
	b.WriteString("Please consult a medical professional for confirmation.")
	return b.String(), nil
}

func promptSymptoms(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), symptomMarker); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
