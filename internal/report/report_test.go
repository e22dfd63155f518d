package report

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/GoMedic/internal/patient"
	"github.com/Skufu/GoMedic/internal/triage"
)

func janeDoe() patient.Patient {
	return patient.Patient{Name: "Jane Doe", Age: 42, Gender: "Female", Symptoms: "chest pain"}
}

func TestAssembleCriticalIncludesEmergencySection(t *testing.T) {
	diagnosis := "Possible angina. Chest pain warrants urgent evaluation."
	result := triage.NewDetector(nil).Detect(diagnosis)
	require.True(t, result.Critical)

	doc := Assemble(janeDoe(), diagnosis, result, triage.Hospitals())

	assert.Equal(t, Title, doc.Title)
	labels := make([]string, 0, len(doc.Fields))
	for _, f := range doc.Fields {
		labels = append(labels, f.Label)
	}
	assert.Equal(t, []string{"Patient Name", "Age", "Gender", "Symptoms", "Past Medical History"}, labels)
	assert.Equal(t, "42", doc.Fields[1].Value)
	assert.Equal(t, "None", doc.Fields[4].Value)
	assert.Equal(t, diagnosis, doc.Diagnosis)

	require.NotNil(t, doc.Emergency)
	assert.Equal(t, triage.Banner, doc.Emergency.Banner)
	assert.Equal(t, triage.DirectoryTitle, doc.Emergency.Title)
	assert.Equal(t, []string{"chest pain"}, doc.Emergency.Keywords)
	assert.Len(t, doc.Emergency.Hospitals, 5)
}

func TestAssembleNonCriticalOmitsEmergencySection(t *testing.T) {
	diagnosis := "Likely a common cold. Rest and fluids."
	result := triage.NewDetector(nil).Detect(diagnosis)

	doc := Assemble(janeDoe(), diagnosis, result, triage.Hospitals())
	assert.Nil(t, doc.Emergency)
}

func TestFileName(t *testing.T) {
	cases := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "Jane Doe", want: "Jane Doe_Medical_Report.docx"},
		{name: "  Ravi  ", want: "Ravi_Medical_Report.docx"},
		{name: "", wantErr: true},
		{name: "   ", wantErr: true},
		{name: "../etc/passwd", wantErr: true},
		{name: "a/b", wantErr: true},
		{name: `a\b`, wantErr: true},
		{name: "bad\x00name", wantErr: true},
		{name: strings.Repeat("A", maxFileName-len(fileSuffix)), want: strings.Repeat("A", maxFileName-len(fileSuffix)) + fileSuffix},
		{name: strings.Repeat("A", 260), wantErr: true},
	}
	for _, tc := range cases {
		got, err := FileName(tc.name)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidName, "name %q", tc.name)
			continue
		}
		require.NoError(t, err, "name %q", tc.name)
		assert.Equal(t, tc.want, got)
	}
}

func TestValidateFile(t *testing.T) {
	assert.NoError(t, ValidateFile("Jane Doe_Medical_Report.docx"))
	assert.ErrorIs(t, ValidateFile("Jane Doe.docx"), ErrInvalidName)
	assert.ErrorIs(t, ValidateFile("_Medical_Report.docx"), ErrInvalidName)
	assert.ErrorIs(t, ValidateFile("..%2f_Medical_Report.docx"), ErrInvalidName)
	assert.ErrorIs(t, ValidateFile(" x_Medical_Report.docx"), ErrInvalidName)
	assert.ErrorIs(t, ValidateFile(strings.Repeat("A", 260)+fileSuffix), ErrInvalidName)
}

func documentXML(t *testing.T, path string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("word/document.xml not found in %s", path)
	return ""
}

func TestWriterWritesAndOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := NewWriter(dir)

	critical := "Symptoms consistent with chest pain of cardiac origin."
	doc := Assemble(janeDoe(), critical, triage.NewDetector(nil).Detect(critical), triage.Hospitals())
	file, err := w.Write(doc)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe_Medical_Report.docx", file)

	body := documentXML(t, w.Path(file))
	assert.Contains(t, body, "Jane Doe")
	assert.Contains(t, body, triage.Banner)
	for _, h := range triage.Hospitals() {
		assert.Contains(t, body, h.Name)
	}

	calm := "Seasonal allergies."
	doc = Assemble(janeDoe(), calm, triage.NewDetector(nil).Detect(calm), triage.Hospitals())
	again, err := w.Write(doc)
	require.NoError(t, err)
	assert.Equal(t, file, again)

	body = documentXML(t, w.Path(file))
	assert.Contains(t, body, "Seasonal allergies.")
	assert.False(t, strings.Contains(body, triage.Banner), "overwritten report should drop the emergency section")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriterRejectsInvalidName(t *testing.T) {
	w := NewWriter(t.TempDir())
	_, err := w.Write(Document{PatientName: "../x", Title: Title})
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestWriterKeepsLineBreaks(t *testing.T) {
	w := NewWriter(t.TempDir())
	p := janeDoe()
	p.Symptoms = "fever\r\nsore throat"
	diagnosis := "1. Diagnosis: common cold\n2. Treatment: rest\n3. Next steps: see a doctor if it persists"

	file, err := w.Write(Assemble(p, diagnosis, triage.NewDetector(nil).Detect(diagnosis), nil))
	require.NoError(t, err)

	body := documentXML(t, w.Path(file))
	for _, line := range []string{"1. Diagnosis: common cold", "2. Treatment: rest", "3. Next steps: see a doctor if it persists", "fever", "sore throat"} {
		assert.Contains(t, body, line)
	}
	assert.NotContains(t, body, "&#xA;")
	assert.NotContains(t, body, "&#xD;")
	assert.NotContains(t, body, "common cold\n")

	first := strings.Index(body, "common cold")
	second := strings.Index(body, "2. Treatment")
	require.True(t, first >= 0 && second > first)
	assert.Contains(t, body[first:second], "</w:p>", "each diagnosis line should be its own paragraph")
}
