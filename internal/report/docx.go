package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gomutex/godocx"
)

// Writer renders documents as .docx files under Dir.
type Writer struct {
	Dir string

	mu sync.Mutex
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Path returns where file lives on disk.
func (w *Writer) Path(file string) string {
	return filepath.Join(w.Dir, file)
}

// Write renders doc and saves it as FileName(doc.PatientName), replacing any existing
// file of that name. It returns the bare file name.
func (w *Writer) Write(doc Document) (string, error) {
	file, err := FileName(doc.PatientName)
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	out, err := godocx.NewDocument()
	if err != nil {
		return "", fmt.Errorf("new document: %w", err)
	}
	if _, err := out.AddHeading(doc.Title, 1); err != nil {
		return "", fmt.Errorf("add heading: %w", err)
	}
	for _, f := range doc.Fields {
		lines := splitLines(f.Value)
		p := out.AddParagraph("")
		p.AddText(f.Label + ": ").Bold(true)
		p.AddText(lines[0])
		for _, line := range lines[1:] {
			out.AddParagraph(line)
		}
	}

	out.AddParagraph("").AddText(DiagnosisHeading).Bold(true)
	for _, line := range splitLines(doc.Diagnosis) {
		out.AddParagraph(line)
	}

	if em := doc.Emergency; em != nil {
		out.AddParagraph(em.Banner).Style("Intense Quote")
		out.AddParagraph("").AddText(em.Title).Bold(true)
		for _, h := range em.Hospitals {
			out.AddParagraph(h.Name + ": " + h.Contact).Style("List Bullet")
		}
	}

	path := w.Path(file)
	if err := out.SaveTo(path); err != nil {
		return "", fmt.Errorf("save report %s: %w", path, err)
	}
	return file, nil
}

// splitLines breaks s into lines. Word ignores raw newlines inside a text run, so
// each line becomes its own paragraph.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}
