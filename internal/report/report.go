// Package report assembles the downloadable medical report for a symptom submission.
package report

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Skufu/GoMedic/internal/patient"
	"github.com/Skufu/GoMedic/internal/triage"
)

const (
	Title            = "Medical Diagnosis Report"
	DiagnosisHeading = "AI Diagnosis & Treatment"
	fileSuffix       = "_Medical_Report.docx"
)

var ErrInvalidName = errors.New("report: invalid patient name for file name")

// Field is one labelled line of patient details.
type Field struct {
	Label string
	Value string
}

// Emergency is present only when the diagnosis was flagged critical.
type Emergency struct {
	Banner    string
	Title     string
	Keywords  []string
	Hospitals []triage.Hospital
}

// Document is the ordered content of a report, independent of the output format.
type Document struct {
	PatientName string
	Title       string
	Fields      []Field
	Diagnosis   string
	Emergency   *Emergency
}

// Assemble builds the report for one submission. The emergency section is included
// only when result is critical and then lists every hospital given.
func Assemble(p patient.Patient, diagnosis string, result triage.Result, hospitals []triage.Hospital) Document {
	doc := Document{
		PatientName: p.Name,
		Title:       Title,
		Fields: []Field{
			{Label: "Patient Name", Value: p.Name},
			{Label: "Age", Value: strconv.Itoa(p.Age)},
			{Label: "Gender", Value: p.Gender},
			{Label: "Symptoms", Value: p.Symptoms},
			{Label: "Past Medical History", Value: p.HistoryOrNone()},
		},
		Diagnosis: diagnosis,
	}
	if result.Critical {
		list := make([]triage.Hospital, len(hospitals))
		copy(list, hospitals)
		doc.Emergency = &Emergency{
			Banner:    triage.Banner,
			Title:     triage.DirectoryTitle,
			Keywords:  append([]string(nil), result.Matched...),
			Hospitals: list,
		}
	}
	return doc
}

// FileName returns "<name>_Medical_Report.docx". The same name always maps to the same
// file, so a later report for that name replaces the earlier one.
func FileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return "", err
	}
	return name + fileSuffix, nil
}

// ValidateFile checks that file is a name FileName could have produced.
func ValidateFile(file string) error {
	name, ok := strings.CutSuffix(file, fileSuffix)
	if !ok || name != strings.TrimSpace(name) {
		return ErrInvalidName
	}
	return validateName(name)
}

// maxFileName is the longest file name common filesystems accept.
const maxFileName = 255

func validateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if len(name)+len(fileSuffix) > maxFileName {
		return ErrInvalidName
	}
	if strings.Contains(name, "..") {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return ErrInvalidName
	}
	return nil
}
