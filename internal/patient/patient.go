// Package patient holds the structured intake fields collected by the symptom form.
package patient

import (
	"errors"
	"strconv"
	"strings"
)

const (
	MinAge     = 1
	MaxAge     = 120
	DefaultAge = 25
)

// Genders lists the accepted gender options in display order.
var Genders = []string{"Male", "Female", "Other"}

var (
	ErrNameRequired     = errors.New("patient name is required")
	ErrSymptomsRequired = errors.New("symptoms are required")
	ErrAgeOutOfRange    = errors.New("age must be between 1 and 120")
	ErrUnknownGender    = errors.New("gender must be Male, Female or Other")
)

type Patient struct {
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Symptoms string `json:"symptoms"`
	History  string `json:"history"`
}

// Normalize trims free-text fields in place.
func (p *Patient) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Gender = strings.TrimSpace(p.Gender)
	p.Symptoms = strings.TrimSpace(p.Symptoms)
	p.History = strings.TrimSpace(p.History)
}

func (p Patient) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(p.Symptoms) == "" {
		return ErrSymptomsRequired
	}
	if p.Age < MinAge || p.Age > MaxAge {
		return ErrAgeOutOfRange
	}
	if !containsString(Genders, p.Gender) {
		return ErrUnknownGender
	}
	return nil
}

// HistoryOrNone returns the past medical history or "None" when it was left blank.
func (p Patient) HistoryOrNone() string {
	if strings.TrimSpace(p.History) == "" {
		return "None"
	}
	return p.History
}

// Fields flattens the patient into the key/value form stored in session history.
func (p Patient) Fields() map[string]string {
	return map[string]string{
		"name":     p.Name,
		"age":      strconv.Itoa(p.Age),
		"gender":   p.Gender,
		"symptoms": p.Symptoms,
		"history":  p.History,
	}
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
