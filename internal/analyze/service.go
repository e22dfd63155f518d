// Package analyze runs the three GoMedic flows: one-shot image analysis, the image chat
// session and the symptom diagnosis session.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skufu/GoMedic/internal/alert"
	"github.com/Skufu/GoMedic/internal/model"
	"github.com/Skufu/GoMedic/internal/patient"
	"github.com/Skufu/GoMedic/internal/prompt"
	"github.com/Skufu/GoMedic/internal/report"
	"github.com/Skufu/GoMedic/internal/session"
	"github.com/Skufu/GoMedic/internal/store"
	"github.com/Skufu/GoMedic/internal/triage"
)

var (
	ErrNoFile         = errors.New("no file uploaded")
	ErrInvalidPatient = errors.New("invalid patient details")
	ErrUpstream       = errors.New("model call failed")
	ErrReportNotFound = errors.New("report not found")
)

// ReportWriter persists assembled reports and resolves their on-disk location.
type ReportWriter interface {
	Write(doc report.Document) (string, error)
	Path(file string) string
}

type Deps struct {
	Model     model.Generator
	Detector  *triage.Detector
	Chats     *session.Manager
	Diagnoses *session.Manager
	Reports   ReportWriter
	// Log is optional; nil disables the diagnosis log.
	Log    store.Log
	Alerts alert.Publisher
}

type Service struct {
	model     model.Generator
	detector  *triage.Detector
	chats     *session.Manager
	diagnoses *session.Manager
	reports   ReportWriter
	log       store.Log
	alerts    alert.Publisher
}

func New(d Deps) *Service {
	s := &Service{
		model:     d.Model,
		detector:  d.Detector,
		chats:     d.Chats,
		diagnoses: d.Diagnoses,
		reports:   d.Reports,
		log:       d.Log,
		alerts:    d.Alerts,
	}
	if s.detector == nil {
		s.detector = triage.NewDetector(nil)
	}
	if s.alerts == nil {
		s.alerts = alert.Nop{}
	}
	return s
}

// Upload is an image received from the client.
type Upload struct {
	Filename string
	MIMEType string
	Data     []byte
}

func (u *Upload) media() *model.Media {
	mt := u.MIMEType
	if mt == "" || mt == "application/octet-stream" {
		mt = model.DetectMIMEType(u.Data, u.Filename)
	}
	return &model.Media{MIMEType: mt, Data: u.Data}
}

func (u *Upload) empty() bool {
	return u == nil || len(u.Data) == 0
}

// AnalyzeImage is the stateless path. Model errors are returned unwrapped so callers
// can surface the raw text.
func (s *Service) AnalyzeImage(ctx context.Context, up *Upload, userPrompt string) (string, error) {
	if up.empty() {
		return "", ErrNoFile
	}
	return s.model.Generate(ctx, model.Request{
		Prompt:   prompt.ImageAnalysis,
		Media:    up.media(),
		UserText: strings.TrimSpace(userPrompt),
	})
}

// ChatResult is the image chat session after a submission.
type ChatResult struct {
	Reply string
	State *session.State
}

// ChatImage answers question about up within the caller's chat session. A failed model
// call leaves the history untouched.
func (s *Service) ChatImage(ctx context.Context, sessionID string, up *Upload, question string, now time.Time) (*ChatResult, error) {
	if _, err := s.chats.Begin(ctx, sessionID, now); err != nil {
		return nil, err
	}
	if up.empty() {
		return nil, ErrNoFile
	}

	question = strings.TrimSpace(question)
	reply, err := s.model.Generate(ctx, model.Request{
		Prompt:   prompt.ImageChat,
		Media:    up.media(),
		UserText: question,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	in := session.Interaction{
		ID:   uuid.NewString(),
		Kind: session.KindImageChat,
		Fields: map[string]string{
			"image":    up.Filename,
			"question": question,
		},
		Response:  reply,
		CreatedAt: now,
	}
	st, err := s.chats.Record(ctx, sessionID, in, now)
	if err != nil {
		return nil, err
	}
	s.record(ctx, store.Entry{
		ID:        in.ID,
		SessionID: sessionID,
		Kind:      string(in.Kind),
		Input:     question,
		Response:  reply,
		CreatedAt: now,
	})
	return &ChatResult{Reply: reply, State: st}, nil
}

// DiagnosisResult is the symptom session after a submission.
type DiagnosisResult struct {
	// Details are the labelled patient fields shown above the diagnosis.
	Details    []report.Field
	Diagnosis  string
	Triage     triage.Result
	Hospitals  []triage.Hospital
	ReportFile string
	State      *session.State
}

// Diagnose runs the symptom flow: model call, critical keyword scan, report, history.
func (s *Service) Diagnose(ctx context.Context, sessionID string, p patient.Patient, now time.Time) (*DiagnosisResult, error) {
	if _, err := s.diagnoses.Begin(ctx, sessionID, now); err != nil {
		return nil, err
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatient, err)
	}
	if _, err := report.FileName(p.Name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatient, err)
	}

	text, err := prompt.Symptoms(p)
	if err != nil {
		return nil, err
	}
	diagnosis, err := s.model.Generate(ctx, model.Request{Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	res := s.detector.Detect(diagnosis)
	var hospitals []triage.Hospital
	if res.Critical {
		hospitals = triage.Hospitals()
		log.Printf("diagnosis: critical keywords %v for session %s", res.Matched, sessionID)
	}

	doc := report.Assemble(p, diagnosis, res, triage.Hospitals())
	file, err := s.reports.Write(doc)
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	in := session.Interaction{
		ID:         uuid.NewString(),
		Kind:       session.KindDiagnosis,
		Fields:     p.Fields(),
		Response:   diagnosis,
		Critical:   res.Critical,
		Keywords:   res.Matched,
		ReportFile: file,
		CreatedAt:  now,
	}
	st, err := s.diagnoses.Record(ctx, sessionID, in, now)
	if err != nil {
		return nil, err
	}

	if res.Critical {
		ev := alert.Event{SessionID: sessionID, Patient: p.Name, Keywords: res.Matched, Report: file, At: now}
		if err := s.alerts.Publish(ctx, ev); err != nil {
			log.Printf("alert publish error: %v", err)
		}
	}
	s.record(ctx, store.Entry{
		ID:          in.ID,
		SessionID:   sessionID,
		Kind:        string(in.Kind),
		PatientName: p.Name,
		Input:       p.Symptoms,
		Response:    diagnosis,
		Critical:    res.Critical,
		Keywords:    res.Matched,
		ReportFile:  file,
		CreatedAt:   now,
	})

	return &DiagnosisResult{
		Details:    doc.Fields,
		Diagnosis:  diagnosis,
		Triage:     res,
		Hospitals:  hospitals,
		ReportFile: file,
		State:      st,
	}, nil
}

// ChatSession returns the caller's chat history, applying the idle expiry.
func (s *Service) ChatSession(ctx context.Context, sessionID string, now time.Time) (*session.State, error) {
	return s.chats.Begin(ctx, sessionID, now)
}

// DiagnosisSession returns the caller's diagnosis history, applying the idle expiry.
func (s *Service) DiagnosisSession(ctx context.Context, sessionID string, now time.Time) (*session.State, error) {
	return s.diagnoses.Begin(ctx, sessionID, now)
}

// ClearChat drops the caller's chat history.
func (s *Service) ClearChat(ctx context.Context, sessionID string) error {
	return s.chats.Clear(ctx, sessionID)
}

// ClearDiagnosis drops the caller's diagnosis history. Reports already written stay on
// disk but are no longer downloadable from this session.
func (s *Service) ClearDiagnosis(ctx context.Context, sessionID string) error {
	return s.diagnoses.Clear(ctx, sessionID)
}

// ReportPath resolves file for download. Only reports produced within the caller's
// current diagnosis session are served.
func (s *Service) ReportPath(ctx context.Context, sessionID, file string, now time.Time) (string, error) {
	st, err := s.diagnoses.Begin(ctx, sessionID, now)
	if err != nil {
		return "", err
	}
	if err := report.ValidateFile(file); err != nil {
		return "", err
	}
	if !st.HasReport(file) {
		return "", ErrReportNotFound
	}
	return s.reports.Path(file), nil
}

// Keywords returns the active critical keywords.
func (s *Service) Keywords() []string {
	return s.detector.Keywords()
}

// Entries lists logged interactions for sessionID. It returns nil when the log is disabled.
func (s *Service) Entries(ctx context.Context, sessionID string, limit int) ([]store.Entry, error) {
	if s.log == nil {
		return nil, nil
	}
	return s.log.List(ctx, sessionID, limit)
}

func (s *Service) record(ctx context.Context, e store.Entry) {
	if s.log == nil {
		return
	}
	if err := s.log.Record(ctx, e); err != nil {
		log.Printf("diagnosis log error: %v", err)
	}
}
