package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/GoMedic/internal/analyze"
	"github.com/Skufu/GoMedic/internal/patient"
	"github.com/Skufu/GoMedic/internal/prompt"
	"github.com/Skufu/GoMedic/internal/report"
	"github.com/Skufu/GoMedic/internal/session"
	"github.com/Skufu/GoMedic/internal/triage"
)

type chatView struct {
	IdleSeconds int
	State       *session.State
	Reply       string
	Error       string
}

type diagnosisView struct {
	IdleSeconds    int
	Genders        []string
	Form           patient.Patient
	State          *session.State
	Result         *analyze.DiagnosisResult
	ReportURL      string
	Banner         string
	Advice         string
	DirectoryTitle string
	Error          string
}

func (h *handlers) idleSeconds() int {
	return int(h.idle.Seconds())
}

func (h *handlers) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"IdleSeconds": h.idleSeconds()})
}

// analyze is the stateless JSON endpoint.
func (h *handlers) analyze(c *gin.Context) {
	up, err := readUpload(c, "file")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	text, err := h.svc.AnalyzeImage(c.Request.Context(), up, c.PostForm("user_prompt"))
	if errors.Is(err, analyze.ErrNoFile) {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "No file uploaded"})
		return
	}
	if err != nil {
		log.Printf("analyze error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "analysis": text})
}

func (h *handlers) chatPage(c *gin.Context) {
	id := sessionID(c)
	st, err := h.svc.ChatSession(c.Request.Context(), id, h.now())
	if err != nil {
		log.Printf("chat session error: %v", err)
		c.HTML(http.StatusInternalServerError, "chat.html", chatView{IdleSeconds: h.idleSeconds(), Error: "Session storage is unavailable."})
		return
	}
	page := chatView{IdleSeconds: h.idleSeconds(), State: st}
	if st.Last != nil {
		page.Reply = st.Last.Response
	}
	c.HTML(http.StatusOK, "chat.html", page)
}

func (h *handlers) chatSubmit(c *gin.Context) {
	id := sessionID(c)
	ctx := c.Request.Context()

	up, err := readUpload(c, "file")
	if err == nil {
		var res *analyze.ChatResult
		res, err = h.svc.ChatImage(ctx, id, up, c.PostForm("question"), h.now())
		if err == nil {
			c.HTML(http.StatusOK, "chat.html", chatView{IdleSeconds: h.idleSeconds(), State: res.State, Reply: res.Reply})
			return
		}
	}

	code, msg := pageError(err)
	page := chatView{IdleSeconds: h.idleSeconds(), Error: msg}
	if st, serr := h.svc.ChatSession(ctx, id, h.now()); serr == nil {
		page.State = st
	}
	c.HTML(code, "chat.html", page)
}

func (h *handlers) chatClear(c *gin.Context) {
	if err := h.svc.ClearChat(c.Request.Context(), sessionID(c)); err != nil {
		log.Printf("chat clear error: %v", err)
		c.HTML(http.StatusInternalServerError, "chat.html", chatView{IdleSeconds: h.idleSeconds(), Error: "Session storage is unavailable."})
		return
	}
	c.Redirect(http.StatusSeeOther, "/chat")
}

func (h *handlers) chatHistory(c *gin.Context) {
	st, err := h.svc.ChatSession(c.Request.Context(), sessionID(c), h.now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.historyBody(st))
}

func (h *handlers) newDiagnosisPage() diagnosisView {
	return diagnosisView{
		IdleSeconds:    h.idleSeconds(),
		Genders:        patient.Genders,
		Form:           patient.Patient{Age: patient.DefaultAge, Gender: patient.Genders[0]},
		Banner:         triage.Banner,
		Advice:         triage.Advice,
		DirectoryTitle: triage.DirectoryTitle,
	}
}

func (h *handlers) diagnosisPage(c *gin.Context) {
	page := h.newDiagnosisPage()
	st, err := h.svc.DiagnosisSession(c.Request.Context(), sessionID(c), h.now())
	if err != nil {
		log.Printf("diagnosis session error: %v", err)
		page.Error = "Session storage is unavailable."
		c.HTML(http.StatusInternalServerError, "diagnosis.html", page)
		return
	}
	page.State = st
	c.HTML(http.StatusOK, "diagnosis.html", page)
}

func (h *handlers) diagnosisSubmit(c *gin.Context) {
	id := sessionID(c)
	ctx := c.Request.Context()

	page := h.newDiagnosisPage()
	page.Form = formPatient(c)

	res, err := h.svc.Diagnose(ctx, id, page.Form, h.now())
	if err != nil {
		code, msg := pageError(err)
		page.Error = msg
		if st, serr := h.svc.DiagnosisSession(ctx, id, h.now()); serr == nil {
			page.State = st
		}
		c.HTML(code, "diagnosis.html", page)
		return
	}

	page.Result = res
	page.State = res.State
	page.ReportURL = reportURL(res.ReportFile)
	c.HTML(http.StatusOK, "diagnosis.html", page)
}

func (h *handlers) diagnosisClear(c *gin.Context) {
	if err := h.svc.ClearDiagnosis(c.Request.Context(), sessionID(c)); err != nil {
		log.Printf("diagnosis clear error: %v", err)
		page := h.newDiagnosisPage()
		page.Error = "Session storage is unavailable."
		c.HTML(http.StatusInternalServerError, "diagnosis.html", page)
		return
	}
	c.Redirect(http.StatusSeeOther, "/diagnosis")
}

func (h *handlers) diagnosisJSON(c *gin.Context) {
	var p patient.Patient
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	res, err := h.svc.Diagnose(c.Request.Context(), sessionID(c), p, h.now())
	switch {
	case errors.Is(err, analyze.ErrInvalidPatient):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "details": err.Error()})
		return
	case errors.Is(err, analyze.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "model_unavailable", "details": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"diagnosis":        res.Diagnosis,
		"critical":         res.Triage.Critical,
		"matched_keywords": res.Triage.Matched,
		"hospitals":        res.Hospitals,
		"report_file":      res.ReportFile,
		"report_url":       reportURL(res.ReportFile),
	})
}

func (h *handlers) diagnosisHistory(c *gin.Context) {
	id := sessionID(c)
	st, err := h.svc.DiagnosisSession(c.Request.Context(), id, h.now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	body := h.historyBody(st)

	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.svc.Entries(c.Request.Context(), id, limit)
	if err != nil {
		log.Printf("diagnosis log error: %v", err)
	} else if entries != nil {
		body["log"] = entries
	}
	c.JSON(http.StatusOK, body)
}

func (h *handlers) downloadReport(c *gin.Context) {
	file := c.Param("file")
	path, err := h.svc.ReportPath(c.Request.Context(), sessionID(c), file, h.now())
	switch {
	case errors.Is(err, report.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report name"})
		return
	case errors.Is(err, analyze.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.FileAttachment(path, file)
}

// catalog lists the prompts, critical keywords and emergency directory in use.
func (h *handlers) catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"prompts":              prompt.All(),
		"critical_keywords":    h.svc.Keywords(),
		"hospitals":            triage.Hospitals(),
		"idle_timeout_seconds": h.idleSeconds(),
	})
}

func (h *handlers) historyBody(st *session.State) gin.H {
	history := st.History
	if history == nil {
		history = []session.Interaction{}
	}
	return gin.H{
		"session_id":           st.ID,
		"history":              history,
		"last":                 st.Last,
		"last_activity":        st.LastActivity,
		"idle_timeout_seconds": h.idleSeconds(),
	}
}

// readUpload returns nil without error when the request carries no file.
func readUpload(c *gin.Context, field string) (*analyze.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &analyze.Upload{
		Filename: fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func formPatient(c *gin.Context) patient.Patient {
	p := patient.Patient{
		Name:     c.PostForm("name"),
		Gender:   c.PostForm("gender"),
		Symptoms: c.PostForm("symptoms"),
		History:  c.PostForm("history"),
		Age:      patient.DefaultAge,
	}
	if raw := strings.TrimSpace(c.PostForm("age")); raw != "" {
		// Unparseable input becomes 0 and fails the age range check.
		p.Age, _ = strconv.Atoi(raw)
	}
	return p
}

// pageError maps a flow error to the status and message shown on an HTML page.
func pageError(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, analyze.ErrNoFile):
		return http.StatusBadRequest, "Please upload a medical image."
	case errors.Is(err, analyze.ErrInvalidPatient):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, analyze.ErrUpstream):
		log.Printf("model error: %v", err)
		return http.StatusBadGateway, "The diagnosis service is unavailable right now. Please try again."
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "The uploaded file is too large."
	default:
		log.Printf("request error: %v", err)
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

func reportURL(file string) string {
	if file == "" {
		return ""
	}
	return "/reports/" + url.PathEscape(file)
}
