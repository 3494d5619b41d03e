package http

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"qcm-service/internal/app"
	"qcm-service/internal/domain"
	"qcm-service/internal/export"
)

const adminTitle = "🔐 Tableau de bord Admin"

type loginView struct {
	Title string
	Error string
}

type adminView struct {
	Title         string
	Tab           string
	Error         string
	Flash         string
	Report        app.Report
	Search        string
	Matches       []domain.QuestionRow
	New           domain.NewQuestion
	AnswerChoices []int
}

func newAdminView(tab string) adminView {
	return adminView{Title: adminTitle, Tab: tab, AnswerChoices: []int{0, 1, 2, 3}}
}

// ShowAdmin renders the login prompt or, once unlocked, the results tab.
func (h *Handler) ShowAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), sessionID(r)); err != nil {
		h.renderLogin(w, http.StatusOK, "")
		return
	}
	h.ShowResults(w, r)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	session, err := h.gate.Login(r.Context(), sessionID(r), r.PostForm.Get("password"))
	switch {
	case errors.Is(err, domain.ErrInvalidPassword):
		h.renderLogin(w, http.StatusUnauthorized, "Mot de passe incorrect.")
		return
	case errors.Is(err, domain.ErrAdminSecretMissing):
		log.Printf("admin login refused: %v", err)
		h.renderLogin(w, http.StatusServiceUnavailable, "Accès admin non configuré.")
		return
	case err != nil:
		log.Printf("admin login failed: %v", err)
		h.renderLogin(w, http.StatusInternalServerError, "Erreur de session : "+err.Error())
		return
	}
	h.setSession(w, session.ID)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Logout(r.Context(), sessionID(r)); err != nil {
		log.Printf("admin logout failed: %v", err)
	}
	h.clearSession(w)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) ShowResults(w http.ResponseWriter, r *http.Request) {
	report, err := h.admin.Results(r.Context(), sessionID(r))
	if h.adminError(w, r, err) {
		return
	}
	view := newAdminView("results")
	view.Report = report
	h.render(w, http.StatusOK, "admin.html", view)
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	report, err := h.admin.Results(r.Context(), sessionID(r))
	if h.adminError(w, r, err) {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, report.Records); err != nil {
		log.Printf("csv export failed: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	download(w, export.ContentTypeCSV, export.FullExportName+".csv", buf.Bytes())
}

func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	report, err := h.admin.Results(r.Context(), sessionID(r))
	if h.adminError(w, r, err) {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, report.Records); err != nil {
		log.Printf("xlsx export failed: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	download(w, export.ContentTypeXLSX, export.FullExportName+".xlsx", buf.Bytes())
}

func (h *Handler) ShowQuestions(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	matches, err := h.admin.SearchQuestions(r.Context(), sessionID(r), term)
	if h.adminError(w, r, err) {
		return
	}
	view := newAdminView("questions")
	view.Search = term
	view.Matches = matches
	h.render(w, http.StatusOK, "admin.html", view)
}

func (h *Handler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	q := domain.NewQuestion{
		Text:          r.PostForm.Get("question"),
		CorrectOption: -1,
	}
	for i := range q.Options {
		q.Options[i] = r.PostForm.Get(fmt.Sprintf("option%d", i+1))
	}
	if raw := strings.TrimSpace(r.PostForm.Get("correct_option")); raw != "" {
		if idx, err := strconv.Atoi(raw); err == nil {
			q.CorrectOption = idx
		}
	}

	err := h.admin.AddQuestion(r.Context(), sessionID(r), q)
	view := newAdminView("questions")
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		view.New = q
		view.Error = "Veuillez remplir tous les champs."
		h.render(w, http.StatusUnprocessableEntity, "admin.html", view)
		return
	case errors.Is(err, domain.ErrReadOnlySource):
		view.New = q
		view.Error = "La source de questions est en lecture seule."
		h.render(w, http.StatusConflict, "admin.html", view)
		return
	}
	if h.adminError(w, r, err) {
		return
	}
	view.Flash = "Question ajoutée avec succès."
	h.render(w, http.StatusOK, "admin.html", view)
}

// adminError handles err and reports whether the response was written.
// A locked session is sent back to the login prompt.
func (h *Handler) adminError(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrLocked):
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	default:
		log.Printf("admin action failed: %v", err)
		view := newAdminView("")
		view.Error = "Erreur : " + err.Error()
		h.render(w, http.StatusBadGateway, "admin.html", view)
	}
	return true
}

func (h *Handler) renderLogin(w http.ResponseWriter, status int, msg string) {
	h.render(w, status, "admin_login.html", loginView{Title: adminTitle, Error: msg})
}

func download(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}
