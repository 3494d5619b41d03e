package http

import (
	"encoding/base64"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"qcm-service/internal/domain"
)

const quizTitle = "🧠 QCM Algorithme — IF / ELSE"

type quizView struct {
	Title       string
	Error       string
	NoQuestions bool
	Questions   []questionView
	FirstName   string
	LastName    string
	Errors      map[string]string
}

type questionView struct {
	Index   int
	Text    string
	Options []optionView
}

type optionView struct {
	Index   int
	Text    string
	Checked bool
}

type resultView struct {
	Title      string
	Record     domain.ResultRecord
	Saved      bool
	SaveError  string
	ExportURL  template.URL
	ExportName string
}

// ShowQuiz renders one question per item, or the empty state.
func (h *Handler) ShowQuiz(w http.ResponseWriter, r *http.Request) {
	set, err := h.quiz.QuestionSet(r.Context())
	if err != nil {
		log.Printf("load questions failed: %v", err)
		h.render(w, http.StatusServiceUnavailable, "quiz.html", quizView{
			Title: quizTitle,
			Error: "Erreur lors du chargement des questions : " + err.Error(),
		})
		return
	}
	h.render(w, http.StatusOK, "quiz.html", buildQuizView(set, nil, "", ""))
}

// SubmitQuiz scores the form. Validation failures re-render the form with
// the submitted values kept.
func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	set, err := h.quiz.QuestionSet(r.Context())
	if err != nil {
		log.Printf("load questions failed: %v", err)
		h.render(w, http.StatusServiceUnavailable, "quiz.html", quizView{
			Title: quizTitle,
			Error: "Erreur lors du chargement des questions : " + err.Error(),
		})
		return
	}

	sub := domain.Submission{
		FirstName: r.PostForm.Get("first_name"),
		LastName:  r.PostForm.Get("last_name"),
		Selected:  parseSelections(r, set.Questions),
	}

	outcome, err := h.quiz.Submit(r.Context(), sub)
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNoQuestions):
		h.render(w, http.StatusConflict, "quiz.html", quizView{Title: quizTitle, NoQuestions: true})
		return
	case errors.As(err, &verr):
		view := buildQuizView(set, sub.Selected, sub.FirstName, sub.LastName)
		view.Errors = map[string]string{verr.Field: identityMessage(verr.Field)}
		view.Error = "Veuillez remplir votre nom et prénom."
		h.render(w, http.StatusUnprocessableEntity, "quiz.html", view)
		return
	case err != nil:
		log.Printf("submit failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	view := resultView{
		Title:      quizTitle,
		Record:     outcome.Record,
		Saved:      outcome.Saved,
		ExportURL:  template.URL("data:text/csv;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(outcome.Export)),
		ExportName: outcome.ExportName,
	}
	if outcome.SaveErr != nil {
		view.SaveError = outcome.SaveErr.Error()
	}
	h.render(w, http.StatusOK, "result.html", view)
}

// parseSelections maps each q<i> field to an option index. Anything that is
// not a valid index of that question becomes domain.Unanswered.
func parseSelections(r *http.Request, questions []domain.Question) []int {
	selected := make([]int, len(questions))
	for i, q := range questions {
		selected[i] = domain.Unanswered
		raw := strings.TrimSpace(r.PostForm.Get("q" + strconv.Itoa(i)))
		if raw == "" {
			continue
		}
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 0 || idx >= len(q.Options) {
			continue
		}
		selected[i] = idx
	}
	return selected
}

func buildQuizView(set domain.QuestionSet, selected []int, firstName, lastName string) quizView {
	view := quizView{
		Title:       quizTitle,
		NoQuestions: set.Empty(),
		FirstName:   firstName,
		LastName:    lastName,
	}
	for i, q := range set.Questions {
		qv := questionView{Index: i, Text: q.Text}
		for j, opt := range q.Options {
			checked := i < len(selected) && selected[i] == j
			qv.Options = append(qv.Options, optionView{Index: j, Text: opt, Checked: checked})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

func identityMessage(field string) string {
	switch field {
	case "first_name":
		return "Le prénom est obligatoire."
	case "last_name":
		return "Le nom est obligatoire."
	}
	return "Champ obligatoire."
}
