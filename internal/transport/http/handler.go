package http

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"qcm-service/internal/app"
	"github.com/gorilla/websocket"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "qcm_admin"

// Handler serves the quiz and admin views.
type Handler struct {
	quiz     *app.QuizService
	admin    *app.AdminService
	gate     *app.AdminGate
	feed     *app.ResultFeed
	pages    *template.Template
	upgrader websocket.Upgrader
	// SecureCookies marks the admin session cookie Secure (behind TLS).
	SecureCookies bool
}

func NewHandler(quiz *app.QuizService, admin *app.AdminService, gate *app.AdminGate, feed *app.ResultFeed) *Handler {
	pages := template.Must(template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html"))

	return &Handler{
		quiz:  quiz,
		admin: admin,
		gate:  gate,
		feed:  feed,
		pages: pages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Routes registers every view on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /{$}", h.ShowQuiz)
	mux.HandleFunc("POST /quiz", h.SubmitQuiz)
	mux.HandleFunc("GET /admin", h.ShowAdmin)
	mux.HandleFunc("POST /admin/login", h.Login)
	mux.HandleFunc("POST /admin/logout", h.Logout)
	mux.HandleFunc("GET /admin/results", h.ShowResults)
	mux.HandleFunc("GET /admin/results/export.csv", h.ExportCSV)
	mux.HandleFunc("GET /admin/results/export.xlsx", h.ExportXLSX)
	mux.HandleFunc("GET /admin/questions", h.ShowQuestions)
	mux.HandleFunc("POST /admin/questions", h.AddQuestion)
	mux.HandleFunc("GET /admin/ws", h.ServeFeed)
	return mux
}

// render buffers the page so a template error never leaves a half-written response.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("render %s failed: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) setSession(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/admin",
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
