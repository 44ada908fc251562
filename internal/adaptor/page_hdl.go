package adaptor

import (
	"html/template"
	"net/http"

	"bizdesk/pkg/utils"

	"go.uber.org/zap"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} | bizdesk</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .User}}<p>Signed in as {{.User.Email}} ({{.User.Role}})</p>{{end}}
{{if .Message}}<p>{{.Message}}</p>{{end}}
{{if .Redirect}}<p data-redirect="{{.Redirect}}"></p>{{end}}
</body>
</html>
`))

type pageData struct {
	Title    string
	Message  string
	Redirect string
	User     any
}

// PageHandler serves the placeholder pages that sit behind PageGate.
type PageHandler struct {
	log *zap.Logger
}

func NewPageHandler(log *zap.Logger) *PageHandler {
	return &PageHandler{log: log.With(zap.String("handler", "page"))}
}

func (h *PageHandler) UserLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageData{
		Title:    "Sign in",
		Redirect: r.URL.Query().Get("redirect"),
	})
}

func (h *PageHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Admin sign in"}
	if user, ok := utils.GetUserFromContext(r.Context()); ok {
		data.User = user
	}
	h.render(w, r, http.StatusOK, data)
}

func (h *PageHandler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, pageData{
		Title:   "Access denied",
		Message: "administrators only",
	})
}

func (h *PageHandler) UserDashboard(w http.ResponseWriter, r *http.Request) {
	h.dashboard(w, r, "Dashboard")
}

func (h *PageHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	h.dashboard(w, r, "Admin dashboard")
}

func (h *PageHandler) TechnicianDashboard(w http.ResponseWriter, r *http.Request) {
	h.dashboard(w, r, "Technician dashboard")
}

func (h *PageHandler) dashboard(w http.ResponseWriter, r *http.Request, title string) {
	data := pageData{Title: title}
	if user, ok := utils.GetUserFromContext(r.Context()); ok {
		data.User = user
	}
	h.render(w, r, http.StatusOK, data)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.log.Error("Failed to render page", zap.String("path", r.URL.Path), zap.Error(err))
	}
}
