package httpapp

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-playground/form/v4"

	"bookwish/internal/app"
	"bookwish/internal/auth"
	"bookwish/internal/catalog"
	"bookwish/internal/logger"
	"bookwish/internal/policy"
	"bookwish/internal/store"
)

type Handler struct {
	Requests      *app.RequestService
	Auth          *auth.Service
	Quality       *policy.QualityConfig
	DB            *store.DB
	Logger        *logger.Logger
	DefaultRegion string

	decoder *form.Decoder
}

func NewHandler(requests *app.RequestService, authSvc *auth.Service, quality *policy.QualityConfig, db *store.DB, defaultRegion string, log *logger.Logger) *Handler {
	return &Handler{
		Requests:      requests,
		Auth:          authSvc,
		Quality:       quality,
		DB:            db,
		Logger:        log.WithComponent("http"),
		DefaultRegion: defaultRegion,
		decoder:       form.NewDecoder(),
	}
}

// Minimal fragments; full page chrome is out of scope here.
var (
	searchTmpl = template.Must(template.New("search").Parse(`<section id="search-results" data-query="{{.Query}}" data-region="{{.Region}}" data-auto-download="{{.AutoDownload}}">
{{range .Results}}<article data-asin="{{.ASIN}}"{{if .AlreadyRequested}} class="requested"{{end}}>
  <h3>{{.Title}}</h3>
  <p>{{range $i, $a := .Authors}}{{if $i}}, {{end}}{{$a}}{{end}}</p>
</article>
{{else}}<p>No results</p>
{{end}}</section>
`))

	wishlistTmpl = template.Must(template.New("wishlist").Parse(`<section id="book-wishlist" data-page="{{.Page}}">
{{range .Books}}<article data-asin="{{.ASIN}}" data-user="{{.Username}}"><h3>{{.Title}}</h3></article>
{{else}}<p>No requests</p>
{{end}}</section>
`))

	manualFormTmpl = template.Must(template.New("manual").Parse(`<form id="manual-request" method="post" action="/search/manual">
{{if .Success}}<p class="success">{{.Success}}</p>{{end}}
<input name="title" required><input name="author" required><input name="narrator">
<input name="subtitle"><input name="publish_date"><input name="info">
<button type="submit">Request</button>
</form>
`))

	loginTmpl = template.Must(template.New("login").Parse(`<form id="login" method="post" action="/login">
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<input name="username" required><input name="password" type="password" required>
<button type="submit">Log in</button>
</form>
`))

	initTmpl = template.Must(template.New("init").Parse(`<form id="init" method="post" action="/init">
<p>Create the initial admin account</p>
<input name="username" required><input name="password" type="password" required>
<button type="submit">Create</button>
</form>
`))
)

func (h *Handler) render(w http.ResponseWriter, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.Logger.Error("Template render failed", "template", tmpl.Name(), "error", err)
	}
}

// writeError maps domain errors to their HTTP status.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidRegion):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, catalog.ErrNotFound):
		http.Error(w, "Book not found", http.StatusNotFound)
	case errors.Is(err, catalog.ErrUnavailable):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, app.ErrForbidden):
		http.Error(w, "insufficient permissions", http.StatusForbidden)
	default:
		h.Logger.Error("Request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
