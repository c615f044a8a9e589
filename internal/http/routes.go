package httpapp

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bookwish/internal/app"
	"bookwish/internal/auth"
	"bookwish/internal/constants"
	"bookwish/internal/domain"
)

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/init", h.InitPage)
	r.Post("/init", h.Init)

	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Authenticate)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/search", http.StatusSeeOther)
		})
		r.Get("/search", h.Search)
		r.Post("/search/request/{asin}", h.SubmitRequest)
		r.Get("/search/manual", h.ManualForm)
		r.Post("/search/manual", h.SubmitManual)
		r.Get("/wishlist", h.Wishlist)
		r.Get("/downloaded", h.Downloaded)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireGroup(domain.GroupAdmin))

			r.Delete("/search/request/{asin}", h.DeleteRequest)
			r.Get("/settings/notifications", h.ListNotifications)
			r.Post("/settings/notifications", h.CreateNotification)
			r.Delete("/settings/notifications/{id}", h.DeleteNotification)
			r.Post("/settings/download", h.SetAutoDownload)
		})
	})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	q := r.URL.Query().Get("q")

	numResults := constants.DefaultNumResults
	if v := r.URL.Query().Get("num_results"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			numResults = min(n, constants.MaxNumResults)
		}
	}
	page := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page = n
		}
	}
	region := r.URL.Query().Get("region")
	if region == "" {
		region = h.DefaultRegion
	}

	result, err := h.Requests.Search(r.Context(), user, q, page, numResults, region)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.render(w, searchTmpl, result)
}

func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	asin := chi.URLParam(r, "asin")

	if err := h.Requests.Submit(r.Context(), user, asin); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set(constants.RefreshHeader, "true")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	asin := chi.URLParam(r, "asin")
	downloaded, _ := strconv.ParseBool(r.URL.Query().Get("downloaded"))

	books, err := h.Requests.Delete(r.Context(), user, asin, downloaded)
	if err != nil {
		h.writeError(w, err)
		return
	}

	page := "wishlist"
	if downloaded {
		page = "downloaded"
	}
	h.render(w, wishlistTmpl, map[string]interface{}{
		"Page":  page,
		"Books": books,
	})
}

func (h *Handler) ManualForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, manualFormTmpl, map[string]interface{}{})
}

func (h *Handler) SubmitManual(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var fields app.ManualFields
	if err := h.decoder.Decode(&fields, r.PostForm); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if fields.Title == "" || fields.Author == "" {
		http.Error(w, "title and author are required", http.StatusBadRequest)
		return
	}

	if _, err := h.Requests.SubmitManual(r.Context(), user, fields); err != nil {
		h.writeError(w, err)
		return
	}

	h.render(w, manualFormTmpl, map[string]interface{}{
		"Success": "Successfully added request",
	})
}

func (h *Handler) Wishlist(w http.ResponseWriter, r *http.Request) {
	books, err := h.DB.ListRequests(r.Context(), false)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.render(w, wishlistTmpl, map[string]interface{}{"Page": "wishlist", "Books": books})
}

func (h *Handler) Downloaded(w http.ResponseWriter, r *http.Request) {
	books, err := h.DB.ListRequests(r.Context(), true)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.render(w, wishlistTmpl, map[string]interface{}{"Page": "downloaded", "Books": books})
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, loginTmpl, map[string]interface{}{
		"Error": r.URL.Query().Get("error"),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, expires, err := h.Auth.Login(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		http.Redirect(w, r, "/login?error="+url.QueryEscape("Invalid credentials"), http.StatusSeeOther)
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	http.SetCookie(w, auth.SessionCookie(token, expires))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) InitPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, initTmpl, nil)
}

// Init creates the first account. It only works while no user exists; the
// account it creates is an admin.
func (h *Handler) Init(w http.ResponseWriter, r *http.Request) {
	exists, err := h.Auth.UserExists(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if exists {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	if _, err := h.Auth.CreateUser(r.Context(), username, password, domain.GroupAdmin); err != nil {
		h.writeError(w, err)
		return
	}

	token, expires, err := h.Auth.Login(r.Context(), username, password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	http.SetCookie(w, auth.SessionCookie(token, expires))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
