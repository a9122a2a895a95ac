// Package httpapi exposes the note, account and moderation services as a
// JSON API under /api.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/samudhan2008/sa-notes-beta/internal/logging"
	"github.com/samudhan2008/sa-notes-beta/internal/server/services"
)

// Handlers holds the services the API delegates to.
type Handlers struct {
	users     *services.UserService
	notes     *services.NoteService
	admin     *services.AdminService
	logger    logging.Logger
	jwtSecret []byte
}

func NewHandlers(us *services.UserService, ns *services.NoteService, as *services.AdminService, l logging.Logger, secretKey string) *Handlers {
	return &Handlers{
		users:     us,
		notes:     ns,
		admin:     as,
		logger:    l.With("module", "http_api"),
		jwtSecret: []byte(secretKey),
	}
}

// Router builds the chi route tree.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.authenticate)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/refresh", h.refresh)
			r.Post("/logout", h.logout)
			r.Post("/verify", h.verifyEmail)
			r.Post("/password-reset", h.passwordReset)
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(h.requireUser)
			r.Get("/", h.profile)
			r.Patch("/", h.updateProfile)
			r.Post("/password", h.changePassword)
			r.Get("/notes", h.myNotes)
			r.Get("/bookmarks", h.bookmarks)
			r.Put("/bookmarks/{id}", h.addBookmark)
			r.Delete("/bookmarks/{id}", h.removeBookmark)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", h.searchNotes)
			r.Get("/suggest", h.suggest)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getNote)
				r.Get("/preview", h.preview)
				r.Get("/comments", h.comments)
				r.Get("/download", h.download)

				r.Group(func(r chi.Router) {
					r.Use(h.requireUser)
					r.Put("/", h.updateNote)
					r.Delete("/", h.deleteNote)
					r.Post("/uploaded", h.markUploaded)
					r.Post("/rating", h.rate)
					r.Post("/comments", h.addComment)
					r.Post("/reports", h.report)
				})
			})

			r.With(h.requireUser).Post("/", h.createNote)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Get("/users", h.adminUsers)
			r.Put("/users/{id}/status", h.adminSetUserStatus)
			r.Get("/reports", h.adminReports)
			r.Post("/reports/{id}/resolve", h.adminResolveReport)
			r.Post("/reports/{id}/reject", h.adminRejectReport)
			r.Delete("/notes/{id}", h.adminDeleteNote)
			r.Get("/stats", h.adminStats)
		})
	})

	return r
}
