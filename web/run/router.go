package webapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (webapp *WebApp) GetRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/api/report", webapp.report())
	r.Get("/api/groups", webapp.groups())
	r.Get("/api/groups/{key}", webapp.groupMembers())
	r.Get("/api/stats", webapp.stats())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return r
}
