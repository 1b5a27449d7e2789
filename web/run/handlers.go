package webapp

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/LachsProducktions/mediascan/app"
	"github.com/LachsProducktions/mediascan/models"

	"github.com/go-chi/chi/v5"
)

func (webapp *WebApp) report() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := webapp.Store.LoadLatestReport(r.Context())
		if err != nil {
			if errors.Is(err, app.ErrNoSnapshot) {
				writeError(w, http.StatusNotFound, "no scan snapshot available")
				return
			}
			log.Printf("Unable to load report: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to load report")
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func (webapp *WebApp) groups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		groups, err := webapp.Store.Groups(r.Context(), limit)
		if err != nil {
			log.Printf("Unable to list groups: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list groups")
			return
		}
		if groups == nil {
			groups = []app.GroupSummary{}
		}
		writeJSON(w, http.StatusOK, groups)
	}
}

func (webapp *WebApp) groupMembers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		members, err := webapp.Store.GroupMembers(r.Context(), key)
		if err != nil {
			log.Printf("Unable to load group %s: %v", key, err)
			writeError(w, http.StatusInternalServerError, "failed to load group")
			return
		}
		if len(members) == 0 {
			writeError(w, http.StatusNotFound, "unknown group")
			return
		}
		writeJSON(w, http.StatusOK, members)
	}
}

type statsResponse struct {
	GeneratedAt     string             `json:"generated_at"`
	TotalFiles      int64              `json:"total_files"`
	TotalBytes      int64              `json:"total_bytes"`
	GroupCount      int                `json:"group_count"`
	CrossRootGroups int                `json:"cross_root_groups"`
	WastedBytes     int64              `json:"wasted_bytes"`
	WastedDisplay   string             `json:"wasted_display"`
	Kinds           []models.KindStats `json:"kinds"`
	RootStats       []models.RootStats `json:"root_stats"`
	IssueCount      int                `json:"issue_count"`
}

func (webapp *WebApp) stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := webapp.Store.LoadLatestReport(r.Context())
		if err != nil {
			if errors.Is(err, app.ErrNoSnapshot) {
				writeError(w, http.StatusNotFound, "no scan snapshot available")
				return
			}
			log.Printf("Unable to load report: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to load report")
			return
		}

		writeJSON(w, http.StatusOK, statsResponse{
			GeneratedAt:     rep.GeneratedAt.Format("2006-01-02 15:04:05"),
			TotalFiles:      rep.TotalFiles,
			TotalBytes:      rep.TotalBytes,
			GroupCount:      rep.GroupCount,
			CrossRootGroups: rep.CrossRootGroups,
			WastedBytes:     rep.WastedBytes,
			WastedDisplay:   models.HumanBytes(rep.WastedBytes),
			Kinds:           rep.Kinds,
			RootStats:       rep.RootStats,
			IssueCount:      len(rep.Issues),
		})
	}
}
