package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/choreboard/choreboard/internal/apperrors"
	"github.com/choreboard/choreboard/internal/services"
	"github.com/choreboard/choreboard/internal/stats"
	"github.com/choreboard/choreboard/internal/utils"
)

// StatsHandler serves the read-only statistics gateway
type StatsHandler struct {
	provider    stats.Provider
	userService services.UserService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(provider stats.Provider, userService services.UserService) *StatsHandler {
	return &StatsHandler{
		provider:    provider,
		userService: userService,
	}
}

func (h *StatsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/stats/family/members", h.MemberLeaderboard).Methods("GET")
	router.HandleFunc("/stats/family/chores", h.ChoreLeaderboard).Methods("GET")
	router.HandleFunc("/stats/family/activity", h.DailyActivity).Methods("GET")
	router.HandleFunc("/stats/me", h.MyCompletionCount).Methods("GET")
}

// MemberLeaderboard ranks family members by approved completions
func (h *StatsHandler) MemberLeaderboard(w http.ResponseWriter, r *http.Request) {
	familyID, interval, ok := h.familyQuery(w, r)
	if !ok {
		return
	}

	leaderboard, err := h.provider.MemberLeaderboard(r.Context(), familyID, interval)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, leaderboard)
}

// ChoreLeaderboard ranks the family's chores by approved completions
func (h *StatsHandler) ChoreLeaderboard(w http.ResponseWriter, r *http.Request) {
	familyID, interval, ok := h.familyQuery(w, r)
	if !ok {
		return
	}

	leaderboard, err := h.provider.ChoreLeaderboard(r.Context(), familyID, interval)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, leaderboard)
}

// DailyActivity returns the dense zero-filled daily series for heatmaps
func (h *StatsHandler) DailyActivity(w http.ResponseWriter, r *http.Request) {
	familyID, interval, ok := h.familyQuery(w, r)
	if !ok {
		return
	}

	sparse, err := h.provider.DailyActivity(r.Context(), familyID, interval)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats.DenseDailySeries(sparse, interval))
}

// MyCompletionCount returns the caller's approved completion total in range
func (h *StatsHandler) MyCompletionCount(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	interval, err := parseInterval(r)
	if err != nil {
		writeError(w, err)
		return
	}

	count, err := h.provider.UserCompletionCount(r.Context(), userID, interval)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// familyQuery resolves the caller's family and the requested interval.
func (h *StatsHandler) familyQuery(w http.ResponseWriter, r *http.Request) (uint, stats.Interval, bool) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return 0, stats.Interval{}, false
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		writeError(w, err)
		return 0, stats.Interval{}, false
	}
	if user.FamilyID == nil {
		writeError(w, apperrors.NotFound("user has no family"))
		return 0, stats.Interval{}, false
	}

	interval, err := parseInterval(r)
	if err != nil {
		writeError(w, err)
		return 0, stats.Interval{}, false
	}

	return *user.FamilyID, interval, true
}

// parseInterval reads the optional from/to query params (2006-01-02).
func parseInterval(r *http.Request) (stats.Interval, error) {
	var interval stats.Interval
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return stats.Interval{}, apperrors.Validation("from must be formatted as 2006-01-02")
		}
		interval.From = &parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return stats.Interval{}, apperrors.Validation("to must be formatted as 2006-01-02")
		}
		interval.To = &parsed
	}
	return interval, nil
}
