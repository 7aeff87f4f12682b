package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/choreboard/choreboard/internal/models"
	"github.com/choreboard/choreboard/internal/services"
	"github.com/choreboard/choreboard/internal/utils"
)

// ChoreHandler handles chore definitions, completions and confirmations
type ChoreHandler struct {
	choreService      services.ChoreService
	completionService services.CompletionService
}

// NewChoreHandler creates a new chore handler
func NewChoreHandler(choreService services.ChoreService, completionService services.CompletionService) *ChoreHandler {
	return &ChoreHandler{
		choreService:      choreService,
		completionService: completionService,
	}
}

func (h *ChoreHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/family/chores", h.CreateChore).Methods("POST")
	router.HandleFunc("/family/chores", h.ListChores).Methods("GET")
	router.HandleFunc("/family/chores/{id:[0-9]+}", h.UpdateChore).Methods("PATCH")
	router.HandleFunc("/family/chores/{id:[0-9]+}", h.DeactivateChore).Methods("DELETE")
	router.HandleFunc("/family/chores/{id:[0-9]+}/completions", h.CompleteChore).Methods("POST")
	router.HandleFunc("/family/chores/completions", h.ListCompletions).Methods("GET")
	router.HandleFunc("/confirmations", h.ListPendingConfirmations).Methods("GET")
	router.HandleFunc("/confirmations/{id:[0-9]+}", h.SetConfirmationStatus).Methods("PATCH")
}

// CreateChore adds a chore to the caller's family
func (h *ChoreHandler) CreateChore(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.ChoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	chore, err := h.choreService.CreateChore(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, chore)
}

// ListChores returns the caller's family's active chores
func (h *ChoreHandler) ListChores(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chores, err := h.choreService.ListChores(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, chores)
}

// UpdateChore edits a chore definition
func (h *ChoreHandler) UpdateChore(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	choreID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.ChoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	chore, err := h.choreService.UpdateChore(userID, choreID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, chore)
}

// DeactivateChore soft-deletes a chore
func (h *ChoreHandler) DeactivateChore(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	choreID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.choreService.DeactivateChore(userID, choreID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompleteChore records that the caller performed a chore
func (h *ChoreHandler) CompleteChore(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	choreID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.CompleteChoreRequest
	if r.Body != nil {
		// message is optional
		json.NewDecoder(r.Body).Decode(&req)
	}

	if _, err := h.completionService.CreateCompletion(userID, choreID, req.Message); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCompletions returns the family's completion history, paged
func (h *ChoreHandler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	page, err := h.completionService.ListCompletions(userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// ListPendingConfirmations returns confirmations awaiting the caller
func (h *ChoreHandler) ListPendingConfirmations(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	confirmations, err := h.completionService.ListPendingConfirmations(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, confirmations)
}

// SetConfirmationStatus records the caller's verdict on a completion
func (h *ChoreHandler) SetConfirmationStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	confirmationID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.SetConfirmationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	confirmation, err := h.completionService.SetConfirmationStatus(userID, confirmationID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, confirmation)
}

// pathID parses the {id} path variable, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}
