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

// FamilyHandler handles family membership requests
type FamilyHandler struct {
	familyService services.FamilyService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService services.FamilyService) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
	}
}

func (h *FamilyHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/family", h.CreateFamily).Methods("POST")
	router.HandleFunc("/family", h.GetFamily).Methods("GET")
	router.HandleFunc("/family", h.RenameFamily).Methods("PATCH")
	router.HandleFunc("/family/admin", h.ChangeAdmin).Methods("POST")
	router.HandleFunc("/family/invite", h.CreateInvite).Methods("POST")
	router.HandleFunc("/family/join", h.JoinFamily).Methods("POST")
	router.HandleFunc("/family/members", h.ListMembers).Methods("GET")
	router.HandleFunc("/family/members/me", h.Leave).Methods("DELETE")
	router.HandleFunc("/family/members/{id:[0-9]+}", h.KickMember).Methods("DELETE")
}

// CreateFamily creates a family with the caller as admin
func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	detail, err := h.familyService.CreateFamily(userID, req.Name, req.Icon)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// GetFamily returns the caller's family and its members
func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	detail, err := h.familyService.GetFamilyDetail(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// RenameFamily updates the family name and icon
func (h *FamilyHandler) RenameFamily(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.RenameFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	family, err := h.familyService.RenameFamily(userID, req.Name, req.Icon)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, family)
}

// ChangeAdmin transfers adminship to another member
func (h *FamilyHandler) ChangeAdmin(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.ChangeAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	family, err := h.familyService.ChangeAdmin(userID, req.NewAdminID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, family)
}

// CreateInvite issues a signed invite token
func (h *FamilyHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.familyService.CreateInviteToken(userID, req.Permissions)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.InviteResponse{Token: token})
}

// JoinFamily redeems an invite token
func (h *FamilyHandler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.JoinFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	family, err := h.familyService.JoinFamily(userID, req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, family)
}

// ListMembers returns the members of the caller's family
func (h *FamilyHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	members, err := h.familyService.ListMembers(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, members)
}

// Leave removes the caller from their family
func (h *FamilyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.familyService.Leave(userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// KickMember removes another member from the caller's family
func (h *FamilyHandler) KickMember(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	memberID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if err := h.familyService.KickMember(userID, uint(memberID)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
