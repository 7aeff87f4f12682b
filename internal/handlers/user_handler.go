package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/choreboard/choreboard/internal/models"
	"github.com/choreboard/choreboard/internal/services"
	"github.com/choreboard/choreboard/internal/utils"
)

// UserHandler handles profile requests
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users/me", h.GetMe).Methods("GET")
	router.HandleFunc("/users/me", h.UpdateMe).Methods("PATCH")
	router.HandleFunc("/users/me/avatar", h.SetAvatar).Methods("PUT")
	router.HandleFunc("/users/{id:[0-9]+}/avatar", h.GetAvatar).Methods("GET")
}

// GetMe returns the caller's profile
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateMe updates the caller's name and surname
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateProfile(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// SetAvatar stores the caller's avatar URL
func (h *UserHandler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.AvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.SetAvatar(r.Context(), userID, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// GetAvatar returns a member's avatar URL through the cache
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	if _, err := utils.GetUserIDFromContext(r.Context()); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	targetID, ok := pathID(w, r)
	if !ok {
		return
	}

	url, err := h.userService.GetAvatarURL(r.Context(), targetID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.AvatarRequest{URL: url})
}
