package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/choreboard/choreboard/internal/models"
	"github.com/choreboard/choreboard/internal/services"
	"github.com/choreboard/choreboard/internal/utils"
)

// WalletHandler handles wallet and transfer requests
type WalletHandler struct {
	walletService services.WalletService
	transferRate  float64
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletService services.WalletService, transferRate float64) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		transferRate:  transferRate,
	}
}

func (h *WalletHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/wallet", h.GetWallet).Methods("GET")
	router.HandleFunc("/wallet/transfer", h.Transfer).Methods("POST")
	router.HandleFunc("/wallet/transactions", h.ListTransactions).Methods("GET")
}

// GetWallet returns the caller's wallet
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	wallet, err := h.walletService.GetWallet(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, wallet)
}

// Transfer sends coins to another family member at the configured rate
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.walletService.Transfer(userID, req.ToUserID, req.Amount, h.transferRate)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// ListTransactions returns the caller's ledger entries
func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	transactions, err := h.walletService.ListTransactions(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, transactions)
}
