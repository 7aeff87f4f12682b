package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/choreboard/choreboard/internal/models"
	"github.com/choreboard/choreboard/internal/services"
	"github.com/choreboard/choreboard/internal/utils"
)

// ProductHandler handles marketplace requests
type ProductHandler struct {
	productService services.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

func (h *ProductHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/products", h.CreateProduct).Methods("POST")
	router.HandleFunc("/products", h.ListProducts).Methods("GET")
	router.HandleFunc("/products/buy/{id:[0-9]+}", h.BuyProduct).Methods("GET")
}

// CreateProduct lists a product for sale
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.productService.CreateProduct(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

// ListProducts returns the family's active listings
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	products, err := h.productService.ListProducts(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// BuyProduct purchases a listing
func (h *ProductHandler) BuyProduct(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	productID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.productService.BuyProduct(userID, productID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
