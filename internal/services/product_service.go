package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/apperrors"
	"github.com/choreboard/choreboard/internal/models"
	"github.com/choreboard/choreboard/internal/notify"
)

// ProductService defines the interface for marketplace operations
type ProductService interface {
	CreateProduct(userID uint, req models.ProductRequest) (models.Product, error)
	ListProducts(userID uint) ([]models.Product, error)
	BuyProduct(userID, productID uint) error
}

// productService implements the ProductService interface
type productService struct {
	db           *gorm.DB
	purchaseRate float64
	hub          *notify.Hub
}

// NewProductService creates a new product service
func NewProductService(db *gorm.DB, purchaseRate float64, hub *notify.Hub) ProductService {
	return &productService{
		db:           db,
		purchaseRate: purchaseRate,
		hub:          hub,
	}
}

// CreateProduct lists a product for sale inside the user's family
func (s *productService) CreateProduct(userID uint, req models.ProductRequest) (models.Product, error) {
	if req.Name == "" {
		return models.Product{}, apperrors.Validation("product name is required")
	}
	if req.Price <= 0 {
		return models.Product{}, apperrors.Validation("product price must be positive")
	}

	familyID, err := familyIDOf(s.db, userID)
	if err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		FamilyID:    familyID,
		SellerID:    userID,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Price:       req.Price,
		IsActive:    true,
	}
	result := s.db.Create(&product)
	return product, result.Error
}

// ListProducts returns the active listings of the user's family
func (s *productService) ListProducts(userID uint) ([]models.Product, error) {
	familyID, err := familyIDOf(s.db, userID)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	result := s.db.
		Where("family_id = ? AND is_active = ?", familyID, true).
		Order("created_at DESC").
		Find(&products)
	return products, result.Error
}

// BuyProduct purchases a listing: the buyer pays the full price, the seller
// receives price*purchaseRate, and the product is deactivated. The
// conditional deactivation makes a listing sellable at most once.
func (s *productService) BuyProduct(userID, productID uint) error {
	var product models.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		familyID, err := familyIDOf(tx, userID)
		if err != nil {
			return err
		}

		if err := tx.Where("id = ? AND family_id = ?", productID, familyID).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product not found")
			}
			return err
		}
		if product.SellerID == userID {
			return apperrors.Validation("cannot buy your own product")
		}

		result := tx.Model(&models.Product{}).
			Where("id = ? AND is_active = ?", productID, true).
			Update("is_active", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("product not found")
		}

		_, err = transferCoins(tx, userID, product.SellerID, product.Price, s.purchaseRate, "purchase: "+product.Name)
		return err
	})
	if err != nil {
		return err
	}

	s.hub.Publish(notify.Event{
		Type:     notify.EventProductSold,
		FamilyID: product.FamilyID,
		Payload:  product,
	})
	return nil
}
