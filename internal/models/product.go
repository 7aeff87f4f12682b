package models

import (
	"time"
)

// Product is a marketplace listing sold by one family member to another.
// Purchased products are deactivated, never deleted.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FamilyID    uint      `json:"familyId" gorm:"column:family_id;index"`
	SellerID    uint      `json:"sellerId" gorm:"column:seller_id;index"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Price       float64   `json:"price"`
	IsActive    bool      `json:"isActive" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `json:"createdAt" gorm:"column:created_at"`
}

type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Price       float64 `json:"price"`
}
