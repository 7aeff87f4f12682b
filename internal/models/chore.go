package models

import (
	"time"
)

// Statuses shared by ChoreCompletion and ChoreConfirmation. Both records are
// created as StatusAwaits and may transition exactly once.
const (
	StatusAwaits   = "awaits"
	StatusApproved = "approved"
	StatusCanceled = "canceled"
)

// Chore is a rewardable task definition scoped to a family.
type Chore struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	FamilyID    uint    `json:"familyId" gorm:"column:family_id;index"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Valuation   float64 `json:"valuation"`
	IsActive    bool    `json:"isActive" gorm:"column:is_active;default:true"`
}

// ChoreCompletion records that a member performed a chore. It stays in
// "awaits" until every required confirmer approves, or any one cancels.
type ChoreCompletion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ChoreID       uint      `json:"choreId" gorm:"column:chore_id;index"`
	FamilyID      uint      `json:"familyId" gorm:"column:family_id;index"`
	CompletedByID uint      `json:"completedById" gorm:"column:completed_by_id;index"`
	Message       string    `json:"message"`
	Status        string    `json:"status" gorm:"default:awaits"`
	CreatedAt     time.Time `json:"createdAt" gorm:"column:created_at"`

	Chore *Chore `json:"chore,omitempty" gorm:"foreignKey:ChoreID"`
}

// ChoreConfirmation is one required approver's verdict on a completion.
type ChoreConfirmation struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ChoreCompletionID uint      `json:"choreCompletionId" gorm:"column:chore_completion_id;index"`
	UserID            uint      `json:"userId" gorm:"column:user_id;index"`
	Status            string    `json:"status" gorm:"default:awaits"`
	CreatedAt         time.Time `json:"createdAt" gorm:"column:created_at"`

	ChoreCompletion *ChoreCompletion `json:"choreCompletion,omitempty" gorm:"foreignKey:ChoreCompletionID"`
}

type ChoreRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Valuation   float64 `json:"valuation"`
}

type CompleteChoreRequest struct {
	Message string `json:"message"`
}

type SetConfirmationStatusRequest struct {
	Status string `json:"status"`
}

// CompletionPage is a paged completion listing.
type CompletionPage struct {
	Items []ChoreCompletion `json:"items"`
	Total int64             `json:"total"`
}
