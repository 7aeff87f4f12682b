package models

import (
	"time"
)

// Wallet holds a member's coin balance. One per user, created on joining a
// family and deleted on leaving; balance never goes below zero.
type Wallet struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	UserID  uint    `gorm:"column:user_id;uniqueIndex" json:"userId"`
	Balance float64 `json:"balance" gorm:"default:0"`
}

// PeerTransaction is an immutable ledger row for a transfer or purchase
// between two members. Rows are only ever inserted.
type PeerTransaction struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FromUserID uint      `json:"fromUserId" gorm:"column:from_user_id;index"`
	ToUserID   uint      `json:"toUserId" gorm:"column:to_user_id;index"`
	Coins      float64   `json:"coins"`
	Rate       float64   `json:"rate"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"createdAt" gorm:"column:created_at"`
}

// RewardTransaction is an immutable ledger row for a chore reward payout.
// Exactly one exists per approved completion.
type RewardTransaction struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `json:"userId" gorm:"column:user_id;index"`
	ChoreCompletionID uint      `json:"choreCompletionId" gorm:"column:chore_completion_id;uniqueIndex"`
	Coins             float64   `json:"coins"`
	CreatedAt         time.Time `json:"createdAt" gorm:"column:created_at"`
}

type TransferRequest struct {
	ToUserID uint    `json:"to_user_id"`
	Amount   float64 `json:"amount"`
}

// Transaction directions from the viewer's perspective.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// TransactionView is a ledger row annotated with the direction relative to
// the user who requested the listing.
type TransactionView struct {
	PeerTransaction
	Direction string `json:"direction"`
}
