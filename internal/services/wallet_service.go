package services

import (
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/apperrors"
	"github.com/choreboard/choreboard/internal/models"
)

// WalletService defines the interface for coin economy operations
type WalletService interface {
	GetWallet(userID uint) (models.Wallet, error)
	Transfer(fromUserID, toUserID uint, amount, rate float64) (models.PeerTransaction, error)
	ListTransactions(userID uint) ([]models.TransactionView, error)
}

// walletService implements the WalletService interface
type walletService struct {
	db *gorm.DB
}

// NewWalletService creates a new wallet service
func NewWalletService(db *gorm.DB) WalletService {
	return &walletService{
		db: db,
	}
}

// GetWallet returns the user's wallet
func (s *walletService) GetWallet(userID uint) (models.Wallet, error) {
	var wallet models.Wallet
	result := s.db.Where("user_id = ?", userID).First(&wallet)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return models.Wallet{}, apperrors.NotFound("wallet not found")
	}
	return wallet, result.Error
}

// Transfer moves coins between two members of the same family. The receiver
// is credited amount*rate rounded to 2 decimals; the full transfer is one
// database transaction with an immutable ledger row.
func (s *walletService) Transfer(fromUserID, toUserID uint, amount, rate float64) (models.PeerTransaction, error) {
	var entry models.PeerTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = transferCoins(tx, fromUserID, toUserID, amount, rate, "transfer")
		return txErr
	})
	if err != nil {
		return models.PeerTransaction{}, err
	}
	return entry, nil
}

// ListTransactions returns the user's ledger entries, newest first, tagged
// with the direction relative to the user.
func (s *walletService) ListTransactions(userID uint) ([]models.TransactionView, error) {
	var entries []models.PeerTransaction
	result := s.db.
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	views := make([]models.TransactionView, 0, len(entries))
	for _, entry := range entries {
		direction := models.DirectionIncoming
		if entry.FromUserID == userID {
			direction = models.DirectionOutgoing
		}
		views = append(views, models.TransactionView{PeerTransaction: entry, Direction: direction})
	}
	return views, nil
}

// round2 rounds a coin amount to 2 decimal places.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// createWallet gives the user a fresh zero-balance wallet. Any previous
// wallet is deleted first: wallets are scoped to one family membership.
func createWallet(tx *gorm.DB, userID uint) error {
	if err := deleteWallet(tx, userID); err != nil {
		return err
	}
	return tx.Create(&models.Wallet{UserID: userID}).Error
}

func deleteWallet(tx *gorm.DB, userID uint) error {
	return tx.Where("user_id = ?", userID).Delete(&models.Wallet{}).Error
}

// creditWallet unconditionally adds coins to a wallet.
func creditWallet(tx *gorm.DB, userID uint, amount float64) error {
	if amount <= 0 {
		return apperrors.Validation("credit amount must be positive")
	}
	result := tx.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("wallet not found")
	}
	return nil
}

// debitWalletIfSufficient debits in a single conditional UPDATE. The balance
// guard lives in the WHERE clause, so two concurrent debits can never take
// the balance below zero.
func debitWalletIfSufficient(tx *gorm.DB, userID uint, amount float64) error {
	if amount <= 0 {
		return apperrors.Validation("debit amount must be positive")
	}
	result := tx.Model(&models.Wallet{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.InsufficientFunds("not enough coins")
	}
	return nil
}

// transferCoins performs the debit, the credit and the ledger insert inside
// the caller's transaction. Both parties must be members of the same family.
func transferCoins(tx *gorm.DB, fromUserID, toUserID uint, amount, rate float64, detail string) (models.PeerTransaction, error) {
	if amount <= 0 {
		return models.PeerTransaction{}, apperrors.Validation("transfer amount must be positive")
	}
	credited := round2(amount * rate)
	if credited <= 0 {
		return models.PeerTransaction{}, apperrors.Validation("transfer amount is too small to credit the recipient")
	}
	if fromUserID == toUserID {
		return models.PeerTransaction{}, apperrors.Validation("cannot transfer coins to yourself")
	}

	var from, to models.User
	if err := tx.First(&from, fromUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PeerTransaction{}, apperrors.NotFound("user not found")
		}
		return models.PeerTransaction{}, err
	}
	if err := tx.First(&to, toUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PeerTransaction{}, apperrors.NotFound("recipient not found")
		}
		return models.PeerTransaction{}, err
	}
	if from.FamilyID == nil || to.FamilyID == nil || *from.FamilyID != *to.FamilyID {
		return models.PeerTransaction{}, apperrors.Validation("recipient is not in your family")
	}

	if err := debitWalletIfSufficient(tx, fromUserID, amount); err != nil {
		return models.PeerTransaction{}, err
	}
	if err := creditWallet(tx, toUserID, credited); err != nil {
		return models.PeerTransaction{}, err
	}

	entry := models.PeerTransaction{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Coins:      amount,
		Rate:       rate,
		Detail:     detail,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return models.PeerTransaction{}, err
	}
	return entry, nil
}
