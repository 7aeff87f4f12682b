package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/choreboard/choreboard/internal/apperrors"
	"github.com/choreboard/choreboard/internal/models"
	"github.com/choreboard/choreboard/internal/notify"
)

// CompletionService is the chore approval workflow engine. A completion is
// created in "awaits", collects one confirmation per family member whose
// permissions require it, and transitions exactly once to "approved" (all
// confirmers approved, reward paid) or "canceled" (any confirmer vetoed).
type CompletionService interface {
	CreateCompletion(userID, choreID uint, message string) (models.ChoreCompletion, error)
	ListCompletions(userID uint, limit, offset int) (models.CompletionPage, error)
	SetConfirmationStatus(userID, confirmationID uint, status string) (models.ChoreConfirmation, error)
	ListPendingConfirmations(userID uint) ([]models.ChoreConfirmation, error)
}

// completionService implements the CompletionService interface
type completionService struct {
	db  *gorm.DB
	hub *notify.Hub
}

// NewCompletionService creates a new completion service
func NewCompletionService(db *gorm.DB, hub *notify.Hub) CompletionService {
	return &completionService{
		db:  db,
		hub: hub,
	}
}

// CreateCompletion records that the user performed the chore. One
// confirmation row is created per required confirmer; with no required
// confirmers the completion is approved and rewarded immediately.
func (s *completionService) CreateCompletion(userID, choreID uint, message string) (models.ChoreCompletion, error) {
	var completion models.ChoreCompletion
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user not found")
			}
			return err
		}
		if user.FamilyID == nil {
			return apperrors.NotFound("user has no family")
		}

		var chore models.Chore
		err := tx.Where("id = ? AND family_id = ? AND is_active = ?", choreID, *user.FamilyID, true).
			First(&chore).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("chore not found")
			}
			return err
		}

		completion = models.ChoreCompletion{
			ChoreID:       chore.ID,
			FamilyID:      chore.FamilyID,
			CompletedByID: userID,
			Message:       message,
			Status:        models.StatusAwaits,
		}
		if err := tx.Create(&completion).Error; err != nil {
			return err
		}

		confirmerIDs, err := requiredConfirmerIDs(tx, chore.FamilyID, userID)
		if err != nil {
			return err
		}

		if len(confirmerIDs) == 0 {
			return s.approve(tx, &completion)
		}

		for _, confirmerID := range confirmerIDs {
			confirmation := models.ChoreConfirmation{
				ChoreCompletionID: completion.ID,
				UserID:            confirmerID,
				Status:            models.StatusAwaits,
			}
			if err := tx.Create(&confirmation).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.ChoreCompletion{}, err
	}

	s.publishCompletionEvent(completion)
	return completion, nil
}

// ListCompletions returns the user's family completion history, newest first.
func (s *completionService) ListCompletions(userID uint, limit, offset int) (models.CompletionPage, error) {
	familyID, err := familyIDOf(s.db, userID)
	if err != nil {
		return models.CompletionPage{}, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.Model(&models.ChoreCompletion{}).
		Where("family_id = ?", familyID).
		Count(&total).Error; err != nil {
		return models.CompletionPage{}, err
	}

	var items []models.ChoreCompletion
	err = s.db.Preload("Chore").
		Where("family_id = ?", familyID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return models.CompletionPage{}, err
	}

	return models.CompletionPage{Items: items, Total: total}, nil
}

// SetConfirmationStatus records one confirmer's verdict. Setting a
// confirmation back to "awaits" is rejected; a finalized confirmation or
// completion cannot be changed. A single "canceled" vetoes the completion,
// and the last "approved" triggers the reward payout.
func (s *completionService) SetConfirmationStatus(userID, confirmationID uint, status string) (models.ChoreConfirmation, error) {
	if status != models.StatusApproved && status != models.StatusCanceled {
		return models.ChoreConfirmation{}, apperrors.Validation("status must be approved or canceled")
	}

	var confirmation models.ChoreConfirmation
	var completion models.ChoreCompletion
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&confirmation, confirmationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("confirmation not found")
			}
			return err
		}
		if confirmation.UserID != userID {
			return apperrors.Forbidden("confirmation belongs to another user")
		}

		if err := lockCompletion(tx, confirmation.ChoreCompletionID, &completion); err != nil {
			return err
		}
		if completion.Status != models.StatusAwaits {
			return apperrors.Conflict("completion status cannot be changed")
		}

		result := tx.Model(&models.ChoreConfirmation{}).
			Where("id = ? AND status = ?", confirmationID, models.StatusAwaits).
			Update("status", status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.Conflict("confirmation status cannot be changed")
		}
		confirmation.Status = status

		if status == models.StatusCanceled {
			// one veto cancels the completion regardless of other confirmers
			return s.cancel(tx, &completion)
		}

		// recount while holding the completion row lock: only one
		// transaction can be the last approval
		var remaining int64
		if err := tx.Model(&models.ChoreConfirmation{}).
			Where("chore_completion_id = ? AND status = ?", completion.ID, models.StatusAwaits).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			return s.approve(tx, &completion)
		}
		return nil
	})
	if err != nil {
		return models.ChoreConfirmation{}, err
	}

	if completion.Status != models.StatusAwaits {
		s.publishCompletionEvent(completion)
	}
	return confirmation, nil
}

// ListPendingConfirmations returns the confirmations awaiting the user's
// verdict.
func (s *completionService) ListPendingConfirmations(userID uint) ([]models.ChoreConfirmation, error) {
	var confirmations []models.ChoreConfirmation
	err := s.db.Preload("ChoreCompletion").
		Where("user_id = ? AND status = ?", userID, models.StatusAwaits).
		Order("created_at DESC").
		Find(&confirmations).Error
	return confirmations, err
}

// approve flips the completion to approved and pays the reward: wallet
// credit, one RewardTransaction and the experience bumps, all inside the
// caller's transaction. The conditional update guarantees the flip happens
// at most once.
func (s *completionService) approve(tx *gorm.DB, completion *models.ChoreCompletion) error {
	result := tx.Model(&models.ChoreCompletion{}).
		Where("id = ? AND status = ?", completion.ID, models.StatusAwaits).
		Update("status", models.StatusApproved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.Conflict("completion status cannot be changed")
	}
	completion.Status = models.StatusApproved

	var chore models.Chore
	if err := tx.First(&chore, completion.ChoreID).Error; err != nil {
		return err
	}

	if chore.Valuation > 0 {
		if err := creditWallet(tx, completion.CompletedByID, chore.Valuation); err != nil {
			return err
		}
	}

	reward := models.RewardTransaction{
		UserID:            completion.CompletedByID,
		ChoreCompletionID: completion.ID,
		Coins:             chore.Valuation,
	}
	if err := tx.Create(&reward).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.User{}).
		Where("id = ?", completion.CompletedByID).
		Update("experience", gorm.Expr("experience + ?", chore.Valuation)).Error; err != nil {
		return err
	}
	return tx.Model(&models.Family{}).
		Where("id = ?", completion.FamilyID).
		Update("experience", gorm.Expr("experience + ?", chore.Valuation)).Error
}

// cancel flips the completion to canceled. No reward, no ledger entry.
func (s *completionService) cancel(tx *gorm.DB, completion *models.ChoreCompletion) error {
	result := tx.Model(&models.ChoreCompletion{}).
		Where("id = ? AND status = ?", completion.ID, models.StatusAwaits).
		Update("status", models.StatusCanceled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.Conflict("completion status cannot be changed")
	}
	completion.Status = models.StatusCanceled
	return nil
}

func (s *completionService) publishCompletionEvent(completion models.ChoreCompletion) {
	eventType := notify.EventCompletionCreated
	switch completion.Status {
	case models.StatusApproved:
		eventType = notify.EventCompletionApproved
	case models.StatusCanceled:
		eventType = notify.EventCompletionCanceled
	}
	s.hub.Publish(notify.Event{
		Type:     eventType,
		FamilyID: completion.FamilyID,
		Payload:  completion,
	})
}

// lockCompletion loads the completion under a row-level lock. Two concurrent
// confirmers serialize here, so the recount below always sees the other
// verdict once committed. SQLite has no FOR UPDATE and serializes writers
// anyway.
func lockCompletion(tx *gorm.DB, completionID uint, completion *models.ChoreCompletion) error {
	if tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx.First(completion, completionID).Error
}

// requiredConfirmerIDs returns the family members whose permission flag
// requires them to confirm, excluding the completer.
func requiredConfirmerIDs(tx *gorm.DB, familyID, completerID uint) ([]uint, error) {
	var confirmerIDs []uint
	err := tx.Model(&models.UserFamilyPermissions{}).
		Joins("JOIN users ON users.id = user_family_permissions.user_id").
		Where("users.family_id = ? AND user_family_permissions.should_confirm_chore_completion = ? AND users.id <> ?",
			familyID, true, completerID).
		Pluck("user_family_permissions.user_id", &confirmerIDs).Error
	return confirmerIDs, err
}

// familyIDOf resolves the user's family or fails with NotFound.
func familyIDOf(db *gorm.DB, userID uint) (uint, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.NotFound("user not found")
		}
		return 0, err
	}
	if user.FamilyID == nil {
		return 0, apperrors.NotFound("user has no family")
	}
	return *user.FamilyID, nil
}
