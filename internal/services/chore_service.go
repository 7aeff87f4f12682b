package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/apperrors"
	"github.com/choreboard/choreboard/internal/models"
)

// ChoreService defines the interface for chore definition operations
type ChoreService interface {
	CreateChore(userID uint, req models.ChoreRequest) (models.Chore, error)
	ListChores(userID uint) ([]models.Chore, error)
	UpdateChore(userID, choreID uint, req models.ChoreRequest) (models.Chore, error)
	DeactivateChore(userID, choreID uint) error
}

// choreService implements the ChoreService interface
type choreService struct {
	db *gorm.DB
}

// NewChoreService creates a new chore service
func NewChoreService(db *gorm.DB) ChoreService {
	return &choreService{
		db: db,
	}
}

// CreateChore adds a chore to the user's family. Admin only.
func (s *choreService) CreateChore(userID uint, req models.ChoreRequest) (models.Chore, error) {
	if err := validateChoreRequest(req); err != nil {
		return models.Chore{}, err
	}

	familyID, err := s.requireAdmin(userID)
	if err != nil {
		return models.Chore{}, err
	}

	chore := models.Chore{
		FamilyID:    familyID,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Valuation:   req.Valuation,
		IsActive:    true,
	}
	result := s.db.Create(&chore)
	return chore, result.Error
}

// ListChores returns the active chores of the user's family
func (s *choreService) ListChores(userID uint) ([]models.Chore, error) {
	familyID, err := familyIDOf(s.db, userID)
	if err != nil {
		return nil, err
	}

	var chores []models.Chore
	result := s.db.
		Where("family_id = ? AND is_active = ?", familyID, true).
		Order("id").
		Find(&chores)
	return chores, result.Error
}

// UpdateChore updates a chore belonging to the user's family. Admin only.
func (s *choreService) UpdateChore(userID, choreID uint, req models.ChoreRequest) (models.Chore, error) {
	if err := validateChoreRequest(req); err != nil {
		return models.Chore{}, err
	}

	familyID, err := s.requireAdmin(userID)
	if err != nil {
		return models.Chore{}, err
	}

	var chore models.Chore
	if err := s.db.Where("id = ? AND family_id = ?", choreID, familyID).
		First(&chore).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Chore{}, apperrors.NotFound("chore not found")
		}
		return models.Chore{}, err
	}

	chore.Name = req.Name
	chore.Description = req.Description
	chore.Icon = req.Icon
	chore.Valuation = req.Valuation
	result := s.db.Save(&chore)
	return chore, result.Error
}

// DeactivateChore soft-deletes a chore. Admin only; completion history
// survives.
func (s *choreService) DeactivateChore(userID, choreID uint) error {
	familyID, err := s.requireAdmin(userID)
	if err != nil {
		return err
	}

	result := s.db.Model(&models.Chore{}).
		Where("id = ? AND family_id = ? AND is_active = ?", choreID, familyID, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("chore not found")
	}
	return nil
}

// requireAdmin resolves the user's family and checks current adminship
// against the family record, not the token claim: adminship may have moved
// since the token was issued.
func (s *choreService) requireAdmin(userID uint) (uint, error) {
	family, err := familyOfMember(s.db, userID)
	if err != nil {
		return 0, err
	}
	if family.FamilyAdminID != userID {
		return 0, apperrors.Forbidden("only the family admin can manage chores")
	}
	return family.ID, nil
}

func validateChoreRequest(req models.ChoreRequest) error {
	if req.Name == "" {
		return apperrors.Validation("chore name is required")
	}
	if req.Valuation < 0 {
		return apperrors.Validation("chore valuation cannot be negative")
	}
	return nil
}
