package services

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/apperrors"
	"github.com/choreboard/choreboard/internal/models"
)

// defaultChores seed every new family so the board is never empty.
var defaultChores = []models.Chore{
	{Name: "Wash the dishes", Description: "Everything in the sink, dried and put away", Icon: "dishes", Valuation: 10},
	{Name: "Take out the trash", Description: "All bins, recycling included", Icon: "trash", Valuation: 5},
	{Name: "Vacuum the floors", Description: "All rooms and the hallway", Icon: "vacuum", Valuation: 15},
	{Name: "Do the laundry", Description: "Wash, dry and fold one load", Icon: "laundry", Valuation: 15},
	{Name: "Walk the dog", Description: "At least twenty minutes", Icon: "dog", Valuation: 10},
	{Name: "Cook dinner", Description: "A full meal for the whole family", Icon: "cooking", Valuation: 25},
}

// FamilyService defines the interface for family membership operations
type FamilyService interface {
	CreateFamily(userID uint, name, icon string) (models.FamilyDetail, error)
	GetFamilyDetail(userID uint) (models.FamilyDetail, error)
	RenameFamily(userID uint, name, icon string) (models.Family, error)
	ChangeAdmin(userID, newAdminID uint) (models.Family, error)
	Leave(userID uint) error
	KickMember(actorID, memberID uint) error
	CreateInviteToken(userID uint, flags models.PermissionFlags) (string, error)
	JoinFamily(userID uint, token string) (models.Family, error)
	ListMembers(userID uint) ([]models.User, error)
	GetPermissions(userID uint) (models.UserFamilyPermissions, error)
}

// familyService implements the FamilyService interface
type familyService struct {
	db             *gorm.DB
	secretKey      []byte
	inviteLifetime time.Duration
}

// NewFamilyService creates a new family service
func NewFamilyService(db *gorm.DB, secretKey []byte, inviteLifetime time.Duration) FamilyService {
	return &familyService{
		db:             db,
		secretKey:      secretKey,
		inviteLifetime: inviteLifetime,
	}
}

// CreateFamily creates a family with the user as its first member and admin,
// and seeds the default chore list.
func (s *familyService) CreateFamily(userID uint, name, icon string) (models.FamilyDetail, error) {
	if name == "" {
		return models.FamilyDetail{}, apperrors.Validation("family name is required")
	}

	var family models.Family
	var creator models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&creator, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user not found")
			}
			return err
		}

		family = models.Family{Name: name, Icon: icon, FamilyAdminID: userID}
		if err := tx.Create(&family).Error; err != nil {
			return err
		}

		adminFlags := models.PermissionFlags{
			ShouldConfirmChoreCompletion: true,
			CanManageMembers:             true,
			CanRenameFamily:              true,
		}
		if err := addMember(tx, family.ID, &creator, adminFlags, true); err != nil {
			return err
		}

		for _, chore := range defaultChores {
			seeded := chore
			seeded.FamilyID = family.ID
			seeded.IsActive = true
			if err := tx.Create(&seeded).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.FamilyDetail{}, err
	}

	return models.FamilyDetail{Family: family, Members: []models.User{creator}}, nil
}

// GetFamilyDetail returns the user's family and its members
func (s *familyService) GetFamilyDetail(userID uint) (models.FamilyDetail, error) {
	familyID, err := familyIDOf(s.db, userID)
	if err != nil {
		return models.FamilyDetail{}, err
	}

	var family models.Family
	if err := s.db.First(&family, familyID).Error; err != nil {
		return models.FamilyDetail{}, err
	}

	var members []models.User
	if err := s.db.Where("family_id = ?", familyID).Order("id").Find(&members).Error; err != nil {
		return models.FamilyDetail{}, err
	}

	return models.FamilyDetail{Family: family, Members: members}, nil
}

// RenameFamily updates the family name and icon. Allowed for the admin and
// for members holding the can_rename_family flag.
func (s *familyService) RenameFamily(userID uint, name, icon string) (models.Family, error) {
	if name == "" {
		return models.Family{}, apperrors.Validation("family name is required")
	}

	var family models.Family
	err := s.db.Transaction(func(tx *gorm.DB) error {
		loaded, err := familyOfMember(tx, userID)
		if err != nil {
			return err
		}
		family = *loaded

		if family.FamilyAdminID != userID {
			perms, err := permissionsOf(tx, userID)
			if err != nil {
				return err
			}
			if !perms.CanRenameFamily {
				return apperrors.Forbidden("not allowed to rename the family")
			}
		}

		family.Name = name
		if icon != "" {
			family.Icon = icon
		}
		return tx.Save(&family).Error
	})
	if err != nil {
		return models.Family{}, err
	}
	return family, nil
}

// ChangeAdmin hands adminship to another current member of the family.
func (s *familyService) ChangeAdmin(userID, newAdminID uint) (models.Family, error) {
	var family models.Family
	err := s.db.Transaction(func(tx *gorm.DB) error {
		loaded, err := familyOfMember(tx, userID)
		if err != nil {
			return err
		}
		family = *loaded

		if family.FamilyAdminID != userID {
			return apperrors.Forbidden("only the family admin can transfer adminship")
		}

		var newAdmin models.User
		if err := tx.First(&newAdmin, newAdminID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user not found")
			}
			return err
		}
		if newAdmin.FamilyID == nil || *newAdmin.FamilyID != family.ID {
			return apperrors.Validation("new admin must be a member of the family")
		}

		family.FamilyAdminID = newAdminID
		if err := tx.Save(&family).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("is_family_admin", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", newAdminID).
			Update("is_family_admin", true).Error
	})
	if err != nil {
		return models.Family{}, err
	}
	return family, nil
}

// Leave removes the user from their family. The admin must transfer
// adminship first.
func (s *familyService) Leave(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
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

		var family models.Family
		if err := tx.First(&family, *user.FamilyID).Error; err != nil {
			return err
		}
		if family.FamilyAdminID == userID {
			return apperrors.Conflict("family admin cannot leave the family")
		}

		return removeMember(tx, &user)
	})
}

// KickMember removes another member. Requires adminship or the
// can_manage_members flag; the admin cannot be kicked.
func (s *familyService) KickMember(actorID, memberID uint) error {
	if actorID == memberID {
		return apperrors.Validation("use leave to remove yourself")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		family, err := familyOfMember(tx, actorID)
		if err != nil {
			return err
		}

		if family.FamilyAdminID != actorID {
			perms, err := permissionsOf(tx, actorID)
			if err != nil {
				return err
			}
			if !perms.CanManageMembers {
				return apperrors.Forbidden("not allowed to manage members")
			}
		}

		var member models.User
		if err := tx.First(&member, memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user not found")
			}
			return err
		}
		if member.FamilyID == nil || *member.FamilyID != family.ID {
			return apperrors.NotFound("user is not a member of the family")
		}
		if family.FamilyAdminID == memberID {
			return apperrors.Conflict("family admin cannot be removed")
		}

		return removeMember(tx, &member)
	})
}

// CreateInviteToken issues a signed, time-boxed invite embedding the family
// id and the permission flags to grant on redemption.
func (s *familyService) CreateInviteToken(userID uint, flags models.PermissionFlags) (string, error) {
	var familyID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		family, err := familyOfMember(tx, userID)
		if err != nil {
			return err
		}
		if family.FamilyAdminID != userID {
			perms, err := permissionsOf(tx, userID)
			if err != nil {
				return err
			}
			if !perms.CanManageMembers {
				return apperrors.Forbidden("not allowed to invite members")
			}
		}
		familyID = family.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &models.InviteClaims{
		FamilyID:    familyID,
		Permissions: flags,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(s.inviteLifetime).Unix(),
			IssuedAt:  now.Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// JoinFamily redeems an invite token and adds the user as a member.
func (s *familyService) JoinFamily(userID uint, tokenString string) (models.Family, error) {
	claims := &models.InviteClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return models.Family{}, apperrors.Validation("invalid or expired invite token")
	}

	var family models.Family
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&family, claims.FamilyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("family not found")
			}
			return err
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("user not found")
			}
			return err
		}

		return addMember(tx, family.ID, &user, claims.Permissions, false)
	})
	if err != nil {
		return models.Family{}, err
	}
	return family, nil
}

// ListMembers returns the members of the user's family
func (s *familyService) ListMembers(userID uint) ([]models.User, error) {
	familyID, err := familyIDOf(s.db, userID)
	if err != nil {
		return nil, err
	}
	var members []models.User
	err = s.db.Where("family_id = ?", familyID).Order("id").Find(&members).Error
	return members, err
}

// GetPermissions returns the user's permission flags
func (s *familyService) GetPermissions(userID uint) (models.UserFamilyPermissions, error) {
	return permissionsOf(s.db, userID)
}

// addMember sets the user's family, creates the permissions row and a fresh
// wallet. Fails if the user already belongs to a family.
func addMember(tx *gorm.DB, familyID uint, user *models.User, flags models.PermissionFlags, isAdmin bool) error {
	if user.FamilyID != nil {
		return apperrors.Conflict("user already belongs to a family")
	}

	user.FamilyID = &familyID
	user.IsFamilyAdmin = isAdmin
	if err := tx.Save(user).Error; err != nil {
		return err
	}

	permissions := models.UserFamilyPermissions{
		UserID:                       user.ID,
		ShouldConfirmChoreCompletion: flags.ShouldConfirmChoreCompletion,
		CanManageMembers:             flags.CanManageMembers,
		CanRenameFamily:              flags.CanRenameFamily,
	}
	if err := tx.Create(&permissions).Error; err != nil {
		return err
	}

	return createWallet(tx, user.ID)
}

// removeMember clears the membership and hard-deletes the permissions row
// and the wallet. Ledger and completion history stay untouched.
func removeMember(tx *gorm.DB, user *models.User) error {
	user.FamilyID = nil
	user.IsFamilyAdmin = false
	if err := tx.Save(user).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", user.ID).
		Delete(&models.UserFamilyPermissions{}).Error; err != nil {
		return err
	}
	return deleteWallet(tx, user.ID)
}

// familyOfMember loads the family the user belongs to.
func familyOfMember(tx *gorm.DB, userID uint) (*models.Family, error) {
	familyID, err := familyIDOf(tx, userID)
	if err != nil {
		return nil, err
	}
	var family models.Family
	if err := tx.First(&family, familyID).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

func permissionsOf(tx *gorm.DB, userID uint) (models.UserFamilyPermissions, error) {
	var permissions models.UserFamilyPermissions
	err := tx.Where("user_id = ?", userID).First(&permissions).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserFamilyPermissions{}, apperrors.NotFound("permissions not found")
	}
	return permissions, err
}
