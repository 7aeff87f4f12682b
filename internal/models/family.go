package models

import (
	"github.com/dgrijalva/jwt-go"
)

// Family groups users into one shared household economy.
type Family struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Name          string  `json:"name"`
	Icon          string  `json:"icon"`
	FamilyAdminID uint    `json:"familyAdminId" gorm:"column:family_admin_id"`
	Experience    float64 `json:"experience" gorm:"default:0"`
}

// UserFamilyPermissions is the per-member flag set. Created when a user joins
// a family, deleted when they leave.
type UserFamilyPermissions struct {
	ID                           uint `gorm:"primaryKey" json:"id"`
	UserID                       uint `gorm:"column:user_id;uniqueIndex" json:"userId"`
	ShouldConfirmChoreCompletion bool `json:"shouldConfirmChoreCompletion" gorm:"column:should_confirm_chore_completion"`
	CanManageMembers             bool `json:"canManageMembers" gorm:"column:can_manage_members"`
	CanRenameFamily              bool `json:"canRenameFamily" gorm:"column:can_rename_family"`
}

func (UserFamilyPermissions) TableName() string {
	return "user_family_permissions"
}

// PermissionFlags is the wire form of UserFamilyPermissions, embedded in
// invite tokens and join requests.
type PermissionFlags struct {
	ShouldConfirmChoreCompletion bool `json:"should_confirm_chore_completion"`
	CanManageMembers             bool `json:"can_manage_members"`
	CanRenameFamily              bool `json:"can_rename_family"`
}

// InviteClaims is the payload of a signed family invite token.
type InviteClaims struct {
	FamilyID    uint            `json:"family_id"`
	Permissions PermissionFlags `json:"permissions"`
	jwt.StandardClaims
}

type CreateFamilyRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type RenameFamilyRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type ChangeAdminRequest struct {
	NewAdminID uint `json:"new_admin_id"`
}

type InviteRequest struct {
	Permissions PermissionFlags `json:"permissions"`
}

type InviteResponse struct {
	Token string `json:"token"`
}

type JoinFamilyRequest struct {
	Token string `json:"token"`
}

// FamilyDetail is the GET /family response body.
type FamilyDetail struct {
	Family  Family `json:"family"`
	Members []User `json:"members"`
}
