package dbschema

import (
	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(User{})
}

// User represents the persisted user schema tied to an external identity provider.
type User struct {
	BaseModel
	PublicID   string `gorm:"type:varchar(32);not null;uniqueIndex:ux_users_public_id"`
	IdentityID string `gorm:"type:varchar(255);not null;uniqueIndex:ux_users_identity_id"`
	Email      string `gorm:"type:varchar(320);not null;default:''"`
	Name       string `gorm:"type:varchar(255);not null;default:''"`
}

// NewSchemaUser converts a domain user into a schema instance.
func NewSchemaUser(u *user.User) *User {
	if u == nil {
		return nil
	}

	return &User{
		BaseModel: BaseModel{
			ID:        u.ID,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		},
		PublicID:   u.PublicID,
		IdentityID: u.IdentityID,
		Email:      u.Email,
		Name:       u.Name,
	}
}

// EtoD converts a schema user back to the domain representation.
func (u *User) EtoD() *user.User {
	if u == nil {
		return nil
	}

	return &user.User{
		ID:         u.ID,
		PublicID:   u.PublicID,
		IdentityID: u.IdentityID,
		Email:      u.Email,
		Name:       u.Name,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
