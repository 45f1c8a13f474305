// Package user provides user domain models and behaviors.
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"sovereign-chat/internal/utils/idgen"
	"sovereign-chat/internal/utils/platformerrors"
)

// User models an application user resolved from the identity provider.
type User struct {
	ID         uint
	PublicID   string
	IdentityID string
	Email      string
	Name       string
	// Sovereign is derived from configuration on every resolve, never stored.
	Sovereign bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity is the verified identity-provider payload.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// Repository defines storage operations for users.
type Repository interface {
	FindByIdentityID(ctx context.Context, identityID string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	// GetOrCreate inserts the user unless identity_id already exists and
	// returns the stored row. created reports whether this call inserted it.
	GetOrCreate(ctx context.Context, user *User) (stored *User, created bool, err error)
	UpdateProfile(ctx context.Context, id uint, email, name string) error
}

// Provisioner creates per-user records that must exist alongside a user.
type Provisioner interface {
	EnsureForUser(ctx context.Context, u *User) error
}

// ErrInvalidIdentity indicates a verified identity without an id.
var ErrInvalidIdentity = errors.New("invalid identity: id is required")

// Config carries the user settings taken from the process configuration.
type Config struct {
	// SovereignUserID is the identity-provider id granted sovereign access; empty disables it.
	SovereignUserID string
}

// Service persists and resolves users from verified identities.
type Service struct {
	repo            Repository
	provisioner     Provisioner
	sovereignUserID string
}

// NewService constructs a Service.
func NewService(repo Repository, provisioner Provisioner, cfg Config) *Service {
	return &Service{repo: repo, provisioner: provisioner, sovereignUserID: strings.TrimSpace(cfg.SovereignUserID)}
}

// EnsureUser is the idempotent get-or-create used on every authenticated
// request. The unique identity_id index guards concurrent first requests.
func (s *Service) EnsureUser(ctx context.Context, identity Identity) (*User, error) {
	identity.ID = strings.TrimSpace(identity.ID)
	if identity.ID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, ErrInvalidIdentity.Error(), ErrInvalidIdentity, "1b0f6b0e-57a5-4d43-8a57-a1b2b0f8e9d1")
	}

	publicID, err := idgen.GenerateSecureID(idgen.PrefixUser, idgen.DefaultLength)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate user id", err, "b2f7c4d1-0a6e-4f3c-9d8b-5e1a2c3d4f50")
	}

	stored, created, err := s.repo.GetOrCreate(ctx, &User{
		PublicID:   publicID,
		IdentityID: identity.ID,
		Email:      identity.Email,
		Name:       identity.Name,
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to resolve user")
	}

	if !created && profileChanged(stored, identity) {
		if err := s.repo.UpdateProfile(ctx, stored.ID, identity.Email, identity.Name); err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to refresh user profile")
		}
		if identity.Email != "" {
			stored.Email = identity.Email
		}
		if identity.Name != "" {
			stored.Name = identity.Name
		}
	}

	stored.Sovereign = s.IsSovereign(stored.IdentityID)

	if (created || stored.Sovereign) && s.provisioner != nil {
		if err := s.provisioner.EnsureForUser(ctx, stored); err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to provision user")
		}
	}
	return stored, nil
}

// FindByID returns a user by internal id with the sovereign flag applied.
func (s *Service) FindByID(ctx context.Context, id uint) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to find user")
	}
	u.Sovereign = s.IsSovereign(u.IdentityID)
	return u, nil
}

// IsSovereign reports whether identityID holds sovereign access.
func (s *Service) IsSovereign(identityID string) bool {
	return s.sovereignUserID != "" && identityID == s.sovereignUserID
}

func profileChanged(u *User, identity Identity) bool {
	return (identity.Email != "" && identity.Email != u.Email) ||
		(identity.Name != "" && identity.Name != u.Name)
}
