package user

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sovereign-chat/internal/utils/platformerrors"
)

type memoryRepo struct {
	mu     sync.Mutex
	byID   map[uint]*User
	nextID uint
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: map[uint]*User{}}
}

func (r *memoryRepo) FindByIdentityID(_ context.Context, identityID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.IdentityID == identityID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryRepo) FindByID(_ context.Context, id uint) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryRepo) GetOrCreate(ctx context.Context, u *User) (*User, bool, error) {
	if existing, err := r.FindByIdentityID(ctx, u.IdentityID); err == nil {
		return existing, false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	cp := *u
	cp.ID = r.nextID
	r.byID[cp.ID] = &cp
	out := cp
	return &out, true, nil
}

func (r *memoryRepo) UpdateProfile(_ context.Context, id uint, email, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[id]
	if email != "" {
		u.Email = email
	}
	if name != "" {
		u.Name = name
	}
	return nil
}

type recordingProvisioner struct {
	calls []uint
}

func (p *recordingProvisioner) EnsureForUser(_ context.Context, u *User) error {
	p.calls = append(p.calls, u.ID)
	return nil
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	prov := &recordingProvisioner{}
	svc := NewService(repo, prov, Config{})
	ctx := context.Background()

	first, err := svc.EnsureUser(ctx, Identity{ID: "idp_1", Email: "a@example.com", Name: "Ada"})
	require.NoError(t, err)
	second, err := svc.EnsureUser(ctx, Identity{ID: "idp_1", Email: "a@example.com", Name: "Ada"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PublicID, second.PublicID)
	assert.Len(t, repo.byID, 1)
	assert.Equal(t, []uint{first.ID}, prov.calls, "provisioning runs only on creation")
	assert.False(t, first.Sovereign)
}

func TestEnsureUserRefreshesProfile(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, Config{})
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, Identity{ID: "idp_1", Email: "old@example.com"})
	require.NoError(t, err)
	u, err := svc.EnsureUser(ctx, Identity{ID: "idp_1", Email: "new@example.com", Name: "New"})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "New", u.Name)
	stored, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", stored.Email)
}

func TestEnsureUserSovereign(t *testing.T) {
	repo := newMemoryRepo()
	prov := &recordingProvisioner{}
	svc := NewService(repo, prov, Config{SovereignUserID: "idp_owner"})
	ctx := context.Background()

	u, err := svc.EnsureUser(ctx, Identity{ID: "idp_owner"})
	require.NoError(t, err)
	assert.True(t, u.Sovereign)

	_, err = svc.EnsureUser(ctx, Identity{ID: "idp_owner"})
	require.NoError(t, err)
	assert.Len(t, prov.calls, 2, "sovereign provisioning is re-checked on every resolve")
}

func TestEnsureUserRejectsEmptyIdentity(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, Config{})
	_, err := svc.EnsureUser(context.Background(), Identity{ID: "  "})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}
