package document

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"mixmodas/internal/models"
	"mixmodas/internal/repositories"
)

// userDocument is keyed by email. The hash is only present when the document
// store is the primary user store.
type userDocument struct {
	Email        string     `json:"email" firestore:"email"`
	Name         string     `json:"nome" firestore:"nome"`
	UID          string     `json:"uid,omitempty" firestore:"uid,omitempty"`
	PasswordHash string     `json:"senha,omitempty" firestore:"senha,omitempty"`
	Role         string     `json:"role" firestore:"role"`
	CreatedAt    time.Time  `json:"criado_em" firestore:"criado_em"`
	LastLoginAt  *time.Time `json:"ultimo_login,omitempty" firestore:"ultimo_login,omitempty"`
}

func toUserDocument(u *models.User) *userDocument {
	return &userDocument{
		Email:        u.Email,
		Name:         u.Name,
		UID:          u.UID,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		LastLoginAt:  u.LastLoginAt,
	}
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		Email:        d.Email,
		Name:         d.Name,
		UID:          d.UID,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
		LastLoginAt:  d.LastLoginAt,
	}
}

// UserStore implements repositories.UserRepository and repositories.UserMirror.
type UserStore struct {
	backend Backend
}

// NewUserStore creates a user store over backend.
func NewUserStore(backend Backend) *UserStore {
	return &UserStore{backend: backend}
}

// Create rejects an email that already has a document.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.GetByEmail(ctx, user.Email)
	if err == nil {
		return fmt.Errorf("email '%s' already registered: %w", user.Email, repositories.ErrDuplicate)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return s.backend.Set(ctx, UsersCollection, user.Email, toUserDocument(user))
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDocument
	if err := s.backend.Get(ctx, UsersCollection, email, &doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.backend.Scan(ctx, UsersCollection, func(id string, decode DecodeFunc) error {
		var doc userDocument
		if err := decode(&doc); err != nil {
			return fmt.Errorf("failed to decode user %s: %w", id, err)
		}
		users = append(users, *doc.toModel())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	existing, err := s.GetByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	doc := toUserDocument(user)
	doc.CreatedAt = existing.CreatedAt
	return s.backend.Set(ctx, UsersCollection, user.Email, doc)
}

// PutUser mirrors user without its password hash.
func (s *UserStore) PutUser(ctx context.Context, user *models.User) error {
	doc := toUserDocument(user)
	doc.PasswordHash = ""
	return s.backend.Set(ctx, UsersCollection, user.Email, doc)
}
