package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mixmodas/internal/models"

	"gorm.io/gorm"
)

type userRecord struct {
	Email        string     `gorm:"column:email;primaryKey;size:255"`
	Name         string     `gorm:"column:nome"`
	UID          string     `gorm:"column:uid;size:128;index"`
	PasswordHash string     `gorm:"column:senha;size:255"`
	Role         string     `gorm:"column:role;size:32;default:user"`
	CreatedAt    time.Time  `gorm:"column:criado_em"`
	LastLoginAt  *time.Time `gorm:"column:ultimo_login"`
}

func (userRecord) TableName() string { return "usuarios" }

func userToRecord(u *models.User) *userRecord {
	return &userRecord{
		Email:        u.Email,
		Name:         u.Name,
		UID:          u.UID,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		LastLoginAt:  u.LastLoginAt,
	}
}

func (r *userRecord) toModel() *models.User {
	return &models.User{
		Email:        r.Email,
		Name:         r.Name,
		UID:          r.UID,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt,
		LastLoginAt:  r.LastLoginAt,
	}
}

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database. The email is the primary key, so
// a second insert for the same address fails with ErrDuplicate.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&userRecord{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("email '%s' already registered: %w", user.Email, ErrDuplicate)
	}
	if err := r.db.WithContext(ctx).Create(userToRecord(user)).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email '%s' already registered: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).First(&rec, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return rec.toModel(), nil
}

// List returns every user ordered by email.
func (r *GORMUserRepository) List(ctx context.Context) ([]models.User, error) {
	var records []userRecord
	if err := r.db.WithContext(ctx).Order("email").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]models.User, 0, len(records))
	for i := range records {
		users = append(users, *records[i].toModel())
	}
	return users, nil
}

// Update saves name, uid, role, hash and last-login of an existing user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&userRecord{Email: user.Email}).
		Select("nome", "uid", "senha", "role", "ultimo_login").
		Updates(userToRecord(user))
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with email %s not found for update: %w", user.Email, ErrNotFound)
	}
	return nil
}

// isUniqueViolation recognises unique-constraint errors across the supported
// SQL dialects.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
