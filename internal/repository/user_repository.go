package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

// UserRepository defines the data operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByEmail expects an already-normalized (lowercase) email.
func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormUserRepository) Update(ctx context.Context, user *domain.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

// SessionRepository stores sign-in sessions and magic-link tokens.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error

	CreateMagicLink(ctx context.Context, link *domain.MagicLink) error
	// ConsumeMagicLink marks the link used and returns it. A link that is
	// unknown or already used yields ErrNotFound.
	ConsumeMagicLink(ctx context.Context, tokenHash string, at time.Time) (*domain.MagicLink, error)
}

type gormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) SessionRepository {
	return &gormSessionRepository{db: db}
}

func (r *gormSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return translate(r.db.WithContext(ctx).Create(session).Error)
}

func (r *gormSessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&session).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (r *gormSessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormSessionRepository) CreateMagicLink(ctx context.Context, link *domain.MagicLink) error {
	return translate(r.db.WithContext(ctx).Create(link).Error)
}

func (r *gormSessionRepository) ConsumeMagicLink(ctx context.Context, tokenHash string, at time.Time) (*domain.MagicLink, error) {
	var link domain.MagicLink
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token_hash = ? AND used_at IS NULL", tokenHash).First(&link).Error; err != nil {
			return err
		}
		result := tx.Model(&domain.MagicLink{}).
			Where("id = ? AND used_at IS NULL", link.ID).
			Update("used_at", at)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		link.UsedAt = &at
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &link, nil
}
