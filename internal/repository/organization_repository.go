package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ozcanhakn/kanban-app/internal/domain"
)

// OrganizationRepository defines the data operations for organizations and
// their memberships.
type OrganizationRepository interface {
	// Create inserts the organization and makes creatorID its first admin.
	Create(ctx context.Context, org *domain.Organization, creatorID uint) error
	FindByID(ctx context.Context, id uint) (*domain.Organization, error)
	ListForUser(ctx context.Context, userID uint) ([]domain.Organization, error)
	IDsForUser(ctx context.Context, userID uint) ([]uint, error)

	FindMember(ctx context.Context, orgID, userID uint) (*domain.OrganizationMember, error)
	AddMember(ctx context.Context, member *domain.OrganizationMember) error
	UpdateMemberRole(ctx context.Context, orgID, userID uint, role domain.Role) error
	RemoveMember(ctx context.Context, orgID, userID uint) error
	CountAdmins(ctx context.Context, orgID uint) (int64, error)
}

type gormOrganizationRepository struct {
	db *gorm.DB
}

func NewGormOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &gormOrganizationRepository{db: db}
}

func (r *gormOrganizationRepository) Create(ctx context.Context, org *domain.Organization, creatorID uint) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org.CreatedBy = creatorID
		if err := tx.Omit("Members").Create(org).Error; err != nil {
			return err
		}
		member := domain.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         creatorID,
			Role:           domain.RoleAdmin,
		}
		if err := tx.Omit("User").Create(&member).Error; err != nil {
			return err
		}
		org.Members = []domain.OrganizationMember{member}
		return nil
	}))
}

// FindByID loads the organization with its members and their accounts.
func (r *gormOrganizationRepository) FindByID(ctx context.Context, id uint) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).
		Preload("Members", byID).
		Preload("Members.User").
		First(&org, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &org, nil
}

func (r *gormOrganizationRepository) ListForUser(ctx context.Context, userID uint) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := r.db.WithContext(ctx).
		Joins("JOIN organization_members m ON m.organization_id = organizations.id").
		Where("m.user_id = ?", userID).
		Order("organizations.name ASC").
		Find(&orgs).Error
	if err != nil {
		return nil, translate(err)
	}
	return orgs, nil
}

func (r *gormOrganizationRepository) IDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&domain.OrganizationMember{}).
		Where("user_id = ?", userID).
		Pluck("organization_id", &ids).Error
	return ids, translate(err)
}

func (r *gormOrganizationRepository) FindMember(ctx context.Context, orgID, userID uint) (*domain.OrganizationMember, error) {
	var member domain.OrganizationMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *gormOrganizationRepository) AddMember(ctx context.Context, member *domain.OrganizationMember) error {
	return translate(r.db.WithContext(ctx).Omit("User").Create(member).Error)
}

func (r *gormOrganizationRepository) UpdateMemberRole(ctx context.Context, orgID, userID uint, role domain.Role) error {
	result := r.db.WithContext(ctx).
		Model(&domain.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Update("role", role)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormOrganizationRepository) RemoveMember(ctx context.Context, orgID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Delete(&domain.OrganizationMember{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormOrganizationRepository) CountAdmins(ctx context.Context, orgID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.OrganizationMember{}).
		Where("organization_id = ? AND role = ?", orgID, domain.RoleAdmin).
		Count(&count).Error
	return count, translate(err)
}
