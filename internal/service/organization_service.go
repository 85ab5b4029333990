package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/repository"
)

type MemberResponse struct {
	UserSummary
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

type OrganizationResponse struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	CreatedBy uint             `json:"created_by"`
	Role      string           `json:"role,omitempty"`
	Members   []MemberResponse `json:"members,omitempty"`
	CreatedAt string           `json:"created_at"`
}

// OrganizationService manages organizations and their members. Only admins
// may change membership.
type OrganizationService interface {
	CreateOrganization(ctx context.Context, userID uint, req CreateOrganizationRequest) (*OrganizationResponse, error)
	ListOrganizations(ctx context.Context, userID uint) ([]OrganizationResponse, error)
	GetOrganization(ctx context.Context, userID, orgID uint) (*OrganizationResponse, error)
	AddMember(ctx context.Context, userID, orgID uint, req AddMemberRequest) (*MemberResponse, error)
	UpdateMemberRole(ctx context.Context, userID, orgID, memberID uint, req UpdateMemberRequest) error
	RemoveMember(ctx context.Context, userID, orgID, memberID uint) error
}

type organizationService struct {
	base
}

func NewOrganizationService(repos *repository.Repositories, log *zap.Logger) OrganizationService {
	return &organizationService{base: newBase(repos, nil, log.Named("organizations"))}
}

func toMemberResponse(m domain.OrganizationMember) MemberResponse {
	return MemberResponse{
		UserSummary: toUserSummary(m.User),
		Role:        string(m.Role),
		JoinedAt:    formatTime(m.CreatedAt),
	}
}

func toOrganizationResponse(o domain.Organization) OrganizationResponse {
	resp := OrganizationResponse{
		ID:        o.ID,
		Name:      o.Name,
		CreatedBy: o.CreatedBy,
		CreatedAt: formatTime(o.CreatedAt),
	}
	for _, m := range o.Members {
		resp.Members = append(resp.Members, toMemberResponse(m))
	}
	return resp
}

func (s *organizationService) CreateOrganization(ctx context.Context, userID uint, req CreateOrganizationRequest) (*OrganizationResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: organization name cannot be empty", ErrInvalidInput)
	}

	org := &domain.Organization{Name: name, CreatedBy: userID}
	if err := s.repos.Organizations.Create(ctx, org, userID); err != nil {
		return nil, s.internal(err, "create organization", zap.Uint("user_id", userID))
	}
	s.log.Info("organization created", zap.Uint("org_id", org.ID), zap.Uint("user_id", userID))

	resp := toOrganizationResponse(*org)
	resp.Role = string(domain.RoleAdmin)
	return &resp, nil
}

func (s *organizationService) ListOrganizations(ctx context.Context, userID uint) ([]OrganizationResponse, error) {
	orgs, err := s.repos.Organizations.ListForUser(ctx, userID)
	if err != nil {
		return nil, s.internal(err, "list organizations", zap.Uint("user_id", userID))
	}
	resp := make([]OrganizationResponse, 0, len(orgs))
	for _, o := range orgs {
		resp = append(resp, toOrganizationResponse(o))
	}
	return resp, nil
}

func (s *organizationService) GetOrganization(ctx context.Context, userID, orgID uint) (*OrganizationResponse, error) {
	member, err := s.membership(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	org, err := s.repos.Organizations.FindByID(ctx, orgID)
	if err != nil {
		return nil, s.lookup(err, "organization", orgID)
	}
	resp := toOrganizationResponse(*org)
	resp.Role = string(member.Role)
	return &resp, nil
}

func (s *organizationService) AddMember(ctx context.Context, userID, orgID uint, req AddMemberRequest) (*MemberResponse, error) {
	if err := s.requireAdmin(ctx, orgID, userID); err != nil {
		return nil, err
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleMember
	}
	if err := domain.ValidateRole(role); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	user, err := s.repos.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with email %s", ErrNotFound, email)
		}
		return nil, s.internal(err, "load user", zap.String("email", email))
	}

	member := &domain.OrganizationMember{OrganizationID: orgID, UserID: user.ID, Role: role}
	if err := s.repos.Organizations.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s is already a member", ErrConflict, email)
		}
		return nil, s.internal(err, "add member", zap.Uint("org_id", orgID))
	}
	member.User = *user
	resp := toMemberResponse(*member)
	return &resp, nil
}

func (s *organizationService) UpdateMemberRole(ctx context.Context, userID, orgID, memberID uint, req UpdateMemberRequest) error {
	if err := s.requireAdmin(ctx, orgID, userID); err != nil {
		return err
	}
	role := domain.Role(req.Role)
	if err := domain.ValidateRole(role); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	target, err := s.member(ctx, orgID, memberID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleAdmin && role != domain.RoleAdmin {
		if err := s.keepOneAdmin(ctx, orgID); err != nil {
			return err
		}
	}
	if err := s.repos.Organizations.UpdateMemberRole(ctx, orgID, memberID, role); err != nil {
		return s.lookup(err, "member", memberID)
	}
	return nil
}

func (s *organizationService) RemoveMember(ctx context.Context, userID, orgID, memberID uint) error {
	// Members may leave on their own; removing others takes an admin.
	if userID != memberID {
		if err := s.requireAdmin(ctx, orgID, userID); err != nil {
			return err
		}
	}
	target, err := s.member(ctx, orgID, memberID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleAdmin {
		if err := s.keepOneAdmin(ctx, orgID); err != nil {
			return err
		}
	}
	if err := s.repos.Organizations.RemoveMember(ctx, orgID, memberID); err != nil {
		return s.lookup(err, "member", memberID)
	}
	return nil
}

// membership returns userID's membership or ErrForbidden when there is none.
func (s *organizationService) membership(ctx context.Context, orgID, userID uint) (*domain.OrganizationMember, error) {
	member, err := s.repos.Organizations.FindMember(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d is not a member of organization %d", ErrForbidden, userID, orgID)
		}
		return nil, s.internal(err, "load membership", zap.Uint("org_id", orgID))
	}
	return member, nil
}

func (s *organizationService) member(ctx context.Context, orgID, memberID uint) (*domain.OrganizationMember, error) {
	member, err := s.repos.Organizations.FindMember(ctx, orgID, memberID)
	if err != nil {
		return nil, s.lookup(err, "member", memberID)
	}
	return member, nil
}

func (s *organizationService) requireAdmin(ctx context.Context, orgID, userID uint) error {
	member, err := s.membership(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if member.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: only admins can manage members", ErrForbidden)
	}
	return nil
}

func (s *organizationService) keepOneAdmin(ctx context.Context, orgID uint) error {
	admins, err := s.repos.Organizations.CountAdmins(ctx, orgID)
	if err != nil {
		return s.internal(err, "count admins", zap.Uint("org_id", orgID))
	}
	if admins <= 1 {
		return fmt.Errorf("%w: an organization needs at least one admin", ErrConflict)
	}
	return nil
}
