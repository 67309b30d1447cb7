package warden

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/modules/warden/dto"
	"anoa.com/hostelhub/internal/modules/warden/repository"
	userRepo "anoa.com/hostelhub/internal/modules/user/repository"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/apperror"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type WardenService interface {
	GetAll(ctx context.Context) ([]entity.WardenProfile, error)
	GetByID(ctx context.Context, id policy.Identity, wardenID uuid.UUID) (*entity.WardenProfile, error)
	Create(ctx context.Context, req dto.CreateWardenRequest) (*entity.WardenProfile, error)
	Update(ctx context.Context, wardenID uuid.UUID, req dto.UpdateWardenRequest) (*entity.WardenProfile, error)
	Delete(ctx context.Context, wardenID uuid.UUID) error
}

type wardenService struct {
	repo     repository.WardenRepository
	userRepo userRepo.UserRepository
}

func NewWardenService(repo repository.WardenRepository, userRepo userRepo.UserRepository) WardenService {
	return &wardenService{repo: repo, userRepo: userRepo}
}

func (s *wardenService) GetAll(ctx context.Context) ([]entity.WardenProfile, error) {
	return s.repo.FindAll(ctx)
}

// GetByID is open to admins and to the warden itself.
func (s *wardenService) GetByID(ctx context.Context, id policy.Identity, wardenID uuid.UUID) (*entity.WardenProfile, error) {
	profile, err := s.repo.FindByID(ctx, wardenID)
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin() && (id.WardenID == nil || *id.WardenID != profile.ID) {
		return nil, fmt.Errorf("cannot view another warden: %w", apperror.ErrForbidden)
	}
	return profile, nil
}

func (s *wardenService) Create(ctx context.Context, req dto.CreateWardenRequest) (*entity.WardenProfile, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.ensureEmailFree(ctx, email, nil); err != nil {
		return nil, err
	}

	role, err := s.userRepo.FindRoleByName(ctx, entity.RoleWarden)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
	}
	profile := &entity.WardenProfile{
		HostelBlock:   req.HostelBlock,
		ContactNumber: req.ContactNumber,
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, profile.ID)
}

func (s *wardenService) Update(ctx context.Context, wardenID uuid.UUID, req dto.UpdateWardenRequest) (*entity.WardenProfile, error) {
	profile, err := s.repo.FindByID(ctx, wardenID)
	if err != nil {
		return nil, err
	}
	user := profile.User
	if user == nil {
		return nil, fmt.Errorf("warden has no user account: %w", apperror.ErrNotFound)
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if err := s.ensureEmailFree(ctx, email, &user.ID); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}
	if req.Status != nil {
		user.Status = *req.Status
		profile.Status = *req.Status
	}
	if req.HostelBlock != nil {
		profile.HostelBlock = strings.TrimSpace(*req.HostelBlock)
	}
	if req.ContactNumber != nil {
		profile.ContactNumber = strings.TrimSpace(*req.ContactNumber)
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, profile.ID)
}

func (s *wardenService) Delete(ctx context.Context, wardenID uuid.UUID) error {
	profile, err := s.repo.FindByID(ctx, wardenID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, profile)
}

func (s *wardenService) ensureEmailFree(ctx context.Context, email string, except *uuid.UUID) error {
	taken, err := s.userRepo.EmailTaken(ctx, email, except)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("email %s is already registered: %w", email, apperror.ErrConflict)
	}
	return nil
}
