package student

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/modules/student/dto"
	"anoa.com/hostelhub/internal/modules/student/repository"
	userRepo "anoa.com/hostelhub/internal/modules/user/repository"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/apperror"
	commonDto "anoa.com/hostelhub/pkg/dto"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type StudentService interface {
	GetAll(ctx context.Context, id policy.Identity, filter dto.StudentFilter) ([]entity.StudentProfile, error)
	GetByID(ctx context.Context, id policy.Identity, studentID uuid.UUID) (*entity.StudentProfile, error)
	Create(ctx context.Context, req dto.CreateStudentRequest) (*entity.StudentProfile, error)
	Update(ctx context.Context, studentID uuid.UUID, req dto.UpdateStudentRequest) (*entity.StudentProfile, error)
	Delete(ctx context.Context, studentID uuid.UUID) error
}

type studentService struct {
	repo     repository.StudentRepository
	userRepo userRepo.UserRepository
}

func NewStudentService(repo repository.StudentRepository, userRepo userRepo.UserRepository) StudentService {
	return &studentService{repo: repo, userRepo: userRepo}
}

func (s *studentService) GetAll(ctx context.Context, id policy.Identity, filter dto.StudentFilter) ([]entity.StudentProfile, error) {
	scope, err := policy.Scope(id, policy.KindStudent)
	if err != nil {
		return nil, err
	}
	return s.repo.FindAll(ctx, scope, filter)
}

func (s *studentService) GetByID(ctx context.Context, id policy.Identity, studentID uuid.UUID) (*entity.StudentProfile, error) {
	scope, err := policy.Scope(id, policy.KindStudent)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := scope.Check(profile.ID, profile.HostelBlock); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *studentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*entity.StudentProfile, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.ensureUnique(ctx, email, req.RollNumber, nil, nil); err != nil {
		return nil, err
	}

	dob, err := parseBirthDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	role, err := s.userRepo.FindRoleByName(ctx, entity.RoleStudent)
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
	profile := &entity.StudentProfile{
		RollNumber:    req.RollNumber,
		Course:        req.Course,
		Year:          req.Year,
		HostelBlock:   req.HostelBlock,
		RoomNumber:    req.RoomNumber,
		ContactNumber: req.ContactNumber,
		ParentName:    req.ParentName,
		ParentContact: req.ParentContact,
		Address:       req.Address,
		DateOfBirth:   dob,
		BloodGroup:    req.BloodGroup,
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, profile.ID)
}

func (s *studentService) Update(ctx context.Context, studentID uuid.UUID, req dto.UpdateStudentRequest) (*entity.StudentProfile, error) {
	profile, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	user := profile.User
	if user == nil {
		return nil, fmt.Errorf("student has no user account: %w", apperror.ErrNotFound)
	}

	var email, roll string
	if req.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.RollNumber != nil {
		roll = *req.RollNumber
	}
	if err := s.ensureUnique(ctx, email, roll, &user.ID, &profile.ID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if email != "" {
		user.Email = email
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
	if req.DateOfBirth != nil {
		dob, err := parseBirthDate(*req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		profile.DateOfBirth = dob
	}

	assign(&profile.RollNumber, req.RollNumber)
	assign(&profile.Course, req.Course)
	assign(&profile.HostelBlock, req.HostelBlock)
	assign(&profile.RoomNumber, req.RoomNumber)
	assign(&profile.ContactNumber, req.ContactNumber)
	assign(&profile.ParentName, req.ParentName)
	assign(&profile.ParentContact, req.ParentContact)
	assign(&profile.Address, req.Address)
	assign(&profile.BloodGroup, req.BloodGroup)
	if req.Year != nil {
		profile.Year = *req.Year
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, profile.ID)
}

func (s *studentService) Delete(ctx context.Context, studentID uuid.UUID) error {
	profile, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, profile)
}

// ensureUnique rejects an email or roll number already used by another record.
// Empty values are not checked.
func (s *studentService) ensureUnique(ctx context.Context, email, roll string, userID, profileID *uuid.UUID) error {
	if email != "" {
		taken, err := s.userRepo.EmailTaken(ctx, email, userID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("email %s is already registered: %w", email, apperror.ErrConflict)
		}
	}
	if roll != "" {
		taken, err := s.repo.RollNumberTaken(ctx, roll, profileID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("roll number %s is already registered: %w", roll, apperror.ErrConflict)
		}
	}
	return nil
}

func parseBirthDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := commonDto.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid date_of_birth: %w", apperror.ErrInvalidInput)
	}
	return &d, nil
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
