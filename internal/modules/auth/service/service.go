package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/modules/auth/dto"
	"anoa.com/hostelhub/internal/modules/auth/token"
	studentRepo "anoa.com/hostelhub/internal/modules/student/repository"
	userRepo "anoa.com/hostelhub/internal/modules/user/repository"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/apperror"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, id policy.Identity) (*entity.User, error)
}

type authService struct {
	userRepo    userRepo.UserRepository
	studentRepo studentRepo.StudentRepository
	tokens      *token.Manager
}

func NewAuthService(userRepo userRepo.UserRepository, studentRepo studentRepo.StudentRepository, tokens *token.Manager) AuthService {
	return &authService{
		userRepo:    userRepo,
		studentRepo: studentRepo,
		tokens:      tokens,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if user.Status != entity.StatusActive {
		return nil, fmt.Errorf("account is inactive: %w", apperror.ErrForbidden)
	}

	// the real role is only disclosed once the password has been verified
	if req.Role != "" && req.Role != user.Role.Name {
		return nil, &apperror.RoleMismatchError{ClaimedRole: req.Role, ActualRole: user.Role.Name}
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role.Name}).Info("user logged in")
	return s.issue(user)
}

// Register self-provisions a student account with its profile.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if req.Role != "" && req.Role != entity.RoleStudent {
		return nil, fmt.Errorf("only students can self-register: %w", apperror.ErrForbidden)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := s.userRepo.EmailTaken(ctx, email, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("email %s is already registered: %w", email, apperror.ErrConflict)
	}

	taken, err = s.studentRepo.RollNumberTaken(ctx, req.RollNumber, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("roll number %s is already registered: %w", req.RollNumber, apperror.ErrConflict)
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
		HostelBlock:   req.HostelBlock,
		RoomNumber:    req.RoomNumber,
		Course:        req.Course,
		Year:          req.Year,
		ContactNumber: req.ContactNumber,
	}
	if err := s.studentRepo.Create(ctx, user, profile); err != nil {
		return nil, err
	}

	created, err := s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	logrus.WithField("user_id", created.ID).Info("student registered")
	return s.issue(created)
}

func (s *authService) Me(ctx context.Context, id policy.Identity) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, id.UserID)
}

func (s *authService) issue(user *entity.User) (*dto.AuthResponse, error) {
	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &dto.AuthResponse{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      user,
	}, nil
}
