// File: services/operator/operator.go
package operator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	operatorRepo "transitops/database/repository/operator"
	"transitops/models"
	"transitops/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const tokenLifetime = 24 * time.Hour

// OperatorService manages dispatcher accounts and their auth tokens.
type OperatorService interface {
	Register(ctx context.Context, name, email, password string) (*models.Operator, string, error)
	Login(ctx context.Context, email, password string) (*models.Operator, string, error)
	VerifyToken(ctx context.Context, operatorID, token string) (*models.Operator, error)
}

// DefaultOperatorService implements OperatorService over the operator repo.
type DefaultOperatorService struct {
	Repo operatorRepo.OperatorRepository
}

func NewDefaultOperatorService(repo operatorRepo.OperatorRepository) *DefaultOperatorService {
	return &DefaultOperatorService{Repo: repo}
}

func (s *DefaultOperatorService) Register(ctx context.Context, name, email, password string) (*models.Operator, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, operatorRepo.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	op := &models.Operator{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.Repo.Create(ctx, op); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(ctx, op)
	if err != nil {
		return nil, "", err
	}
	return op, token, nil
}

func (s *DefaultOperatorService) Login(ctx context.Context, email, password string) (*models.Operator, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	op, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, operatorRepo.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, op)
	if err != nil {
		return nil, "", err
	}
	return op, token, nil
}

// VerifyToken checks that the presented token is the one most recently
// issued to the operator, so tokens are revoked by a fresh login.
func (s *DefaultOperatorService) VerifyToken(ctx context.Context, operatorID, token string) (*models.Operator, error) {
	op, err := s.Repo.GetByID(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if op.TokenHash == "" || op.TokenHash != utils.HashToken(token) {
		return nil, ErrInvalidCredentials
	}
	return op, nil
}

func (s *DefaultOperatorService) issueToken(ctx context.Context, op *models.Operator) (string, error) {
	token, err := utils.GenerateToken(op.ID, op.Email, tokenLifetime)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	if err := s.Repo.UpdateTokenHash(ctx, op.ID, utils.HashToken(token)); err != nil {
		return "", err
	}
	return token, nil
}
