package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/db/repos"
	"github.com/talentpad/presale/internal/types"
)

// Talent provides business logic for talent operations
type Talent struct {
	repo *repos.TalentRepository
}

// NewTalentService creates a new talent service instance
func NewTalentService(repo *repos.TalentRepository) *Talent {
	return &Talent{repo: repo}
}

// Create validates and stores a new talent
func (s *Talent) Create(ctx context.Context, req types.CreateTalentRequest) (*models.Talent, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}
	talent := &models.Talent{
		Handle:        req.Handle,
		Name:          req.Name,
		Logline:       req.Logline,
		WalletAddress: req.WalletAddress,
	}
	if req.Status != "" {
		status, err := models.ParseTalentStatus(req.Status)
		if err != nil {
			return nil, errors.Join(ErrInvalidInput, err)
		}
		talent.Status = status
	}

	if err := s.repo.Create(ctx, talent); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Join(ErrHandleTaken, err)
		}
		return nil, fmt.Errorf("failed to create talent: %w", err)
	}
	return talent, nil
}

// Get retrieves a talent by ID
func (s *Talent) Get(ctx context.Context, id string) (*models.Talent, error) {
	talent, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFound(ErrTalentNotFound, err)
	}
	return talent, nil
}

// GetByHandle retrieves a talent by handle
func (s *Talent) GetByHandle(ctx context.Context, handle string) (*models.Talent, error) {
	talent, err := s.repo.GetByHandle(ctx, handle)
	if err != nil {
		return nil, notFound(ErrTalentNotFound, err)
	}
	return talent, nil
}

// List returns a page of talents and the total count
func (s *Talent) List(ctx context.Context, opts *models.ListOptions) ([]models.Talent, int64, error) {
	talents, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count talents: %w", err)
	}
	return talents, total, nil
}

// UpdateWallet sets the wallet that receives the talent's deposits
func (s *Talent) UpdateWallet(ctx context.Context, id string, req types.UpdateWalletRequest) (*models.Talent, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}
	if err := s.repo.UpdateWallet(ctx, id, req.WalletAddress); err != nil {
		return nil, notFound(ErrTalentNotFound, err)
	}
	return s.Get(ctx, id)
}

// notFound joins sentinel to err when err is a missing record, and returns err otherwise
func notFound(sentinel, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Join(sentinel, err)
	}
	return err
}
