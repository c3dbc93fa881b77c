// Package server provides the HTTP REST API for the agricultural marketplace.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/kwame/agrimarket/internal/config"
	"github.com/kwame/agrimarket/internal/types"
)

// AccountStore is the subset of the store the account service needs.
// *db.DB satisfies this; tests substitute a fake.
type AccountStore interface {
	GetAccountByEmail(ctx context.Context, email string) (*types.Account, error)
	CreateAccount(ctx context.Context, account *types.Account) (*types.Account, error)
	CreateFarmer(ctx context.Context, farmer *types.Farmer) (*types.Farmer, error)
	CreateBuyer(ctx context.Context, buyer *types.Buyer) (*types.Buyer, error)
}

// AccountService provides business logic for account registration and login.
// Farmer and buyer registrations create the matching domain profile and link
// it to the account.
type AccountService struct {
	db             AccountStore
	passwordConfig *config.PasswordConfig
}

// NewAccountService creates a new AccountService with the given dependencies.
func NewAccountService(database AccountStore, passwordConfig *config.PasswordConfig) *AccountService {
	return &AccountService{
		db:             database,
		passwordConfig: passwordConfig,
	}
}

// Register creates a new account with password authentication. For farmer and
// buyer roles the domain profile is created first and linked via ProfileID.
func (s *AccountService) Register(ctx context.Context, req *types.RegisterRequest) (*types.Account, error) {
	if !req.Role.Valid() {
		return nil, &ErrValidation{Field: "role", Message: fmt.Sprintf("unknown role %q", req.Role)}
	}

	existing, err := s.db.GetAccountByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if existing != nil {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &types.Account{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
	}

	switch req.Role {
	case types.RoleFarmer:
		if req.Phone == "" {
			return nil, &ErrValidation{Field: "phone", Message: "phone is required for farmer accounts"}
		}
		farmer, err := s.db.CreateFarmer(ctx, &types.Farmer{
			Name:         req.Name,
			FarmName:     req.FarmName,
			Location:     req.Location,
			Phone:        req.Phone,
			Email:        req.Email,
			RegisteredAt: time.Now().UTC(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create farmer profile: %w", err)
		}
		account.ProfileID = &farmer.ID
	case types.RoleBuyer:
		buyer, err := s.db.CreateBuyer(ctx, &types.Buyer{
			Name:    req.Name,
			Company: req.Company,
			Email:   req.Email,
			Phone:   req.Phone,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create buyer profile: %w", err)
		}
		account.ProfileID = &buyer.ID
	}

	created, err := s.db.CreateAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return created, nil
}

// Login verifies credentials and returns the matching account.
func (s *AccountService) Login(ctx context.Context, req *types.LoginRequest) (*types.Account, error) {
	account, err := s.db.GetAccountByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return nil, &ErrInvalidCredentials{}
	}

	if !s.passwordConfig.VerifyPassword(req.Password, account.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return account, nil
}
