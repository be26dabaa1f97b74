package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

// PrincipalService manages principal lifecycle. Registration with passwords
// is handled upstream; this service only seeds and removes principals.
type PrincipalService struct {
	principals driven.PrincipalStore
	logger     *slog.Logger
}

// NewPrincipalService creates a PrincipalService.
func NewPrincipalService(principals driven.PrincipalStore, logger *slog.Logger) *PrincipalService {
	return &PrincipalService{principals: principals, logger: logger}
}

// Create validates and stores a principal.
func (s *PrincipalService) Create(ctx context.Context, p model.Principal) (model.Principal, error) {
	p.Email = strings.TrimSpace(p.Email)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)

	if _, err := mail.ParseAddress(p.Email); err != nil {
		return model.Principal{}, model.ValidationError("email", "must be a valid address")
	}
	if n := len(p.FirstName); n < 2 || n > 30 {
		return model.Principal{}, model.ValidationError("first_name", "must be 2 to 30 characters")
	}
	if n := len(p.LastName); n < 2 || n > 30 {
		return model.Principal{}, model.ValidationError("last_name", "must be 2 to 30 characters")
	}

	created, err := s.principals.Create(ctx, p)
	if err != nil {
		return model.Principal{}, fmt.Errorf("create principal: %w", err)
	}

	s.logger.Info("principal created", "principal_id", created.ID)
	return created, nil
}

// Get returns the principal with the given ID.
func (s *PrincipalService) Get(ctx context.Context, id int64) (*model.Principal, error) {
	p, err := s.principals.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get principal: %w", err)
	}
	return p, nil
}

// Delete removes the principal with its cards and their sent transactions.
// It waits for in-flight transfers on those cards to finish.
func (s *PrincipalService) Delete(ctx context.Context, id int64) error {
	if err := s.principals.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete principal: %w", err)
	}

	s.logger.Info("principal deleted", "principal_id", id)
	return nil
}
