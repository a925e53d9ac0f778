package okrs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/store"
)

var (
	ErrUserIDRequired = errors.New("user id is required")
	ErrUserNotFound   = errors.New("user not found")
	ErrOKRNotFound    = errors.New("OKR not found for user")
)

// UserOKR is a user's newest plan together with the user's public fields.
type UserOKR struct {
	User domain.UserSummary `json:"user"`
	domain.OKRGeneration
}

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Latest returns the newest plan of userID, draft or final.
func (s *Service) Latest(ctx context.Context, userID string) (*UserOKR, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	okr, err := s.store.OKRs().GetLatest(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOKRNotFound
		}
		return nil, fmt.Errorf("failed to load OKRs: %w", err)
	}

	return &UserOKR{User: user.Summary(), OKRGeneration: okr}, nil
}
