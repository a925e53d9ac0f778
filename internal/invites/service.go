package invites

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/audit"
	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/metrics"
	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/aliuyar1234/okrlaunch/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Options tunes invitation lookups.
type Options struct {
	// AllowFinalizedFallback lets Validate show the newest finalized plan
	// when a pending invitee has no draft row.
	AllowFinalizedFallback bool
}

// Service drives the invitation lifecycle:
// pending invitee with a draft plan, then accepted invitee with a final plan.
type Service struct {
	store   store.Store
	auditor *audit.Writer
	opts    Options
	now     func() time.Time
}

func NewService(s store.Store, auditor *audit.Writer, opts Options) *Service {
	return &Service{
		store:   s,
		auditor: auditor,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Validate resolves a pending invitation. Unknown and accepted tokens both
// return ErrNotFound.
func (s *Service) Validate(ctx context.Context, token string) (*InvitationData, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}

	user, err := s.pendingInvitee(ctx, token)
	if err != nil {
		return nil, err
	}

	okr, err := s.store.OKRs().GetActiveDraft(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) && s.opts.AllowFinalizedFallback {
		okr, err = s.store.OKRs().GetLatest(ctx, user.ID)
		if err == nil {
			log.Warn().
				Str("user_id", user.ID).
				Str("okr_id", okr.ID.String()).
				Msg("Pending invitee has no draft plan, showing latest finalized plan")
		}
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn().Str("user_id", user.ID).Msg("Pending invitee has no OKR plan")
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load OKRs: %w", err)
	}

	data := &InvitationData{User: invitedUser(user), OKR: okr}

	if user.InvitedBy != nil && *user.InvitedBy != "" {
		inviter, err := s.store.Users().GetByID(ctx, *user.InvitedBy)
		if err != nil {
			log.Debug().Err(err).Str("invited_by", *user.InvitedBy).Msg("Inviter lookup failed")
		} else {
			data.Leader = &Leader{Name: inviter.Name, Email: inviter.Email}
		}
	}

	return data, nil
}

// Accept marks the invitation accepted and finalizes the invitee's plan.
// The accept step is a conditional update, so of two concurrent callers
// only one succeeds. A finalize failure leaves the invitation accepted;
// FinalizeAccepted repairs such users.
func (s *Service) Accept(ctx context.Context, token string) (*AcceptResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}

	user, err := s.store.Users().GetByInvitationToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.InvitationAcceptsTotal.WithLabelValues("invalid_token").Inc()
			return nil, ErrInvalidToken
		}
		metrics.InvitationAcceptsTotal.WithLabelValues("accept_failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrAcceptFailed, err)
	}

	if user.IsInvitationAccepted() {
		metrics.InvitationAcceptsTotal.WithLabelValues("already_accepted").Inc()
		return nil, ErrAlreadyAccepted
	}

	changed, err := s.store.Users().MarkInvitationAccepted(ctx, user.ID, s.now())
	if err != nil {
		metrics.InvitationAcceptsTotal.WithLabelValues("accept_failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrAcceptFailed, err)
	}
	if !changed {
		metrics.InvitationAcceptsTotal.WithLabelValues("already_accepted").Inc()
		return nil, ErrAlreadyAccepted
	}

	rows, err := s.store.OKRs().FinalizeForUser(ctx, user.ID)
	if err != nil {
		metrics.InvitationAcceptsTotal.WithLabelValues("finalize_failed").Inc()
		log.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("Invitation accepted but OKRs were not finalized")
		return nil, fmt.Errorf("%w: %v", ErrFinalizeFailed, err)
	}

	metrics.InvitationAcceptsTotal.WithLabelValues("success").Inc()
	_ = s.auditor.LogInvitationAccepted(ctx, user.ID, TokenSource(token), rows)

	return &AcceptResult{Success: true, Message: MsgAccepted, FinalizedRows: rows}, nil
}

// UpdateDraft replaces the objectives of the user's draft plan. Finalized
// plans are never touched; a user without a draft gets a successful no-op.
func (s *Service) UpdateDraft(ctx context.Context, userID string, okrs []domain.Objective) (*UpdateDraftResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if err := validation.ValidateObjectives(okrs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOKRs, err)
	}
	if okrs == nil {
		okrs = []domain.Objective{}
	}

	rows, err := s.store.OKRs().UpdateDraftOKRs(ctx, userID, okrs)
	if err != nil {
		return nil, fmt.Errorf("failed to update draft OKRs: %w", err)
	}
	if rows == 0 {
		log.Debug().Str("user_id", userID).Msg("No draft plan to update")
	}

	_ = s.auditor.LogDraftUpdated(ctx, userID, len(okrs), rows)

	return &UpdateDraftResult{Success: true, Message: MsgDraftUpdated, RowsAffected: rows}, nil
}

// UpdateDraftByToken resolves the pending invitee holding token and updates
// their draft plan.
func (s *Service) UpdateDraftByToken(ctx context.Context, token string, okrs []domain.Objective) (*UpdateDraftResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}

	user, err := s.pendingInvitee(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.UpdateDraft(ctx, user.ID, okrs)
}

// Create registers an invitee with a fresh token and a draft plan.
func (s *Service) Create(ctx context.Context, params CreateParams) (*CreateResult, error) {
	email := validation.NormalizeEmail(params.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateObjectives(params.OKRs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOKRs, err)
	}

	var websiteURL *string
	if strings.TrimSpace(params.WebsiteURL) != "" {
		normalized, err := validation.NormalizeWebsiteURL(params.WebsiteURL)
		if err != nil {
			return nil, err
		}
		websiteURL = &normalized
	}

	var inviter *string
	if params.InviterID != "" {
		if _, err := s.store.Users().GetByID(ctx, params.InviterID); err != nil {
			return nil, fmt.Errorf("failed to load inviter: %w", err)
		}
		inviter = &params.InviterID
	}

	now := s.now()
	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	var user domain.User
	var token string
	created := false
	for attempt := 0; attempt < 3; attempt++ {
		var err error
		token, err = GenerateToken()
		if err != nil {
			return nil, err
		}

		user = domain.User{
			ID:               uuid.NewString(),
			Email:            email,
			Name:             name,
			Role:             strings.TrimSpace(params.Role),
			InvitationToken:  &token,
			InvitationSentAt: &now,
			InvitedBy:        inviter,
			ReminderSettings: domain.DefaultReminderSettings(),
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		err = s.store.Users().Create(ctx, user)
		if err == nil {
			created = true
			break
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			// Token or id collision; retry with fresh values.
			continue
		}
		return nil, fmt.Errorf("failed to create invitee: %w", err)
	}
	if !created {
		return nil, fmt.Errorf("failed to create invitee: token collision retry exhausted")
	}

	okrs := params.OKRs
	if okrs == nil {
		okrs = []domain.Objective{}
	}
	okr, err := s.store.OKRs().Create(ctx, domain.OKRGeneration{
		UserID:             user.ID,
		WebsiteURL:         websiteURL,
		CompanyName:        params.CompanyName,
		PlanningPeriod:     params.PlanningPeriod,
		StrategicNarrative: params.StrategicNarrative,
		OKRs:               okrs,
		IsDraft:            true,
		CreatedAt:          now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create draft OKRs: %w", err)
	}

	_ = s.auditor.LogInvitationCreated(ctx, params.InviterID, user.ID, email)

	return &CreateResult{User: user, OKR: okr, Token: token}, nil
}

// FinalizeAccepted finalizes the draft rows of a user whose invitation was
// accepted. It repairs users left with a draft after a failed Accept.
func (s *Service) FinalizeAccepted(ctx context.Context, userID string) (int64, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsInvitationAccepted() {
		return 0, ErrNotAccepted
	}

	rows, err := s.store.OKRs().FinalizeForUser(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFinalizeFailed, err)
	}
	if rows > 0 {
		_ = s.auditor.LogOKRsFinalized(ctx, user.ID, rows)
	}
	return rows, nil
}

func (s *Service) pendingInvitee(ctx context.Context, token string) (domain.User, error) {
	user, err := s.store.Users().GetByInvitationToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("failed to load invitee: %w", err)
	}
	if user.IsInvitationAccepted() {
		return domain.User{}, ErrNotFound
	}
	return user, nil
}
