package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/MartinT518/MomentumTracker-sub004/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type coachProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.CoachProfile, error)
}

type SessionService struct {
	db               *pgxpool.Pool
	sessionRepo      *repository.SessionRepository
	paymentRepo      *repository.PaymentRepository
	userRepo         userReader
	coachProfileRepo coachProfileReader
	gateway          PaymentGateway
}

func NewSessionService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	paymentRepo *repository.PaymentRepository,
	userRepo userReader,
	coachProfileRepo coachProfileReader,
	gateway PaymentGateway,
) *SessionService {
	return &SessionService{
		db:               db,
		sessionRepo:      sessionRepo,
		paymentRepo:      paymentRepo,
		userRepo:         userRepo,
		coachProfileRepo: coachProfileRepo,
		gateway:          gateway,
	}
}

type BookSessionInput struct {
	CoachID         int64
	ScheduledAt     time.Time
	DurationMinutes int
	Notes           *string
}

func (s *SessionService) BookSession(
	ctx context.Context,
	userID int64,
	input BookSessionInput,
) (*models.SessionDetail, error) {
	if input.CoachID <= 0 || input.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	if input.ScheduledAt.Before(time.Now().Add(-1 * time.Minute)) {
		return nil, ErrInvalidInput
	}
	if userID == input.CoachID {
		return nil, ErrInvalidInput
	}

	coach, err := s.userRepo.GetByID(ctx, input.CoachID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	if coach.Role != models.RoleCoach {
		return nil, ErrInvalidInput
	}

	coachProfile, err := s.coachProfileRepo.GetByUserID(ctx, input.CoachID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	if !coachProfile.OnboardingComplete || coachProfile.HourlyRate == nil || *coachProfile.HourlyRate <= 0 {
		return nil, ErrInvalidInput
	}

	amount := *coachProfile.HourlyRate * float64(input.DurationMinutes) / 60

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txPaymentRepo := repository.NewPaymentRepository(tx)

	// Serializes concurrent bookings against the same coach.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.CoachID); err != nil {
		return nil, err
	}

	hasConflict, err := txSessionRepo.HasConflict(ctx, input.CoachID, input.ScheduledAt.UTC(), input.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if hasConflict {
		return nil, ErrConflict
	}

	session, err := txSessionRepo.Create(ctx, repository.CreateSessionInput{
		UserID:          userID,
		CoachID:         input.CoachID,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, err
	}

	payment, err := txPaymentRepo.Create(ctx, repository.CreatePaymentInput{
		SessionID: session.ID,
		UserID:    userID,
		CoachID:   input.CoachID,
		Amount:    amount,
		Status:    models.PaymentStatusPending,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.SessionDetail{
		CoachingSession: *session,
		Payment:         payment,
	}, nil
}

func (s *SessionService) ListSessions(
	ctx context.Context,
	actorID int64,
	role string,
	filter repository.SessionListFilter,
) ([]models.SessionDetail, error) {
	sessions, err := s.sessionRepo.List(ctx, repository.SessionListFilter{
		ActorID:   actorID,
		Role:      role,
		Status:    filter.Status,
		Timeframe: filter.Timeframe,
	})
	if err != nil {
		return nil, err
	}

	sessionIDs := make([]int64, 0, len(sessions))
	for _, session := range sessions {
		sessionIDs = append(sessionIDs, session.ID)
	}

	payments, err := s.paymentRepo.ListBySessionIDs(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	details := make([]models.SessionDetail, 0, len(sessions))
	for _, session := range sessions {
		detail := models.SessionDetail{CoachingSession: session}
		if payment, ok := payments[session.ID]; ok {
			p := payment
			detail.Payment = &p
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *SessionService) GetSession(ctx context.Context, actorID int64, sessionID int64) (*models.SessionDetail, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != actorID && session.CoachID != actorID {
		return nil, ErrForbidden
	}

	detail := &models.SessionDetail{CoachingSession: *session}
	payment, err := s.paymentRepo.GetBySessionID(ctx, sessionID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Payment = payment
	}
	return detail, nil
}

var sessionTransitions = map[string]map[string]bool{
	models.SessionStatusPending: {
		models.SessionStatusConfirmed: true,
		models.SessionStatusCancelled: true,
	},
	models.SessionStatusConfirmed: {
		models.SessionStatusCompleted: true,
		models.SessionStatusCancelled: true,
	},
}

// UpdateStatus applies the session state machine. Coaches confirm and
// complete; either side can cancel while the session is still upcoming.
func (s *SessionService) UpdateStatus(
	ctx context.Context,
	actorID int64,
	role string,
	sessionID int64,
	nextStatus string,
) (*models.CoachingSession, error) {
	switch nextStatus {
	case models.SessionStatusConfirmed, models.SessionStatusCompleted, models.SessionStatusCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)

	session, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	isCoach := role == models.RoleCoach && session.CoachID == actorID
	isOwner := session.UserID == actorID
	if !isCoach && !isOwner {
		return nil, ErrForbidden
	}
	if (nextStatus == models.SessionStatusConfirmed || nextStatus == models.SessionStatusCompleted) && !isCoach {
		return nil, ErrForbidden
	}

	if !sessionTransitions[session.Status][nextStatus] {
		return nil, ErrInvalidStateTransition
	}

	updated, err := txSessionRepo.UpdateStatus(ctx, sessionID, nextStatus)
	if err != nil {
		return nil, err
	}

	if nextStatus == models.SessionStatusCancelled {
		txPaymentRepo := repository.NewPaymentRepository(tx)
		payment, err := txPaymentRepo.GetBySessionIDForUpdate(ctx, sessionID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil && payment.Status == models.PaymentStatusSucceeded {
			if _, err := txPaymentRepo.UpdateStatusIfCurrent(ctx, payment.ID,
				models.PaymentStatusSucceeded, models.PaymentStatusRefunded); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

type SessionPaymentIntent struct {
	Payment      *models.Payment `json:"payment"`
	ClientSecret string          `json:"client_secret,omitempty"`
}

// PayForSession creates a Stripe payment intent for the pending session
// payment.
func (s *SessionService) PayForSession(ctx context.Context, actorID int64, sessionID int64) (*SessionPaymentIntent, error) {
	if s.gateway == nil {
		return nil, ErrBillingUnavailable
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != actorID {
		return nil, ErrForbidden
	}
	if session.Status == models.SessionStatusCancelled {
		return nil, ErrInvalidStateTransition
	}

	payment, err := s.paymentRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, ErrInvalidStateTransition
	}

	amountCents := int64(payment.Amount * 100)
	intent, err := s.gateway.CreatePaymentIntent(ctx, amountCents, "", map[string]string{
		"session_id": strconv.FormatInt(sessionID, 10),
		"payment_id": strconv.FormatInt(payment.ID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	attached, err := s.paymentRepo.AttachPaymentIntent(ctx, payment.ID, intent.ID)
	if err != nil {
		return nil, err
	}

	return &SessionPaymentIntent{
		Payment:      attached,
		ClientSecret: intent.ClientSecret,
	}, nil
}
