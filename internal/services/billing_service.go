package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/MartinT518/MomentumTracker-sub004/internal/repository"
	"github.com/jackc/pgx/v5"
	stripe "github.com/stripe/stripe-go/v76"
)

type billingUserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	SetStripeCustomerID(ctx context.Context, userID int64, customerID string) error
	UpdateSubscription(ctx context.Context, userID int64, update repository.SubscriptionUpdate) (*models.User, error)
}

type billingPaymentStore interface {
	GetByPaymentIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	UpdateStatusIfCurrent(ctx context.Context, paymentID int64, currentStatus, nextStatus string) (*models.Payment, error)
}

// BillingService owns the Stripe side of subscriptions. The webhook is the
// source of truth for tier transitions; the users row only caches the
// current state.
type BillingService struct {
	gateway      PaymentGateway
	userRepo     billingUserStore
	paymentRepo  billingPaymentStore
	planRepo     *repository.SubscriptionPlanRepository
	priceMonthly string
	priceAnnual  string
}

func NewBillingService(
	gateway PaymentGateway,
	userRepo billingUserStore,
	paymentRepo billingPaymentStore,
	planRepo *repository.SubscriptionPlanRepository,
	priceMonthly string,
	priceAnnual string,
) *BillingService {
	return &BillingService{
		gateway:      gateway,
		userRepo:     userRepo,
		paymentRepo:  paymentRepo,
		planRepo:     planRepo,
		priceMonthly: priceMonthly,
		priceAnnual:  priceAnnual,
	}
}

func (s *BillingService) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	return s.planRepo.ListAll(ctx)
}

type SubscriptionCheckout struct {
	SubscriptionID string `json:"subscription_id"`
	ClientSecret   string `json:"client_secret,omitempty"`
	Tier           string `json:"tier"`
}

func (s *BillingService) StartSubscription(ctx context.Context, userID int64, tier string) (*SubscriptionCheckout, error) {
	if s.gateway == nil {
		return nil, ErrBillingUnavailable
	}

	priceID, err := s.priceForTier(tier)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsPremium() {
		return nil, ErrConflict
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	sub, err := s.gateway.CreateSubscription(ctx, customerID, priceID)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	subID := sub.ID
	if _, err := s.userRepo.UpdateSubscription(ctx, userID, repository.SubscriptionUpdate{
		Tier:                 tier,
		Status:               models.SubscriptionStatusNone,
		StripeSubscriptionID: &subID,
	}); err != nil {
		return nil, err
	}

	checkout := &SubscriptionCheckout{SubscriptionID: sub.ID, Tier: tier}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		checkout.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return checkout, nil
}

func (s *BillingService) CancelSubscription(ctx context.Context, userID int64) (*models.User, error) {
	if s.gateway == nil {
		return nil, ErrBillingUnavailable
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.StripeSubscriptionID == nil || *user.StripeSubscriptionID == "" {
		return nil, ErrInvalidInput
	}

	if err := s.gateway.CancelSubscription(ctx, *user.StripeSubscriptionID); err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}

	return s.userRepo.UpdateSubscription(ctx, userID, repository.SubscriptionUpdate{
		Tier:   models.TierFree,
		Status: models.SubscriptionStatusCanceled,
	})
}

// ApplyEvent reacts to a verified Stripe webhook event. Unknown event types
// are ignored so the endpoint can be subscribed broadly.
func (s *BillingService) ApplyEvent(ctx context.Context, event stripe.Event) error {
	switch string(event.Type) {
	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription event: %w", err)
		}
		return s.applySubscription(ctx, &sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription event: %w", err)
		}
		return s.downgrade(ctx, &sub)

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("decode invoice event: %w", err)
		}
		return s.markPastDue(ctx, &invoice)

	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return fmt.Errorf("decode payment intent event: %w", err)
		}
		return s.settleSessionPayment(ctx, &intent)

	default:
		log.Printf("billing: ignoring webhook event %s", event.Type)
		return nil
	}
}

func (s *BillingService) applySubscription(ctx context.Context, sub *stripe.Subscription) error {
	if sub.Customer == nil {
		return fmt.Errorf("subscription %s has no customer", sub.ID)
	}

	user, err := s.userRepo.GetByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("billing: no user for stripe customer %s", sub.Customer.ID)
			return nil
		}
		return err
	}

	tier := s.tierForSubscription(sub)
	status := subscriptionStatus(sub.Status)
	subID := sub.ID

	update := repository.SubscriptionUpdate{
		Tier:                 tier,
		Status:               status,
		StripeSubscriptionID: &subID,
	}
	if status == models.SubscriptionStatusCanceled {
		update.Tier = models.TierFree
		update.StripeSubscriptionID = nil
	}

	_, err = s.userRepo.UpdateSubscription(ctx, user.ID, update)
	return err
}

func (s *BillingService) downgrade(ctx context.Context, sub *stripe.Subscription) error {
	if sub.Customer == nil {
		return nil
	}
	user, err := s.userRepo.GetByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	_, err = s.userRepo.UpdateSubscription(ctx, user.ID, repository.SubscriptionUpdate{
		Tier:   models.TierFree,
		Status: models.SubscriptionStatusCanceled,
	})
	return err
}

func (s *BillingService) markPastDue(ctx context.Context, invoice *stripe.Invoice) error {
	if invoice.Customer == nil {
		return nil
	}
	user, err := s.userRepo.GetByStripeCustomerID(ctx, invoice.Customer.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	_, err = s.userRepo.UpdateSubscription(ctx, user.ID, repository.SubscriptionUpdate{
		Tier:                 user.SubscriptionTier,
		Status:               models.SubscriptionStatusPastDue,
		StripeSubscriptionID: user.StripeSubscriptionID,
	})
	return err
}

func (s *BillingService) settleSessionPayment(ctx context.Context, intent *stripe.PaymentIntent) error {
	payment, err := s.paymentRepo.GetByPaymentIntentID(ctx, intent.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Subscription invoices also raise payment_intent.succeeded.
			return nil
		}
		return err
	}

	_, err = s.paymentRepo.UpdateStatusIfCurrent(ctx, payment.ID, models.PaymentStatusPending, models.PaymentStatusSucceeded)
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

func (s *BillingService) ensureCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}
	customerID, err := s.gateway.CreateCustomer(ctx, user.Email)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	if err := s.userRepo.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
		return "", err
	}
	return customerID, nil
}

func (s *BillingService) priceForTier(tier string) (string, error) {
	switch tier {
	case models.TierPremiumMonthly:
		if s.priceMonthly == "" {
			return "", ErrBillingUnavailable
		}
		return s.priceMonthly, nil
	case models.TierPremiumAnnual:
		if s.priceAnnual == "" {
			return "", ErrBillingUnavailable
		}
		return s.priceAnnual, nil
	default:
		return "", ErrInvalidInput
	}
}

func (s *BillingService) tierForSubscription(sub *stripe.Subscription) string {
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item.Price == nil {
				continue
			}
			switch item.Price.ID {
			case s.priceMonthly:
				return models.TierPremiumMonthly
			case s.priceAnnual:
				return models.TierPremiumAnnual
			}
		}
	}
	return models.TierFree
}

func subscriptionStatus(status stripe.SubscriptionStatus) string {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return models.SubscriptionStatusActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return models.SubscriptionStatusPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return models.SubscriptionStatusCanceled
	default:
		return models.SubscriptionStatusNone
	}
}
