package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
	"github.com/MartinT518/MomentumTracker-sub004/internal/repository"
	"github.com/jackc/pgx/v5"
	stripe "github.com/stripe/stripe-go/v76"
)

type stubGateway struct {
	customerID     string
	subscription   *stripe.Subscription
	createCustErr  error
	createSubErr   error
	cancelErr      error
	cancelledSubID string
}

func (g *stubGateway) CreateCustomer(_ context.Context, _ string) (string, error) {
	return g.customerID, g.createCustErr
}

func (g *stubGateway) CreateSubscription(_ context.Context, _, _ string) (*stripe.Subscription, error) {
	return g.subscription, g.createSubErr
}

func (g *stubGateway) CancelSubscription(_ context.Context, subscriptionID string) error {
	g.cancelledSubID = subscriptionID
	return g.cancelErr
}

func (g *stubGateway) CreatePaymentIntent(_ context.Context, _ int64, _ string, _ map[string]string) (*stripe.PaymentIntent, error) {
	return nil, errors.New("not used")
}

type stubBillingUserStore struct {
	user          *models.User
	customerUser  *models.User
	setCustomerID string
	lastUpdate    repository.SubscriptionUpdate
	lastUpdateID  int64
}

func (s *stubBillingUserStore) GetByID(_ context.Context, _ int64) (*models.User, error) {
	if s.user == nil {
		return nil, pgx.ErrNoRows
	}
	return s.user, nil
}

func (s *stubBillingUserStore) GetByStripeCustomerID(_ context.Context, _ string) (*models.User, error) {
	if s.customerUser == nil {
		return nil, pgx.ErrNoRows
	}
	return s.customerUser, nil
}

func (s *stubBillingUserStore) SetStripeCustomerID(_ context.Context, _ int64, customerID string) error {
	s.setCustomerID = customerID
	return nil
}

func (s *stubBillingUserStore) UpdateSubscription(_ context.Context, userID int64, update repository.SubscriptionUpdate) (*models.User, error) {
	s.lastUpdateID = userID
	s.lastUpdate = update
	return s.user, nil
}

type stubBillingPaymentStore struct {
	payment     *models.Payment
	lastNext    string
	lastCurrent string
}

func (s *stubBillingPaymentStore) GetByPaymentIntentID(_ context.Context, _ string) (*models.Payment, error) {
	if s.payment == nil {
		return nil, pgx.ErrNoRows
	}
	return s.payment, nil
}

func (s *stubBillingPaymentStore) UpdateStatusIfCurrent(_ context.Context, _ int64, currentStatus, nextStatus string) (*models.Payment, error) {
	s.lastCurrent = currentStatus
	s.lastNext = nextStatus
	return s.payment, nil
}

func newBillingServiceForTest(gateway PaymentGateway, users *stubBillingUserStore, payments *stubBillingPaymentStore) *BillingService {
	return NewBillingService(gateway, users, payments, nil, "price_monthly", "price_annual")
}

func TestStartSubscriptionCreatesCustomerAndSubscription(t *testing.T) {
	users := &stubBillingUserStore{
		user: &models.User{ID: 1, Email: "runner@example.com", SubscriptionTier: models.TierFree},
	}
	gateway := &stubGateway{
		customerID: "cus_123",
		subscription: &stripe.Subscription{
			ID: "sub_123",
			LatestInvoice: &stripe.Invoice{
				PaymentIntent: &stripe.PaymentIntent{ClientSecret: "pi_secret"},
			},
		},
	}
	service := newBillingServiceForTest(gateway, users, &stubBillingPaymentStore{})

	checkout, err := service.StartSubscription(context.Background(), 1, models.TierPremiumMonthly)
	if err != nil {
		t.Fatalf("StartSubscription: %v", err)
	}

	if checkout.SubscriptionID != "sub_123" {
		t.Errorf("expected subscription sub_123, got %s", checkout.SubscriptionID)
	}
	if checkout.ClientSecret != "pi_secret" {
		t.Errorf("expected client secret, got %q", checkout.ClientSecret)
	}
	if users.setCustomerID != "cus_123" {
		t.Errorf("expected stored customer cus_123, got %q", users.setCustomerID)
	}
	if users.lastUpdate.Tier != models.TierPremiumMonthly {
		t.Errorf("expected cached tier premium_monthly, got %s", users.lastUpdate.Tier)
	}
	if users.lastUpdate.Status != models.SubscriptionStatusNone {
		t.Errorf("expected status none until the webhook confirms, got %s", users.lastUpdate.Status)
	}
}

func TestStartSubscriptionRejectsUnknownTier(t *testing.T) {
	service := newBillingServiceForTest(&stubGateway{}, &stubBillingUserStore{}, &stubBillingPaymentStore{})

	_, err := service.StartSubscription(context.Background(), 1, "platinum")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStartSubscriptionRejectsActivePremium(t *testing.T) {
	users := &stubBillingUserStore{
		user: &models.User{
			ID:                 1,
			SubscriptionTier:   models.TierPremiumMonthly,
			SubscriptionStatus: models.SubscriptionStatusActive,
		},
	}
	service := newBillingServiceForTest(&stubGateway{}, users, &stubBillingPaymentStore{})

	_, err := service.StartSubscription(context.Background(), 1, models.TierPremiumAnnual)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestStartSubscriptionWithoutGateway(t *testing.T) {
	service := newBillingServiceForTest(nil, &stubBillingUserStore{}, &stubBillingPaymentStore{})

	_, err := service.StartSubscription(context.Background(), 1, models.TierPremiumMonthly)
	if !errors.Is(err, ErrBillingUnavailable) {
		t.Fatalf("expected ErrBillingUnavailable, got %v", err)
	}
}

func TestApplyEventActivatesSubscription(t *testing.T) {
	users := &stubBillingUserStore{
		customerUser: &models.User{ID: 7, SubscriptionTier: models.TierFree},
		user:         &models.User{ID: 7},
	}
	service := newBillingServiceForTest(&stubGateway{}, users, &stubBillingPaymentStore{})

	raw := json.RawMessage(`{
		"id": "sub_9",
		"customer": {"id": "cus_9"},
		"status": "active",
		"items": {"data": [{"price": {"id": "price_annual"}}]}
	}`)
	event := stripe.Event{Type: "customer.subscription.updated", Data: &stripe.EventData{Raw: raw}}

	if err := service.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}

	if users.lastUpdateID != 7 {
		t.Fatalf("expected update for user 7, got %d", users.lastUpdateID)
	}
	if users.lastUpdate.Tier != models.TierPremiumAnnual {
		t.Errorf("expected tier premium_annual, got %s", users.lastUpdate.Tier)
	}
	if users.lastUpdate.Status != models.SubscriptionStatusActive {
		t.Errorf("expected status active, got %s", users.lastUpdate.Status)
	}
	if users.lastUpdate.StripeSubscriptionID == nil || *users.lastUpdate.StripeSubscriptionID != "sub_9" {
		t.Errorf("expected cached subscription id sub_9")
	}
}

func TestApplyEventDeletedSubscriptionDowngrades(t *testing.T) {
	users := &stubBillingUserStore{
		customerUser: &models.User{ID: 7, SubscriptionTier: models.TierPremiumMonthly},
		user:         &models.User{ID: 7},
	}
	service := newBillingServiceForTest(&stubGateway{}, users, &stubBillingPaymentStore{})

	raw := json.RawMessage(`{"id": "sub_9", "customer": {"id": "cus_9"}}`)
	event := stripe.Event{Type: "customer.subscription.deleted", Data: &stripe.EventData{Raw: raw}}

	if err := service.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}

	if users.lastUpdate.Tier != models.TierFree {
		t.Errorf("expected downgrade to free, got %s", users.lastUpdate.Tier)
	}
	if users.lastUpdate.Status != models.SubscriptionStatusCanceled {
		t.Errorf("expected status canceled, got %s", users.lastUpdate.Status)
	}
}

func TestApplyEventUnknownCustomerIsIgnored(t *testing.T) {
	service := newBillingServiceForTest(&stubGateway{}, &stubBillingUserStore{}, &stubBillingPaymentStore{})

	raw := json.RawMessage(`{"id": "sub_9", "customer": {"id": "cus_unknown"}, "status": "active"}`)
	event := stripe.Event{Type: "customer.subscription.updated", Data: &stripe.EventData{Raw: raw}}

	if err := service.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("expected unknown customer to be ignored, got %v", err)
	}
}

func TestApplyEventSettlesSessionPayment(t *testing.T) {
	payments := &stubBillingPaymentStore{
		payment: &models.Payment{ID: 3, Status: models.PaymentStatusPending},
	}
	service := newBillingServiceForTest(&stubGateway{}, &stubBillingUserStore{}, payments)

	raw := json.RawMessage(`{"id": "pi_55"}`)
	event := stripe.Event{Type: "payment_intent.succeeded", Data: &stripe.EventData{Raw: raw}}

	if err := service.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("ApplyEvent: %v", err)
	}

	if payments.lastCurrent != models.PaymentStatusPending || payments.lastNext != models.PaymentStatusSucceeded {
		t.Fatalf("expected pending -> succeeded transition, got %s -> %s", payments.lastCurrent, payments.lastNext)
	}
}

func TestApplyEventIgnoresUnknownTypes(t *testing.T) {
	service := newBillingServiceForTest(&stubGateway{}, &stubBillingUserStore{}, &stubBillingPaymentStore{})

	event := stripe.Event{Type: "charge.refunded", Data: &stripe.EventData{Raw: json.RawMessage(`{}`)}}
	if err := service.ApplyEvent(context.Background(), event); err != nil {
		t.Fatalf("expected unknown event type to be ignored, got %v", err)
	}
}

func TestCancelSubscriptionRequiresExistingSubscription(t *testing.T) {
	users := &stubBillingUserStore{user: &models.User{ID: 1}}
	service := newBillingServiceForTest(&stubGateway{}, users, &stubBillingPaymentStore{})

	_, err := service.CancelSubscription(context.Background(), 1)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCancelSubscriptionCallsGatewayAndDowngrades(t *testing.T) {
	subID := "sub_42"
	users := &stubBillingUserStore{
		user: &models.User{ID: 1, StripeSubscriptionID: &subID},
	}
	gateway := &stubGateway{}
	service := newBillingServiceForTest(gateway, users, &stubBillingPaymentStore{})

	if _, err := service.CancelSubscription(context.Background(), 1); err != nil {
		t.Fatalf("CancelSubscription: %v", err)
	}

	if gateway.cancelledSubID != "sub_42" {
		t.Errorf("expected gateway cancel of sub_42, got %q", gateway.cancelledSubID)
	}
	if users.lastUpdate.Tier != models.TierFree || users.lastUpdate.Status != models.SubscriptionStatusCanceled {
		t.Errorf("expected free/canceled cache, got %s/%s", users.lastUpdate.Tier, users.lastUpdate.Status)
	}
}
