package services

import (
	"context"
	"errors"
	"testing"
)

func TestPayForSessionWithoutGateway(t *testing.T) {
	service := &SessionService{}

	intent, err := service.PayForSession(context.Background(), 42, 7)
	if !errors.Is(err, ErrBillingUnavailable) {
		t.Fatalf("expected ErrBillingUnavailable, got %v", err)
	}
	if intent != nil {
		t.Fatalf("expected no payment intent, got %+v", intent)
	}
}
