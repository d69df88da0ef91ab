// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package payment

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/sec"
)

// # Gateway Contract

// IntentResult is the transport-ready outcome of creating a payment intent.
type IntentResult struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// SubscriptionResult is the outcome of creating a subscription.
type SubscriptionResult struct {
	ID               string    `json:"id"`
	Status           string    `json:"status"`
	ClientSecret     string    `json:"client_secret,omitempty"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
}

// Event is a gateway webhook notification reduced to the fields the
// service acts on. Converting here keeps SDK types out of the service.
type Event struct {
	Type             string
	CustomerID       string
	SubscriptionID   string
	PriceID          string
	Status           string
	CurrentPeriodEnd time.Time
}

// Gateway is the payment-provider abstraction the service talks to.
type Gateway interface {
	// CreateCustomer provisions a gateway customer for the account.
	CreateCustomer(ctx context.Context, email, name, userID string) (string, error)

	// CreateIntent opens a one-off payment intent for the customer.
	CreateIntent(ctx context.Context, customerID string, amountCents int64, currency string) (*IntentResult, error)

	// CreateSubscription starts a recurring subscription on the given price.
	CreateSubscription(ctx context.Context, customerID, priceID string) (*SubscriptionResult, error)

	// CancelSubscription cancels at period end.
	CancelSubscription(ctx context.Context, subscriptionID string) error

	// ParseEvent verifies a webhook signature and decodes the notification.
	ParseEvent(payload []byte, signature string) (*Event, error)
}

// # Stripe Adapter

// StripeGateway implements Gateway on the Stripe SDK.
type StripeGateway struct {
	webhookSecret string
}

// NewStripeGateway configures the process-wide Stripe client key and
// returns the adapter. The SDK holds the key globally; constructing two
// gateways with different keys is not supported.
func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret}
}

// CreateCustomer provisions a gateway customer for the account.
func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.AddMetadata("user_id", userID)

	created, err := customer.New(params)
	if err != nil {
		return "", WrapStripeError(err)
	}
	return created.ID, nil
}

// CreateIntent opens a one-off payment intent for the customer.
func (g *StripeGateway) CreateIntent(ctx context.Context, customerID string, amountCents int64, currency string) (*IntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Customer: stripe.String(customerID),
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, WrapStripeError(err)
	}

	return &IntentResult{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

// CreateSubscription starts a recurring subscription on the given price.
// The subscription is created incomplete; the client confirms the first
// invoice's payment intent with the returned client secret.
func (g *StripeGateway) CreateSubscription(ctx context.Context, customerID, priceID string) (*SubscriptionResult, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.AddExpand("latest_invoice.payment_intent")

	created, err := subscription.New(params)
	if err != nil {
		return nil, WrapStripeError(err)
	}

	result := &SubscriptionResult{
		ID:               created.ID,
		Status:           string(created.Status),
		CurrentPeriodEnd: time.Unix(created.CurrentPeriodEnd, 0),
	}
	if created.LatestInvoice != nil && created.LatestInvoice.PaymentIntent != nil {
		result.ClientSecret = created.LatestInvoice.PaymentIntent.ClientSecret
	}

	return result, nil
}

// CancelSubscription cancels at period end, so paid time is not forfeited.
func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	if _, err := subscription.Update(subscriptionID, params); err != nil {
		return WrapStripeError(err)
	}
	return nil
}

// ParseEvent verifies a webhook signature and decodes the notification.
func (g *StripeGateway) ParseEvent(payload []byte, signature string) (*Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid webhook signature")
	}

	event := &Event{Type: string(stripeEvent.Type)}

	switch {
	case stripeEvent.Type == "customer.subscription.created",
		stripeEvent.Type == "customer.subscription.updated",
		stripeEvent.Type == "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := sub.UnmarshalJSON(stripeEvent.Data.Raw); err != nil {
			return nil, fmt.Errorf("stripe_webhook_decode_failed: %w", err)
		}
		event.SubscriptionID = sub.ID
		event.Status = string(sub.Status)
		event.CurrentPeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0)
		if sub.Customer != nil {
			event.CustomerID = sub.Customer.ID
		}
		if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
			event.PriceID = sub.Items.Data[0].Price.ID
		}

	case stripeEvent.Type == "payment_intent.succeeded",
		stripeEvent.Type == "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := intent.UnmarshalJSON(stripeEvent.Data.Raw); err != nil {
			return nil, fmt.Errorf("stripe_webhook_decode_failed: %w", err)
		}
		event.SubscriptionID = intent.ID
		event.Status = string(intent.Status)
		if intent.Customer != nil {
			event.CustomerID = intent.Customer.ID
		}
	}

	return event, nil
}

// # Error Classification

/*
WrapStripeError converts a Stripe SDK failure into a classified AppError.

Classification by gateway error subtype:
  - Card declined      → 400: gateway message when present, generic otherwise
  - Rate limited       → 429
  - Invalid request    → 400 generic
  - Gateway internal   → 500 (non-operational)
  - Connectivity       → 503
  - Authentication     → 401
  - Unrecognized       → 400 "Payment processing error"
*/
func WrapStripeError(err error) error {
	if err == nil {
		return nil
	}

	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return apperr.Unavailable("Payment service is temporarily unavailable")
		}
		return apperr.Internal(err)
	}

	switch {
	case stripeErr.Type == stripe.ErrorTypeCard:
		message := stripeErr.Msg
		if message == "" {
			message = "Your card was declined"
		}
		declined := apperr.BadRequest(message)
		declined.Code = "CARD_DECLINED"
		return declined

	case stripeErr.HTTPStatusCode == http.StatusTooManyRequests:
		return apperr.RateLimited(1)

	case stripeErr.HTTPStatusCode == http.StatusUnauthorized:
		return apperr.Unauthorized("Payment authentication failed")

	case stripeErr.Type == stripe.ErrorTypeInvalidRequest:
		return apperr.BadRequest("Invalid payment request")

	case stripeErr.Type == stripe.ErrorTypeAPI:
		return apperr.Internal(stripeErr)

	default:
		return apperr.BadRequest("Payment processing error")
	}
}

// MapSubscriptionStatus translates a gateway subscription status into the
// platform's lifecycle states.
func MapSubscriptionStatus(gatewayStatus string) sec.SubscriptionStatus {
	switch gatewayStatus {
	case "active", "trialing":
		return sec.StatusActive
	case "canceled":
		return sec.StatusCancelled
	case "incomplete", "incomplete_expired":
		return sec.StatusPending
	default:
		return sec.StatusInactive
	}
}
