// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package payment implements one-off payments and subscription billing.

It fronts the Stripe gateway behind a narrow [Gateway] contract and records
every money movement locally so the platform can answer billing questions
without a gateway round-trip.

# Architecture

  - Gateway: Stripe adapter converting SDK failures into classified errors.
  - Service: Customer provisioning, intents, subscriptions, webhook sync.
  - Storage: Postgres payment records keyed by gateway object IDs.
*/
package payment

import (
	"context"
	"time"

	"github.com/colorpro/colorpro/internal/platform/sec"
	"github.com/colorpro/colorpro/pkg/pagination"
)

// # Domain Entities

// Kind distinguishes the two money movements the platform performs.
type Kind string

const (
	KindIntent       Kind = "intent"       // One-off payment intent.
	KindSubscription Kind = "subscription" // Recurring tier subscription.
)

// Payment is one recorded money movement.
type Payment struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Kind         Kind      `json:"kind"`
	StripeID     string    `json:"-"` // Gateway object ID (pi_... or sub_...).
	AmountCents  int64     `json:"amount_cents"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	Tier         sec.Tier  `json:"tier,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldAmount   = "amount_cents"
	FieldCurrency = "currency"
	FieldTier     = "tier"
)

// # Repository Contract

// Repository defines the persistence contract for payment records.
type Repository interface {

	/*
		Create persists a new payment record.

		Parameters:
		  - context: context.Context
		  - record: *Payment

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, record *Payment) error

	/*
		FindByStripeID returns the record tracking a gateway object.

		Parameters:
		  - context: context.Context
		  - stripeID: string

		Returns:
		  - *Payment: Hydrated record
		  - error: Retrieval failures
	*/
	FindByStripeID(context context.Context, stripeID string) (*Payment, error)

	/*
		ListByUser returns a page of the user's payments, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - params: pagination.Params

		Returns:
		  - []*Payment: Page of records
		  - int: Total record count
		  - error: Retrieval failures
	*/
	ListByUser(context context.Context, userID string, params pagination.Params) ([]*Payment, int, error)

	/*
		ListRecent returns a page of payments across all users, newest first.
		Serves the admin billing overview.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []*Payment: Page of records
		  - int: Total record count
		  - error: Retrieval failures
	*/
	ListRecent(context context.Context, params pagination.Params) ([]*Payment, int, error)

	/*
		UpdateStatus records a status transition reported by the gateway.

		Parameters:
		  - context: context.Context
		  - stripeID: string
		  - status: string

		Returns:
		  - error: Persistence failures
	*/
	UpdateStatus(context context.Context, stripeID, status string) error
}

// UserDirectory is the slice of the user store the billing flows need.
// The auth package's Postgres repository satisfies it.
type UserDirectory interface {

	// FindByStripeCustomer resolves the account owning a gateway customer.
	FindByStripeCustomer(context context.Context, customerID string) (userID string, err error)

	// StripeCustomerID returns the account's gateway customer handle,
	// empty when none has been provisioned yet.
	StripeCustomerID(context context.Context, userID string) (string, error)

	// UpdateStripeCustomer stores the gateway customer handle on the account.
	UpdateStripeCustomer(context context.Context, userID, customerID string) error

	// CurrentSubscription reads the account's stored subscription state,
	// nil when the account has never subscribed.
	CurrentSubscription(context context.Context, userID string) (*sec.Subscription, error)

	// UpdateSubscription replaces the account's subscription state.
	UpdateSubscription(context context.Context, userID string, subscription *sec.Subscription) error
}
