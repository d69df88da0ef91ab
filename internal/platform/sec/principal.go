// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package sec provides the security primitives for the ColorPro platform.

It isolates security-sensitive code (password hashing, JWT signing and
verification, subscription-tier authorization rules) from the domain logic,
and defines the request-scoped [Principal] attached by the authentication
middleware.

Architecture:

  - Principal: Plain data describing the authenticated identity.
  - Subscription: Plain data; access rules are free functions, never methods
    coupled to a persistence object.
  - TokenService: Infrastructure service injected via interfaces.
*/
package sec

import "time"

// Principal is the authenticated identity attached to a request after a
// successful authentication strategy. It is request-scoped and discarded
// when the response completes.
type Principal struct {
	// UserID is the internal account identifier (UUIDv7).
	UserID string `json:"user_id"`

	// ProviderUID is the identity-provider subject (Firebase UID). Empty for
	// principals established via an internal token only.
	ProviderUID string `json:"provider_uid,omitempty"`

	// Email is the verified account email.
	Email string `json:"email"`

	// Name is the display name of the account.
	Name string `json:"name,omitempty"`

	// IsActive reports whether the account is enabled.
	IsActive bool `json:"is_active"`

	// Subscription is the current subscription state, nil when the account
	// has never subscribed.
	Subscription *Subscription `json:"subscription,omitempty"`
}

// Subscription is the plain subscription state read from the user record.
type Subscription struct {
	Tier             Tier               `json:"tier"`
	Status           SubscriptionStatus `json:"status"`
	CurrentPeriodEnd time.Time          `json:"current_period_end"`
}

// SubscriptionStatus enumerates the lifecycle states a subscription can be in.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusInactive  SubscriptionStatus = "inactive"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusPending   SubscriptionStatus = "pending"
)

// HasActiveSubscription reports whether the subscription grants access right
// now: the status must be active AND the paid period must not have lapsed.
//
// A nil subscription never grants access.
func HasActiveSubscription(sub *Subscription) bool {
	if sub == nil {
		return false
	}
	return sub.Status == StatusActive && sub.CurrentPeriodEnd.After(time.Now())
}
