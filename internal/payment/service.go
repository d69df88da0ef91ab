// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package payment

import (
	"context"
	"time"

	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/ctxutil"
	"github.com/colorpro/colorpro/internal/platform/sec"
	"github.com/colorpro/colorpro/pkg/pagination"
	"github.com/colorpro/colorpro/pkg/uuid"
)

// # Service Layer

// Service orchestrates billing flows against the payment gateway.
type Service struct {
	repository Repository
	users      UserDirectory
	gateway    Gateway
	tierPrices map[sec.Tier]string
	priceTiers map[string]sec.Tier
}

// NewService constructs a new [Service].
//
// Parameters:
//   - repository: Payment record persistence
//   - users: Slice of the user store the billing flows need
//   - gateway: Payment-provider adapter
//   - tierPrices: Gateway price ID per subscription tier
func NewService(repository Repository, users UserDirectory, gateway Gateway, tierPrices map[sec.Tier]string) *Service {
	priceTiers := make(map[string]sec.Tier, len(tierPrices))
	for tier, priceID := range tierPrices {
		priceTiers[priceID] = tier
	}

	return &Service{
		repository: repository,
		users:      users,
		gateway:    gateway,
		tierPrices: tierPrices,
		priceTiers: priceTiers,
	}
}

// ensureCustomer returns the principal's gateway customer ID, provisioning
// one on first use.
func (service *Service) ensureCustomer(context context.Context, principal *sec.Principal) (string, error) {
	existingCustomerID, err := service.users.StripeCustomerID(context, principal.UserID)
	if err != nil {
		return "", err
	}
	if existingCustomerID != "" {
		return existingCustomerID, nil
	}

	customerID, err := service.gateway.CreateCustomer(context, principal.Email, principal.Name, principal.UserID)
	if err != nil {
		return "", err
	}

	if err := service.users.UpdateStripeCustomer(context, principal.UserID, customerID); err != nil {
		return "", err
	}

	return customerID, nil
}

// # One-off Payments

/*
CreateIntent opens a one-off payment intent for the principal.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - amountCents: int64
  - currency: string (ISO 4217, lowercase)

Returns:
  - *IntentResult: Client-secret payload for confirmation
  - error: Classified gateway or persistence failures
*/
func (service *Service) CreateIntent(context context.Context, principal *sec.Principal, amountCents int64, currency string) (*IntentResult, error) {
	gatewayCustomer, err := service.ensureCustomer(context, principal)
	if err != nil {
		return nil, err
	}

	intent, err := service.gateway.CreateIntent(context, gatewayCustomer, amountCents, currency)
	if err != nil {
		return nil, err
	}

	record := &Payment{
		ID:          uuid.New(),
		UserID:      principal.UserID,
		Kind:        KindIntent,
		StripeID:    intent.ID,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      intent.Status,
	}
	if err := service.repository.Create(context, record); err != nil {
		return nil, err
	}

	return intent, nil
}

// # Subscriptions

/*
Subscribe starts a recurring subscription on the requested tier.

Description: Creates the gateway subscription in the incomplete state and
marks the account's subscription pending; the webhook flow flips it active
once the first invoice settles.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - tier: sec.Tier

Returns:
  - *SubscriptionResult: Subscription ID and confirmation client secret
  - error: BadRequest for unknown tiers, classified gateway failures
*/
func (service *Service) Subscribe(context context.Context, principal *sec.Principal, tier sec.Tier) (*SubscriptionResult, error) {
	priceID, ok := service.tierPrices[tier]
	if !ok || priceID == "" {
		return nil, apperr.BadRequest("Unknown subscription tier")
	}

	gatewayCustomer, err := service.ensureCustomer(context, principal)
	if err != nil {
		return nil, err
	}

	result, err := service.gateway.CreateSubscription(context, gatewayCustomer, priceID)
	if err != nil {
		return nil, err
	}

	record := &Payment{
		ID:       uuid.New(),
		UserID:   principal.UserID,
		Kind:     KindSubscription,
		StripeID: result.ID,
		Currency: "usd",
		Status:   result.Status,
		Tier:     tier,
	}
	if err := service.repository.Create(context, record); err != nil {
		return nil, err
	}

	subscription := &sec.Subscription{
		Tier:             tier,
		Status:           MapSubscriptionStatus(result.Status),
		CurrentPeriodEnd: result.CurrentPeriodEnd,
	}
	if err := service.users.UpdateSubscription(context, principal.UserID, subscription); err != nil {
		return nil, err
	}

	return result, nil
}

/*
ListPayments returns a page of the principal's payment records.

Parameters:
  - context: context.Context
  - userID: string
  - params: pagination.Params

Returns:
  - []*Payment: Page of records
  - pagination.Meta: Paging metadata
  - error: Retrieval failures
*/
func (service *Service) ListPayments(context context.Context, userID string, params pagination.Params) ([]*Payment, pagination.Meta, error) {
	records, total, err := service.repository.ListByUser(context, userID, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return records, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// ListRecentPayments returns a cross-user page of payments for the admin
// billing overview. Authorization happens at the route gate, not here.
func (service *Service) ListRecentPayments(context context.Context, params pagination.Params) ([]*Payment, pagination.Meta, error) {
	records, total, err := service.repository.ListRecent(context, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return records, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// # Webhook Synchronization

/*
HandleWebhook applies a verified gateway notification to local state.

Description: Subscription lifecycle events update both the payment record
and the owning account's subscription columns. Unrecognized event types
are acknowledged and ignored so the gateway does not retry them.

Parameters:
  - context: context.Context
  - payload: []byte (raw request body)
  - signature: string (Stripe-Signature header)

Returns:
  - error: Unauthorized on bad signature, persistence failures otherwise
*/
func (service *Service) HandleWebhook(context context.Context, payload []byte, signature string) error {
	event, err := service.gateway.ParseEvent(payload, signature)
	if err != nil {
		return err
	}

	logger := ctxutil.GetLogger(context)

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		return service.syncSubscription(context, event)

	case "payment_intent.succeeded", "payment_intent.payment_failed":
		if err := service.repository.UpdateStatus(context, event.SubscriptionID, event.Status); err != nil {
			return err
		}
		logger.Info("payment_intent_synced", "intent_id", event.SubscriptionID, "status", event.Status)
		return nil

	default:
		logger.Debug("webhook_event_ignored", "type", event.Type)
		return nil
	}
}

// syncSubscription mirrors a gateway subscription state onto the account.
func (service *Service) syncSubscription(context context.Context, event *Event) error {
	userID, err := service.users.FindByStripeCustomer(context, event.CustomerID)
	if err != nil {
		// The customer may belong to another environment sharing the
		// gateway account. Acknowledge rather than force a retry loop.
		ctxutil.GetLogger(context).Warn("webhook_customer_unmatched", "customer_id", event.CustomerID)
		return nil
	}

	if err := service.repository.UpdateStatus(context, event.SubscriptionID, event.Status); err != nil {
		ctxutil.GetLogger(context).Warn("webhook_record_update_failed",
			"subscription_id", event.SubscriptionID, "error", err)
	}

	if event.Type == "customer.subscription.deleted" {
		// Deletion events may carry a price the config no longer maps;
		// keep the tier the account already holds rather than blanking it.
		tier, ok := service.priceTiers[event.PriceID]
		if !ok {
			if current, err := service.users.CurrentSubscription(context, userID); err == nil && current != nil {
				tier = current.Tier
			}
		}
		return service.users.UpdateSubscription(context, userID, &sec.Subscription{
			Tier:             tier,
			Status:           sec.StatusCancelled,
			CurrentPeriodEnd: event.CurrentPeriodEnd,
		})
	}

	tier, ok := service.priceTiers[event.PriceID]
	if !ok {
		ctxutil.GetLogger(context).Warn("webhook_price_unmatched", "price_id", event.PriceID)
		return nil
	}

	subscription := &sec.Subscription{
		Tier:             tier,
		Status:           MapSubscriptionStatus(event.Status),
		CurrentPeriodEnd: event.CurrentPeriodEnd,
	}

	if err := service.users.UpdateSubscription(context, userID, subscription); err != nil {
		return err
	}

	ctxutil.GetLogger(context).Info("subscription_synced",
		"user_id", userID,
		"tier", tier,
		"status", subscription.Status,
		"period_end", subscription.CurrentPeriodEnd.Format(time.RFC3339),
	)

	return nil
}
