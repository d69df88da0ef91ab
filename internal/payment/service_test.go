// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorpro/colorpro/internal/payment"
	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/sec"
	"github.com/colorpro/colorpro/pkg/pagination"
)

// # Test Fakes

type fakePaymentRepository struct {
	records  map[string]*payment.Payment
	statuses map[string]string
}

func newFakePaymentRepository() *fakePaymentRepository {
	return &fakePaymentRepository{
		records:  make(map[string]*payment.Payment),
		statuses: make(map[string]string),
	}
}

func (r *fakePaymentRepository) Create(_ context.Context, record *payment.Payment) error {
	copied := *record
	r.records[record.StripeID] = &copied
	return nil
}

func (r *fakePaymentRepository) FindByStripeID(_ context.Context, stripeID string) (*payment.Payment, error) {
	record, ok := r.records[stripeID]
	if !ok {
		return nil, apperr.NotFound("Payment")
	}
	copied := *record
	return &copied, nil
}

func (r *fakePaymentRepository) ListByUser(_ context.Context, userID string, _ pagination.Params) ([]*payment.Payment, int, error) {
	var matched []*payment.Payment
	for _, record := range r.records {
		if record.UserID == userID {
			copied := *record
			matched = append(matched, &copied)
		}
	}
	return matched, len(matched), nil
}

func (r *fakePaymentRepository) ListRecent(_ context.Context, _ pagination.Params) ([]*payment.Payment, int, error) {
	var all []*payment.Payment
	for _, record := range r.records {
		copied := *record
		all = append(all, &copied)
	}
	return all, len(all), nil
}

func (r *fakePaymentRepository) UpdateStatus(_ context.Context, stripeID, status string) error {
	r.statuses[stripeID] = status
	if record, ok := r.records[stripeID]; ok {
		record.Status = status
	}
	return nil
}

type fakeUserDirectory struct {
	customers     map[string]string // gateway customer ID -> user ID
	subscriptions map[string]*sec.Subscription
}

func newFakeUserDirectory() *fakeUserDirectory {
	return &fakeUserDirectory{
		customers:     make(map[string]string),
		subscriptions: make(map[string]*sec.Subscription),
	}
}

func (d *fakeUserDirectory) FindByStripeCustomer(_ context.Context, customerID string) (string, error) {
	userID, ok := d.customers[customerID]
	if !ok {
		return "", apperr.NotFound("User")
	}
	return userID, nil
}

func (d *fakeUserDirectory) StripeCustomerID(_ context.Context, userID string) (string, error) {
	for customerID, owner := range d.customers {
		if owner == userID {
			return customerID, nil
		}
	}
	return "", nil
}

func (d *fakeUserDirectory) UpdateStripeCustomer(_ context.Context, userID, customerID string) error {
	d.customers[customerID] = userID
	return nil
}

func (d *fakeUserDirectory) CurrentSubscription(_ context.Context, userID string) (*sec.Subscription, error) {
	subscription, ok := d.subscriptions[userID]
	if !ok {
		return nil, nil
	}
	copied := *subscription
	return &copied, nil
}

func (d *fakeUserDirectory) UpdateSubscription(_ context.Context, userID string, subscription *sec.Subscription) error {
	d.subscriptions[userID] = subscription
	return nil
}

// fakeGateway hands back a canned event so webhook handling can be driven
// without real signatures.
type fakeGateway struct {
	event *payment.Event
	err   error
}

func (g *fakeGateway) CreateCustomer(_ context.Context, _, _, _ string) (string, error) {
	return "cus_test", nil
}

func (g *fakeGateway) CreateIntent(_ context.Context, _ string, _ int64, _ string) (*payment.IntentResult, error) {
	return &payment.IntentResult{ID: "pi_test", ClientSecret: "secret", Status: "requires_payment_method"}, nil
}

func (g *fakeGateway) CreateSubscription(_ context.Context, _, _ string) (*payment.SubscriptionResult, error) {
	return &payment.SubscriptionResult{ID: "sub_test", Status: "active"}, nil
}

func (g *fakeGateway) CancelSubscription(_ context.Context, _ string) error { return nil }

func (g *fakeGateway) ParseEvent(_ []byte, _ string) (*payment.Event, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.event, nil
}

var (
	_ payment.Repository    = (*fakePaymentRepository)(nil)
	_ payment.UserDirectory = (*fakeUserDirectory)(nil)
	_ payment.Gateway       = (*fakeGateway)(nil)
)

// # Fixtures

type webhookFixture struct {
	repository *fakePaymentRepository
	users      *fakeUserDirectory
	gateway    *fakeGateway
	service    *payment.Service
}

func newWebhookFixture(t *testing.T, event *payment.Event) *webhookFixture {
	t.Helper()

	repository := newFakePaymentRepository()
	users := newFakeUserDirectory()
	users.customers["cus_1"] = "user-1"
	gateway := &fakeGateway{event: event}

	tierPrices := map[sec.Tier]string{
		sec.TierSilver: "price_silver",
		sec.TierGold:   "price_gold",
	}

	return &webhookFixture{
		repository: repository,
		users:      users,
		gateway:    gateway,
		service:    payment.NewService(repository, users, gateway, tierPrices),
	}
}

// # Tests

/*
TestHandleWebhook_SubscriptionUpdated verifies a lifecycle event with a
mapped price writes the full subscription state onto the account.
*/
func TestHandleWebhook_SubscriptionUpdated(t *testing.T) {
	periodEnd := time.Now().Add(30 * 24 * time.Hour)
	fixture := newWebhookFixture(t, &payment.Event{
		Type:             "customer.subscription.updated",
		CustomerID:       "cus_1",
		SubscriptionID:   "sub_1",
		PriceID:          "price_gold",
		Status:           "active",
		CurrentPeriodEnd: periodEnd,
	})

	err := fixture.service.HandleWebhook(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)

	subscription := fixture.users.subscriptions["user-1"]
	require.NotNil(t, subscription)
	assert.Equal(t, sec.TierGold, subscription.Tier)
	assert.Equal(t, sec.StatusActive, subscription.Status)
	assert.Equal(t, periodEnd, subscription.CurrentPeriodEnd)
}

/*
TestHandleWebhook_DeletedKeepsTier verifies a deletion event whose price is
no longer in the configuration cancels the subscription without blanking
the tier the account already holds.
*/
func TestHandleWebhook_DeletedKeepsTier(t *testing.T) {
	fixture := newWebhookFixture(t, &payment.Event{
		Type:           "customer.subscription.deleted",
		CustomerID:     "cus_1",
		SubscriptionID: "sub_1",
		PriceID:        "price_retired",
	})
	fixture.users.subscriptions["user-1"] = &sec.Subscription{
		Tier:   sec.TierSilver,
		Status: sec.StatusActive,
	}

	err := fixture.service.HandleWebhook(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)

	subscription := fixture.users.subscriptions["user-1"]
	require.NotNil(t, subscription)
	assert.Equal(t, sec.TierSilver, subscription.Tier)
	assert.Equal(t, sec.StatusCancelled, subscription.Status)
}

/*
TestHandleWebhook_DeletedMappedPrice verifies a deletion event with a
still-configured price resolves the tier from the price mapping.
*/
func TestHandleWebhook_DeletedMappedPrice(t *testing.T) {
	fixture := newWebhookFixture(t, &payment.Event{
		Type:           "customer.subscription.deleted",
		CustomerID:     "cus_1",
		SubscriptionID: "sub_1",
		PriceID:        "price_gold",
	})

	err := fixture.service.HandleWebhook(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)

	subscription := fixture.users.subscriptions["user-1"]
	require.NotNil(t, subscription)
	assert.Equal(t, sec.TierGold, subscription.Tier)
	assert.Equal(t, sec.StatusCancelled, subscription.Status)
}

/*
TestHandleWebhook_UnmatchedCustomer verifies an event for a customer this
environment does not own is acknowledged without error so the gateway does
not retry it.
*/
func TestHandleWebhook_UnmatchedCustomer(t *testing.T) {
	fixture := newWebhookFixture(t, &payment.Event{
		Type:       "customer.subscription.updated",
		CustomerID: "cus_foreign",
		PriceID:    "price_gold",
	})

	err := fixture.service.HandleWebhook(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Empty(t, fixture.users.subscriptions)
}

/*
TestHandleWebhook_BadSignature verifies a signature failure surfaces to the
handler instead of being acknowledged.
*/
func TestHandleWebhook_BadSignature(t *testing.T) {
	fixture := newWebhookFixture(t, nil)
	fixture.gateway.err = apperr.Unauthorized("Invalid webhook signature")

	err := fixture.service.HandleWebhook(context.Background(), []byte("{}"), "bad")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}

/*
TestHandleWebhook_IntentStatus verifies payment-intent events update the
stored record's status.
*/
func TestHandleWebhook_IntentStatus(t *testing.T) {
	fixture := newWebhookFixture(t, &payment.Event{
		Type:           "payment_intent.succeeded",
		SubscriptionID: "pi_1",
		Status:         "succeeded",
	})

	err := fixture.service.HandleWebhook(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", fixture.repository.statuses["pi_1"])
}
