// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package payment

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/middleware"
	requestutil "github.com/colorpro/colorpro/internal/platform/request"
	"github.com/colorpro/colorpro/internal/platform/respond"
	"github.com/colorpro/colorpro/internal/platform/sec"
	"github.com/colorpro/colorpro/internal/platform/validate"
	"github.com/colorpro/colorpro/pkg/pagination"
)

// maxWebhookBytes bounds the webhook body read. Stripe events are small;
// anything larger is hostile.
const maxWebhookBytes = 1 << 20

// # Definitions & Constructors

// Handler implements billing HTTP endpoints.
type Handler struct {
	paymentService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{paymentService: service}
}

// Routes returns a [chi.Router] with billing routes.
//
// The webhook route is signature-verified rather than user-authenticated;
// everything else requires a principal.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/webhook", handler.webhook)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", handler.list)
		r.Post("/intent", handler.createIntent)
		r.Post("/subscription", handler.subscribe)
	})

	return router
}

// # Request Payloads

type intentRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

type subscribeRequest struct {
	Tier string `json:"tier"`
}

/*
CreateIntent opens a one-off payment intent.

POST /api/v1/payments/intent

Request:
  - Body: intentRequest (AmountCents, Currency)

Response:
  - 201: IntentResult: Client secret for confirmation
  - 400: ErrBadRequest: Invalid amount, currency, or card failure
  - 503: ErrUnavailable: Gateway unreachable
*/
func (handler *Handler) createIntent(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input intentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Custom(FieldAmount, input.AmountCents < 50, "Amount must be at least 50 cents").
		Required(FieldCurrency, input.Currency).
		OneOf(FieldCurrency, input.Currency, "usd", "eur", "brl")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	intent, err := handler.paymentService.CreateIntent(
		request.Context(), principal, input.AmountCents, input.Currency)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, intent)
}

/*
Subscribe starts a recurring subscription on the requested tier.

POST /api/v1/payments/subscription

Request:
  - Body: subscribeRequest (Tier: bronze|silver|gold)

Response:
  - 201: SubscriptionResult: Subscription ID and client secret
  - 400: ErrBadRequest: Unknown tier or gateway rejection
*/
func (handler *Handler) subscribe(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input subscribeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldTier, input.Tier).
		Custom(FieldTier, input.Tier != "" && !sec.IsValidTier(input.Tier), "Must be one of: bronze, silver, gold")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.paymentService.Subscribe(request.Context(), principal, sec.Tier(input.Tier))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
List returns a page of the authenticated user's payment records.

GET /api/v1/payments?page=&limit=

Response:
  - 200: []Payment with pagination meta
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	records, meta, err := handler.paymentService.ListPayments(request.Context(), principal.UserID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, meta)
}

/*
AdminList returns a cross-user page of payment records.

GET /api/v1/admin/payments?page=&limit=

Description: Mounted behind the admin allow-list gate at the server level;
the handler itself performs no authorization.

Response:
  - 200: []Payment with pagination meta
*/
func (handler *Handler) AdminList(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	records, meta, err := handler.paymentService.ListRecentPayments(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, meta)
}

/*
Webhook ingests gateway notifications.

POST /api/v1/payments/webhook

Description: The body is verified against the webhook signing secret; there
is no user authentication on this route. A bad signature yields 401 so the
gateway logs the delivery as failed.

Response:
  - 200: Success: Event applied or deliberately ignored
  - 401: ErrUnauthorized: Signature verification failed
*/
func (handler *Handler) webhook(writer http.ResponseWriter, request *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(request.Body, maxWebhookBytes))
	if err != nil {
		respond.Error(writer, request, apperr.BadRequest("Unable to read webhook payload"))
		return
	}

	signature := request.Header.Get("Stripe-Signature")
	if err := handler.paymentService.HandleWebhook(request.Context(), payload, signature); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OKMessage(writer, "received")
}
