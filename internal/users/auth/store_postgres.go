// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, unique violations, cast failures)
// pass through [dberr.Wrap], which converts them to client-safe
// [apperr.AppError] values at the boundary. Nothing above this file sees a
// driver error.
package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/colorpro/colorpro/internal/platform/dberr"
	"github.com/colorpro/colorpro/internal/platform/sec"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `
	id, firebaseuid, email, name, passwordhash, profileimageurl, profileimagekey,
	language, isactive, stripecustomerid, subscriptiontier, subscriptionstatus,
	subscriptionperiodend, lastloginat, createdat, updatedat`

// scanUser hydrates one account row, folding the three nullable subscription
// columns into a single optional Subscription value.
func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	user := &User{}
	var firebaseUID, passwordHash, imageURL, imageKey, customerID *string
	var tier, status *string
	var periodEnd, lastLogin *time.Time

	err := row.Scan(
		&user.ID, &firebaseUID, &user.Email, &user.Name, &passwordHash,
		&imageURL, &imageKey, &user.Language, &user.IsActive, &customerID,
		&tier, &status, &periodEnd, &lastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if firebaseUID != nil {
		user.FirebaseUID = *firebaseUID
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	if imageURL != nil {
		user.ProfileImageURL = *imageURL
	}
	if imageKey != nil {
		user.ProfileImageKey = *imageKey
	}
	if customerID != nil {
		user.StripeCustomerID = *customerID
	}
	if tier != nil && status != nil && periodEnd != nil {
		user.Subscription = &sec.Subscription{
			Tier:             sec.Tier(*tier),
			Status:           sec.SubscriptionStatus(*status),
			CurrentPeriodEnd: *periodEnd,
		}
	}
	user.LastLoginAt = lastLogin

	return user, nil
}

/*
Create persists a new user record into the users.account table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Classified constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, firebaseuid, email, name, passwordhash, language, isactive, createdat, updatedat
		) VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), $6, $7, $8, $9)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.FirebaseUID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Language,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return dberr.Wrap(err, "User")
}

// FindByID retrieves a user record by primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

// FindByEmail retrieves a user record by their unique email address.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

// FindByFirebaseUID retrieves the account linked to a provider subject.
func (repository *PostgresUserRepository) FindByFirebaseUID(context context.Context, firebaseUID string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE firebaseuid = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(context, query, firebaseUID))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

/*
Update persists changes to a user's mutable profile fields.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Classified update failures
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET name = $2, language = $3, profileimageurl = NULLIF($4, ''), profileimagekey = NULLIF($5, ''), updatedat = $6
		WHERE id = $1 AND deletedat IS NULL`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.Language,
		user.ProfileImageURL,
		user.ProfileImageKey,
		user.UpdatedAt,
	)

	return dberr.Wrap(err, "User")
}

// UpdatePassword updates only the password hash for a specific user.
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	return dberr.Wrap(err, "User")
}

// LinkFirebaseUID attaches a provider subject to an existing account.
func (repository *PostgresUserRepository) LinkFirebaseUID(context context.Context, userID, firebaseUID string) error {
	const query = `
		UPDATE users.account
		SET firebaseuid = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, firebaseUID, time.Now())
	return dberr.Wrap(err, "User")
}

// TouchLastLogin records the current time as the user's last login.
func (repository *PostgresUserRepository) TouchLastLogin(context context.Context, userID string) error {
	const query = "UPDATE users.account SET lastloginat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, time.Now())
	return dberr.Wrap(err, "User")
}

// FindByStripeCustomer resolves the account owning a gateway customer.
func (repository *PostgresUserRepository) FindByStripeCustomer(context context.Context, customerID string) (string, error) {
	const query = `
		SELECT id FROM users.account
		WHERE stripecustomerid = $1 AND deletedat IS NULL`

	var userID string
	if err := repository.pool.QueryRow(context, query, customerID).Scan(&userID); err != nil {
		return "", dberr.Wrap(err, "User")
	}
	return userID, nil
}

// StripeCustomerID returns the account's gateway customer handle.
func (repository *PostgresUserRepository) StripeCustomerID(context context.Context, userID string) (string, error) {
	const query = `
		SELECT COALESCE(stripecustomerid, '') FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	var customerID string
	if err := repository.pool.QueryRow(context, query, userID).Scan(&customerID); err != nil {
		return "", dberr.Wrap(err, "User")
	}
	return customerID, nil
}

// UpdateStripeCustomer stores the payment-gateway customer handle.
func (repository *PostgresUserRepository) UpdateStripeCustomer(context context.Context, userID, customerID string) error {
	const query = `
		UPDATE users.account
		SET stripecustomerid = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, userID, customerID, time.Now())
	return dberr.Wrap(err, "User")
}

/*
UpdateSubscription replaces the user's subscription state.

Description: Writes the three subscription columns atomically. A nil
subscription clears all three, returning the account to the free state.

Parameters:
  - context: context.Context
  - userID: string
  - subscription: *sec.Subscription

Returns:
  - error: Classified update failures
*/
func (repository *PostgresUserRepository) UpdateSubscription(context context.Context, userID string, subscription *sec.Subscription) error {
	const query = `
		UPDATE users.account
		SET subscriptiontier = $2, subscriptionstatus = $3, subscriptionperiodend = $4, updatedat = $5
		WHERE id = $1 AND deletedat IS NULL`

	var tier, status *string
	var periodEnd *time.Time
	if subscription != nil {
		tierValue := string(subscription.Tier)
		statusValue := string(subscription.Status)
		tier, status, periodEnd = &tierValue, &statusValue, &subscription.CurrentPeriodEnd
	}

	_, err := repository.pool.Exec(context, query, userID, tier, status, periodEnd, time.Now())
	return dberr.Wrap(err, "User")
}

// CurrentSubscription reads the account's stored subscription state, nil
// when the account has never subscribed.
func (repository *PostgresUserRepository) CurrentSubscription(context context.Context, userID string) (*sec.Subscription, error) {
	const query = `
		SELECT subscriptiontier, subscriptionstatus, subscriptionperiodend
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	var tier, status *string
	var periodEnd *time.Time
	if err := repository.pool.QueryRow(context, query, userID).Scan(&tier, &status, &periodEnd); err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	if tier == nil {
		return nil, nil
	}

	subscription := &sec.Subscription{Tier: sec.Tier(*tier)}
	if status != nil {
		subscription.Status = sec.SubscriptionStatus(*status)
	}
	if periodEnd != nil {
		subscription.CurrentPeriodEnd = *periodEnd
	}
	return subscription, nil
}

// SoftDelete marks a user account as deleted using their ID.
func (repository *PostgresUserRepository) SoftDelete(context context.Context, id string) error {
	const query = "UPDATE users.account SET deletedat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id, time.Now())
	return dberr.Wrap(err, "User")
}
