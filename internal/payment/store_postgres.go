// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package payment

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/colorpro/colorpro/internal/platform/dberr"
	"github.com/colorpro/colorpro/pkg/pagination"
)

// # Payment Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a new payment record into the billing.payment table.

Parameters:
  - context: context.Context
  - record: *Payment

Returns:
  - error: Classified constraint violations or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, record *Payment) error {
	const query = `
		INSERT INTO billing.payment (
			id, userid, kind, stripeid, amountcents, currency, status, tier, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)`

	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		record.ID,
		record.UserID,
		record.Kind,
		record.StripeID,
		record.AmountCents,
		record.Currency,
		record.Status,
		string(record.Tier),
		record.CreatedAt,
		record.UpdatedAt,
	)

	return dberr.Wrap(err, "Payment")
}

// FindByStripeID returns the record tracking a gateway object.
func (repository *PostgresRepository) FindByStripeID(context context.Context, stripeID string) (*Payment, error) {
	const query = `
		SELECT id, userid, kind, stripeid, amountcents, currency, status, COALESCE(tier, ''), createdat, updatedat
		FROM billing.payment
		WHERE stripeid = $1`

	record := &Payment{}
	err := repository.pool.QueryRow(context, query, stripeID).Scan(
		&record.ID,
		&record.UserID,
		&record.Kind,
		&record.StripeID,
		&record.AmountCents,
		&record.Currency,
		&record.Status,
		&record.Tier,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Payment")
	}

	return record, nil
}

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
func (repository *PostgresRepository) ListByUser(context context.Context, userID string, params pagination.Params) ([]*Payment, int, error) {
	const countQuery = "SELECT COUNT(*) FROM billing.payment WHERE userid = $1"

	var total int
	if err := repository.pool.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Payment")
	}

	const query = `
		SELECT id, userid, kind, stripeid, amountcents, currency, status, COALESCE(tier, ''), createdat, updatedat
		FROM billing.payment
		WHERE userid = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Payment")
	}
	defer rows.Close()

	records := make([]*Payment, 0, params.Limit)
	for rows.Next() {
		record := &Payment{}
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Kind,
			&record.StripeID,
			&record.AmountCents,
			&record.Currency,
			&record.Status,
			&record.Tier,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Payment")
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Payment")
	}

	return records, total, nil
}

/*
ListRecent returns a page of payments across all users, newest first.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*Payment: Page of records
  - int: Total record count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListRecent(context context.Context, params pagination.Params) ([]*Payment, int, error) {
	const countQuery = "SELECT COUNT(*) FROM billing.payment"

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Payment")
	}

	const query = `
		SELECT id, userid, kind, stripeid, amountcents, currency, status, COALESCE(tier, ''), createdat, updatedat
		FROM billing.payment
		ORDER BY createdat DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Payment")
	}
	defer rows.Close()

	records := make([]*Payment, 0, params.Limit)
	for rows.Next() {
		record := &Payment{}
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Kind,
			&record.StripeID,
			&record.AmountCents,
			&record.Currency,
			&record.Status,
			&record.Tier,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Payment")
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Payment")
	}

	return records, total, nil
}

// UpdateStatus records a status transition reported by the gateway.
func (repository *PostgresRepository) UpdateStatus(context context.Context, stripeID, status string) error {
	const query = "UPDATE billing.payment SET status = $2, updatedat = $3 WHERE stripeid = $1"
	_, err := repository.pool.Exec(context, query, stripeID, status, time.Now())
	return dberr.Wrap(err, "Payment")
}
