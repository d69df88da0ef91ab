// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/colorpro/colorpro/internal/platform/dberr"
	"github.com/colorpro/colorpro/pkg/pagination"
)

// # Analysis Repository

// PostgresRepository implements the Repository interface using pgx.
// Photos and results are stored as JSONB; their shapes evolve with the
// engine without schema migrations.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a new consultation record into the analysis.record table.

Parameters:
  - context: context.Context
  - record: *ColorAnalysis

Returns:
  - error: Classified constraint violations or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, record *ColorAnalysis) error {
	const query = `
		INSERT INTO analysis.record (
			id, userid, status, notes, photos, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	photos, err := json.Marshal(record.Photos)
	if err != nil {
		return fmt.Errorf("postgres_analysis_repo_marshal_photos_failed: %w", err)
	}

	_, err = repository.pool.Exec(context, query,
		record.ID,
		record.UserID,
		record.Status,
		record.Notes,
		photos,
		record.CreatedAt,
		record.UpdatedAt,
	)

	return dberr.Wrap(err, "Analysis")
}

// FindByID retrieves a consultation by primary key.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*ColorAnalysis, error) {
	const query = `
		SELECT id, userid, status, notes, photos, results, completedat, createdat, updatedat
		FROM analysis.record
		WHERE id = $1`

	record := &ColorAnalysis{}
	var photos, results []byte

	err := repository.pool.QueryRow(context, query, id).Scan(
		&record.ID,
		&record.UserID,
		&record.Status,
		&record.Notes,
		&photos,
		&results,
		&record.CompletedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Analysis")
	}

	if err := hydrateJSON(record, photos, results); err != nil {
		return nil, err
	}

	return record, nil
}

/*
ListByUser returns a page of the user's consultations, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - params: pagination.Params

Returns:
  - []*ColorAnalysis: Page of records
  - int: Total record count for the user
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListByUser(context context.Context, userID string, params pagination.Params) ([]*ColorAnalysis, int, error) {
	const countQuery = "SELECT COUNT(*) FROM analysis.record WHERE userid = $1"

	var total int
	if err := repository.pool.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Analysis")
	}

	const query = `
		SELECT id, userid, status, notes, photos, results, completedat, createdat, updatedat
		FROM analysis.record
		WHERE userid = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Analysis")
	}
	defer rows.Close()

	records := make([]*ColorAnalysis, 0, params.Limit)
	for rows.Next() {
		record := &ColorAnalysis{}
		var photos, results []byte

		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Status,
			&record.Notes,
			&photos,
			&results,
			&record.CompletedAt,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Analysis")
		}

		if err := hydrateJSON(record, photos, results); err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Analysis")
	}

	return records, total, nil
}

/*
Update persists status, photos, and results changes.

Parameters:
  - context: context.Context
  - record: *ColorAnalysis

Returns:
  - error: Classified update failures
*/
func (repository *PostgresRepository) Update(context context.Context, record *ColorAnalysis) error {
	const query = `
		UPDATE analysis.record
		SET status = $2, notes = $3, photos = $4, results = $5, completedat = $6, updatedat = $7
		WHERE id = $1`

	photos, err := json.Marshal(record.Photos)
	if err != nil {
		return fmt.Errorf("postgres_analysis_repo_marshal_photos_failed: %w", err)
	}

	var results []byte
	if record.Results != nil {
		results, err = json.Marshal(record.Results)
		if err != nil {
			return fmt.Errorf("postgres_analysis_repo_marshal_results_failed: %w", err)
		}
	}

	record.UpdatedAt = time.Now()
	_, err = repository.pool.Exec(context, query,
		record.ID,
		record.Status,
		record.Notes,
		photos,
		results,
		record.CompletedAt,
		record.UpdatedAt,
	)

	return dberr.Wrap(err, "Analysis")
}

// Delete removes a consultation record.
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = "DELETE FROM analysis.record WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id)
	return dberr.Wrap(err, "Analysis")
}

// hydrateJSON decodes the JSONB photo and result columns onto the record.
func hydrateJSON(record *ColorAnalysis, photos, results []byte) error {
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &record.Photos); err != nil {
			return fmt.Errorf("postgres_analysis_repo_unmarshal_photos_failed: %w", err)
		}
	}
	if record.Photos == nil {
		record.Photos = []Photo{}
	}

	if len(results) > 0 {
		record.Results = &Results{}
		if err := json.Unmarshal(results, record.Results); err != nil {
			return fmt.Errorf("postgres_analysis_repo_unmarshal_results_failed: %w", err)
		}
	}

	return nil
}
