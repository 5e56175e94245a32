package pricelog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/BhavinDalsaniya/IPOApplication/internal/pricelog"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Append(ctx context.Context, e *domain.Entry) error {
	const query = `INSERT INTO price_update_logs (ipo_id, symbol, old_price, new_price, change_percent, source)
		VALUES (?, ?, ?, ?, ?, ?)`

	var oldPrice, changePct any
	if e.OldPrice != nil {
		oldPrice = *e.OldPrice
	}
	if e.ChangePercent != nil {
		changePct = *e.ChangePercent
	}

	res, err := r.db.ExecContext(ctx, query,
		e.IpoID, e.Symbol, oldPrice, e.NewPrice, changePct, e.Source)
	if err != nil {
		return fmt.Errorf("append price log: %w", err)
	}

	e.ID, _ = res.LastInsertId()
	e.CreatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) ListByIpo(ctx context.Context, ipoID int64) ([]domain.Entry, error) {
	const query = `SELECT id, ipo_id, symbol, old_price, new_price, change_percent, source, created_at
		FROM price_update_logs WHERE ipo_id = ? ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, ipoID)
	if err != nil {
		return nil, fmt.Errorf("list price logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var oldPrice, changePct sql.NullFloat64
		var createdStr string
		if err := rows.Scan(&e.ID, &e.IpoID, &e.Symbol, &oldPrice, &e.NewPrice, &changePct, &e.Source, &createdStr); err != nil {
			return nil, fmt.Errorf("scan price log: %w", err)
		}
		if oldPrice.Valid {
			v := oldPrice.Float64
			e.OldPrice = &v
		}
		if changePct.Valid {
			v := changePct.Float64
			e.ChangePercent = &v
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
