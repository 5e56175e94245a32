package ipo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BhavinDalsaniya/IPOApplication/internal/apperror"
	domain "github.com/BhavinDalsaniya/IPOApplication/internal/ipo"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const ipoColumns = `id, name, symbol, exchange, status,
	price_band_low, price_band_high, lot_size, gmp,
	open_date, close_date, listing_date,
	latest_price, price_change_percent, price_updated_at,
	created_at, updated_at`

func (r *Repository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Ipo, error) {
	query := `SELECT ` + ipoColumns + ` FROM ipos`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ipos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ipos []domain.Ipo
	for rows.Next() {
		i, err := scanIpo(rows)
		if err != nil {
			return nil, err
		}
		ipos = append(ipos, *i)
	}
	return ipos, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Ipo, error) {
	query := `SELECT ` + ipoColumns + ` FROM ipos WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	i, err := scanIpo(row)
	if err == sql.ErrNoRows {
		return nil, apperror.New(apperror.NotFound, "ipo not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get ipo: %w", err)
	}
	return i, nil
}

func (r *Repository) Create(ctx context.Context, i *domain.Ipo) error {
	const query = `INSERT INTO ipos (name, symbol, exchange, status,
		price_band_low, price_band_high, lot_size, gmp,
		open_date, close_date, listing_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		i.Name, i.Symbol, string(i.Exchange), string(i.Status),
		nullFloat(i.PriceBandLow), nullFloat(i.PriceBandHigh), nullInt(i.LotSize), nullFloat(i.GMP),
		nullDate(i.OpenDate), nullDate(i.CloseDate), nullDate(i.ListingDate),
	)
	if err != nil {
		return fmt.Errorf("create ipo: %w", err)
	}

	i.ID, _ = res.LastInsertId()
	i.CreatedAt = time.Now().UTC()
	i.UpdatedAt = i.CreatedAt
	return nil
}

func (r *Repository) Update(ctx context.Context, i *domain.Ipo) error {
	const query = `UPDATE ipos SET name = ?, symbol = ?, exchange = ?, status = ?,
		price_band_low = ?, price_band_high = ?, lot_size = ?, gmp = ?,
		open_date = ?, close_date = ?, listing_date = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		i.Name, i.Symbol, string(i.Exchange), string(i.Status),
		nullFloat(i.PriceBandLow), nullFloat(i.PriceBandHigh), nullInt(i.LotSize), nullFloat(i.GMP),
		nullDate(i.OpenDate), nullDate(i.CloseDate), nullDate(i.ListingDate),
		i.ID,
	)
	if err != nil {
		return fmt.Errorf("update ipo: %w", err)
	}
	i.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ipos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ipo: %w", err)
	}
	return nil
}

func (r *Repository) UpdatePrice(ctx context.Context, id int64, price float64, changePercent *float64, at time.Time) error {
	const query = `UPDATE ipos SET latest_price = ?, price_change_percent = ?, price_updated_at = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		price, nullFloat(changePercent), at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("update ipo price: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanIpo(row scanner) (*domain.Ipo, error) {
	i := &domain.Ipo{}
	var exchange, status string
	var bandLow, bandHigh, gmp, latestPrice, changePct sql.NullFloat64
	var lotSize sql.NullInt64
	var openDate, closeDate, listingDate, priceUpdatedAt sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(
		&i.ID, &i.Name, &i.Symbol, &exchange, &status,
		&bandLow, &bandHigh, &lotSize, &gmp,
		&openDate, &closeDate, &listingDate,
		&latestPrice, &changePct, &priceUpdatedAt,
		&createdStr, &updatedStr,
	)
	if err != nil {
		return nil, err
	}

	i.Exchange = domain.Exchange(exchange)
	i.Status = domain.Status(status)
	i.PriceBandLow = floatPtr(bandLow)
	i.PriceBandHigh = floatPtr(bandHigh)
	i.GMP = floatPtr(gmp)
	i.LatestPrice = floatPtr(latestPrice)
	i.PriceChangePercent = floatPtr(changePct)
	if lotSize.Valid {
		i.LotSize = &lotSize.Int64
	}
	i.OpenDate = timePtr(openDate)
	i.CloseDate = timePtr(closeDate)
	i.ListingDate = timePtr(listingDate)
	i.PriceUpdatedAt = timePtr(priceUpdatedAt)
	i.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	i.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	return i, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullDate(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(time.RFC3339)
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func timePtr(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil
	}
	return &t
}
