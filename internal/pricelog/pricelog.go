// Package pricelog is the append-only audit trail of reconciled price
// changes. Entries are never updated or deleted here; retention is an
// operational concern.
package pricelog

import (
	"context"
	"time"
)

type Entry struct {
	ID            int64     `json:"id"`
	IpoID         int64     `json:"ipoId"`
	Symbol        string    `json:"symbol"`
	OldPrice      *float64  `json:"oldPrice,omitempty"`
	NewPrice      float64   `json:"newPrice"`
	ChangePercent *float64  `json:"changePercent,omitempty"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Repository interface {
	Append(ctx context.Context, e *Entry) error
	ListByIpo(ctx context.Context, ipoID int64) ([]Entry, error)
}
