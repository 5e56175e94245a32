package ipo

import (
	"context"
	"time"
)

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Ipo, error)
	Get(ctx context.Context, id int64) (*Ipo, error)
	Create(ctx context.Context, i *Ipo) error
	Update(ctx context.Context, i *Ipo) error
	Delete(ctx context.Context, id int64) error

	// UpdatePrice writes only the reconciled price triple, leaving the
	// listing fields and updated_at's create/update distinction intact.
	UpdatePrice(ctx context.Context, id int64, price float64, changePercent *float64, at time.Time) error
}
