package ipo

import (
	"time"

	"github.com/BhavinDalsaniya/IPOApplication/internal/apperror"
)

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOpen     Status = "open"
	StatusClosed   Status = "closed"
	StatusListed   Status = "listed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusOpen, StatusClosed, StatusListed:
		return true
	}
	return false
}

type Exchange string

const (
	ExchangeNSE Exchange = "NSE"
	ExchangeBSE Exchange = "BSE"
)

// Ipo is one tracked listing. Symbol stays empty until the company lists;
// price fields stay nil until the first successful reconciliation.
type Ipo struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol,omitempty"`
	Exchange Exchange `json:"exchange"`
	Status   Status   `json:"status"`

	PriceBandLow  *float64 `json:"priceBandLow,omitempty"`
	PriceBandHigh *float64 `json:"priceBandHigh,omitempty"`
	LotSize       *int64   `json:"lotSize,omitempty"`

	// GMP is the grey-market premium in rupees over the band ceiling.
	GMP *float64 `json:"gmp,omitempty"`

	OpenDate    *time.Time `json:"openDate,omitempty"`
	CloseDate   *time.Time `json:"closeDate,omitempty"`
	ListingDate *time.Time `json:"listingDate,omitempty"`

	LatestPrice        *float64   `json:"latestPrice,omitempty"`
	PriceChangePercent *float64   `json:"priceChangePercent,omitempty"`
	PriceUpdatedAt     *time.Time `json:"priceUpdatedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListFilter struct {
	Status Status
}

type CreateRequest struct {
	Name          string     `json:"name"`
	Symbol        string     `json:"symbol"`
	Exchange      Exchange   `json:"exchange"`
	Status        Status     `json:"status"`
	PriceBandLow  *float64   `json:"priceBandLow"`
	PriceBandHigh *float64   `json:"priceBandHigh"`
	LotSize       *int64     `json:"lotSize"`
	GMP           *float64   `json:"gmp"`
	OpenDate      *time.Time `json:"openDate"`
	CloseDate     *time.Time `json:"closeDate"`
	ListingDate   *time.Time `json:"listingDate"`
}

func (r *CreateRequest) Validate() *apperror.AppError {
	if r.Name == "" {
		return apperror.New(apperror.BadRequest, "name is required")
	}
	if r.Status == "" {
		r.Status = StatusUpcoming
	}
	if !r.Status.Valid() {
		return apperror.New(apperror.BadRequest, "invalid status")
	}
	if r.Exchange == "" {
		r.Exchange = ExchangeNSE
	}
	if r.Exchange != ExchangeNSE && r.Exchange != ExchangeBSE {
		return apperror.New(apperror.BadRequest, "invalid exchange")
	}
	if r.PriceBandHigh != nil && *r.PriceBandHigh <= 0 {
		return apperror.New(apperror.BadRequest, "priceBandHigh must be positive")
	}
	if r.PriceBandLow != nil && r.PriceBandHigh != nil && *r.PriceBandLow > *r.PriceBandHigh {
		return apperror.New(apperror.BadRequest, "priceBandLow cannot exceed priceBandHigh")
	}
	return nil
}

// UpdateRequest mirrors CreateRequest; all fields are replaced on update.
type UpdateRequest = CreateRequest
