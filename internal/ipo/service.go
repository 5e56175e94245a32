package ipo

import (
	"context"
	"fmt"
	"log/slog"
)

// Cache is the view-cache collaborator. Listing reads go through it;
// every mutation invalidates the whole ipos: prefix.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, val any)
	DeleteByPattern(pattern string)
}

const cachePrefix = "ipos:"

type Service struct {
	repo  Repository
	cache Cache
}

func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Ipo, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("invalid status filter: %s", filter.Status)
	}

	key := cachePrefix + "list:" + string(filter.Status)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if ipos, ok := v.([]Ipo); ok {
				return ipos, nil
			}
		}
	}

	ipos, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, ipos)
	}
	return ipos, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Ipo, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Ipo, error) {
	if appErr := req.Validate(); appErr != nil {
		return nil, appErr
	}

	i := fromRequest(req)
	if err := s.repo.Create(ctx, i); err != nil {
		return nil, err
	}

	s.invalidate()
	slog.Info("created ipo", "id", i.ID, "name", i.Name)
	return i, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Ipo, error) {
	if appErr := req.Validate(); appErr != nil {
		return nil, appErr
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	i := fromRequest(req)
	i.ID = id
	i.LatestPrice = existing.LatestPrice
	i.PriceChangePercent = existing.PriceChangePercent
	i.PriceUpdatedAt = existing.PriceUpdatedAt

	if err := s.repo.Update(ctx, i); err != nil {
		return nil, err
	}

	s.invalidate()
	return i, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) invalidate() {
	if s.cache != nil {
		s.cache.DeleteByPattern(cachePrefix + "*")
	}
}

func fromRequest(req CreateRequest) *Ipo {
	return &Ipo{
		Name:          req.Name,
		Symbol:        req.Symbol,
		Exchange:      req.Exchange,
		Status:        req.Status,
		PriceBandLow:  req.PriceBandLow,
		PriceBandHigh: req.PriceBandHigh,
		LotSize:       req.LotSize,
		GMP:           req.GMP,
		OpenDate:      req.OpenDate,
		CloseDate:     req.CloseDate,
		ListingDate:   req.ListingDate,
	}
}
