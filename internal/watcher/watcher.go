// Package watcher polls the orders listing and publishes every new order
// revision exactly once per revision key.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/upgates-go/internal/logger"
	"github.com/samvad-hq/upgates-go/pkg/publishers"
	"github.com/samvad-hq/upgates-go/pkg/upgates"
)

const (
	defaultLookback = time.Hour
	defaultMaxPages = 20
)

// Options tunes a listing pass.
type Options struct {
	Lookback time.Duration
	MaxPages int
	StatusID string
}

// Result summarizes one pass.
type Result struct {
	Pages     int
	Orders    int
	Published int
	Skipped   int
	Failed    int
	Truncated bool
	Cursor    string
}

// Service coordinates listing, deduplication and publishing.
type Service struct {
	lister    OrderLister
	publisher EventPublisher
	store     RevisionStore
	log       logger.Logger
	opts      Options
	now       func() time.Time
}

// NewService wires a watcher with its collaborators.
func NewService(lister OrderLister, pub EventPublisher, store RevisionStore, log logger.Logger, opts Options) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if opts.Lookback <= 0 {
		opts.Lookback = defaultLookback
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	return &Service{
		lister:    lister,
		publisher: pub,
		store:     store,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

// Run executes one listing pass. Per-order failures are joined into the
// returned error; the pass continues past them.
func (s *Service) Run(ctx context.Context) (Result, error) {
	var res Result
	if s == nil || s.lister == nil || s.publisher == nil || s.store == nil {
		return res, fmt.Errorf("watcher service is not initialized")
	}

	start := s.now()
	from, err := s.windowStart(start)
	if err != nil {
		return res, err
	}

	var errs []error
	listFailed := false
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return res, errors.Join(append(errs, err)...)
		}
		if page > s.opts.MaxPages {
			res.Truncated = true
			s.log.WarnObj("order listing truncated", "watch_meta", map[string]any{
				"max_pages": s.opts.MaxPages,
				"from":      from,
			})
			break
		}

		list, err := s.lister.List(ctx, &upgates.ListOrdersParams{
			Page:               page,
			LastUpdateTimeFrom: from,
			StatusID:           s.opts.StatusID,
		})
		if err != nil {
			listFailed = true
			errs = append(errs, fmt.Errorf("list orders page %d: %w", page, err))
			s.log.ErrorObj("order listing failed", "watch_error", map[string]any{
				"page":   page,
				"status": upgates.StatusCode(err),
				"error":  err.Error(),
			})
			break
		}
		res.Pages++

		for _, order := range list.Orders {
			res.Orders++
			if err := s.handleOrder(ctx, order, &res); err != nil {
				errs = append(errs, err)
			}
		}

		if len(list.Orders) == 0 || page >= list.NumberOfPages {
			break
		}
	}

	if !listFailed && !res.Truncated && res.Failed == 0 {
		cursor := start.Format(upgates.TimeLayout)
		if err := s.store.SetCursor(cursor); err != nil {
			errs = append(errs, fmt.Errorf("store cursor: %w", err))
		} else {
			res.Cursor = cursor
		}
	}

	s.log.InfoObj("order watch pass completed", "watch_result", res)
	return res, errors.Join(errs...)
}

func (s *Service) windowStart(now time.Time) (string, error) {
	cursor, err := s.store.Cursor()
	if err != nil {
		return "", fmt.Errorf("read cursor: %w", err)
	}
	if cursor != "" {
		return cursor, nil
	}
	return now.Add(-s.opts.Lookback).Format(upgates.TimeLayout), nil
}

func (s *Service) handleOrder(ctx context.Context, order upgates.Order, res *Result) error {
	if order.OrderNumber == "" {
		res.Skipped++
		return nil
	}

	evt := publishers.NewOrderEvent(order)
	seen, err := s.store.SeenRevision(evt.Revision)
	if err != nil {
		res.Failed++
		return fmt.Errorf("check revision %s: %w", evt.Revision, err)
	}
	if seen {
		res.Skipped++
		return nil
	}

	delivered, pubErr := s.publisher.Publish(ctx, evt)
	if delivered == 0 {
		res.Failed++
		if pubErr == nil {
			pubErr = errors.New("no publisher accepted the event")
		}
		s.log.ErrorObj("order publish failed", "publish_error", map[string]any{
			"order_number": evt.OrderNumber,
			"revision":     evt.Revision,
			"error":        pubErr.Error(),
		})
		return fmt.Errorf("publish order %s: %w", evt.OrderNumber, pubErr)
	}
	if pubErr != nil {
		s.log.WarnObj("order partially published", "publish_error", map[string]any{
			"order_number": evt.OrderNumber,
			"delivered":    delivered,
			"error":        pubErr.Error(),
		})
	}

	if err := s.store.MarkRevision(evt.Revision); err != nil {
		res.Failed++
		return fmt.Errorf("mark revision %s: %w", evt.Revision, err)
	}
	res.Published++
	s.log.DebugObj("order published", "publish_result", map[string]any{
		"order_number": evt.OrderNumber,
		"revision":     evt.Revision,
		"delivered":    delivered,
	})
	return nil
}
