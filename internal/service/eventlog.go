package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"irrigation_node/internal/models"
	"irrigation_node/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// ErrInvalidTimeRange is returned by List when From is after To.
var ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := toUTC(f.From)
	to := toUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", ErrInvalidTimeRange
	}
	return from, to, strings.TrimSpace(strings.ToUpper(f.Type)), nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.NodeEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, typ)
}
