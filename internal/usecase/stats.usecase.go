package usecase

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jeannegris/equora/internal/domain"
)

// AccessStatStore is the access-stat repository surface.
type AccessStatStore interface {
	CreateAccessStat(ctx context.Context, s *domain.AccessStat) error
	ListAccessStats(ctx context.Context, start, end *time.Time, limit int) ([]*domain.AccessStat, error)
	ListAccessStatsWithoutLocation(ctx context.Context) ([]*domain.AccessStat, error)
	SetAccessStatLocation(ctx context.Context, id string, loc *domain.GeoLocation) error
	ClearAccessStats(ctx context.Context) error
}

// GeoResolver resolves an IP to a location, or nil when it cannot.
type GeoResolver interface {
	Lookup(ip string) *domain.GeoLocation
}

// StatsUsecase records and reports equora frontend access stats. GeoIP is
// best-effort: a failed lookup still records the access.
type StatsUsecase struct {
	stats AccessStatStore
	geo   GeoResolver
	now   func() time.Time
}

func NewStatsUsecase(stats AccessStatStore, geo GeoResolver) *StatsUsecase {
	return &StatsUsecase{stats: stats, geo: geo, now: time.Now}
}

func (uc *StatsUsecase) RecordAccess(ctx context.Context, ip string) (*domain.AccessStat, error) {
	now := uc.now()
	s := &domain.AccessStat{
		ID:        ulid.Make().String(),
		IP:        ip,
		Location:  uc.geo.Lookup(ip),
		Timestamp: now,
	}
	if err := uc.stats.CreateAccessStat(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *StatsUsecase) List(ctx context.Context, start, end *time.Time, limit int) ([]*domain.AccessStat, error) {
	if limit <= 0 || limit > 1000 {
		limit = 500
	}
	return uc.stats.ListAccessStats(ctx, start, end, limit)
}

func (uc *StatsUsecase) Clear(ctx context.Context) error {
	return uc.stats.ClearAccessStats(ctx)
}

// BackfillLocations resolves locations for stats recorded while the GeoIP
// database was unavailable. Returns how many rows got a location.
func (uc *StatsUsecase) BackfillLocations(ctx context.Context) (int, error) {
	missing, err := uc.stats.ListAccessStatsWithoutLocation(ctx)
	if err != nil {
		return 0, err
	}
	filled := 0
	for _, s := range missing {
		loc := uc.geo.Lookup(s.IP)
		if loc == nil {
			continue
		}
		if err := uc.stats.SetAccessStatLocation(ctx, s.ID, loc); err != nil {
			return filled, err
		}
		filled++
	}
	return filled, nil
}
