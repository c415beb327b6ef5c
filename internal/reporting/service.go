package reporting

import (
	"context"
	"errors"
	"time"

	billing "billing-cloud/internal/billing/domain"
	"billing-cloud/internal/observability/metrics"
)

// DocumentSource reads the invoice snapshot the dashboard is computed from.
type DocumentSource interface {
	List(ctx context.Context, filter billing.ListFilter) ([]billing.Document, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// DashboardService builds revenue buckets for a period keyword.
type DashboardService struct {
	source DocumentSource
	clock  Clock
}

// NewDashboardService constructs the service.
func NewDashboardService(source DocumentSource, clock Clock) (*DashboardService, error) {
	if source == nil {
		return nil, errors.New("dashboard service: nil document source")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &DashboardService{source: source, clock: clock}, nil
}

// Build aggregates invoices for the period into a revenue bucket.
// Store errors propagate unmodified; empty data is not an error.
func (s *DashboardService) Build(ctx context.Context, period string) (RevenueBucket, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveDashboard(result, time.Since(start))
	}()

	parsed, err := ParsePeriod(period)
	if err != nil {
		result = metrics.ResultError
		return RevenueBucket{}, err
	}
	window := NewWindow(parsed, s.clock.Now())

	docs, err := s.source.List(ctx, billing.ListFilter{
		Kind:       billing.KindInvoice,
		IssuedFrom: window.Start,
	})
	if err != nil {
		result = metrics.ResultError
		return RevenueBucket{}, err
	}
	return Aggregate(docs, window), nil
}
