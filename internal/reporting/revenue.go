package reporting

import (
	"fmt"
	"sort"
	"time"

	billing "billing-cloud/internal/billing/domain"
)

const (
	// RankLimit caps the ranked client and service lists.
	RankLimit = 10
	// SeriesMonths is the fixed length of the trailing monthly series.
	SeriesMonths = 6
)

// ClientRevenue is one entry in the top-clients ranking.
type ClientRevenue struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
	Count int    `json:"count"`
}

// ServiceRevenue is one entry in the top-services ranking.
type ServiceRevenue struct {
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Total     int64  `json:"total"`
	UnitsSold int64  `json:"units_sold"`
}

// MonthlyPoint is one calendar month in the trailing series.
type MonthlyPoint struct {
	Label       string `json:"label"`
	IssuedTotal int64  `json:"issued_total"`
	PaidTotal   int64  `json:"paid_total"`
}

// RevenueBucket is the computed reporting output. It is derived entirely
// from the document snapshot and recomputed on every request.
type RevenueBucket struct {
	StatusTotals  map[billing.Status]int64 `json:"status_totals"`
	TopClients    []ClientRevenue          `json:"top_clients"`
	TopServices   []ServiceRevenue         `json:"top_services"`
	MonthlySeries []MonthlyPoint           `json:"monthly_series"`
}

var countedStatuses = []billing.Status{
	billing.StatusIssued,
	billing.StatusSent,
	billing.StatusPending,
	billing.StatusPaid,
	billing.StatusOverdue,
	billing.StatusCanceled,
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Aggregate buckets invoice totals by status, ranks clients and service
// lines by revenue and builds the trailing monthly series. Documents
// issued before the window start are ignored. Ranking ties keep the
// first-seen input order. Empty input yields zero totals and empty
// rankings, never an error.
func Aggregate(docs []billing.Document, window Window) RevenueBucket {
	bucket := RevenueBucket{
		StatusTotals: make(map[billing.Status]int64, len(countedStatuses)),
	}
	for _, status := range countedStatuses {
		bucket.StatusTotals[status] = 0
	}

	filtered := docs[:0:0]
	for _, doc := range docs {
		if doc.IssueDate.Before(window.Start) {
			continue
		}
		filtered = append(filtered, doc)
	}

	for _, doc := range filtered {
		// Statuses outside the fixed buckets (e.g. draft) are not counted.
		if _, counted := bucket.StatusTotals[doc.Status]; counted {
			bucket.StatusTotals[doc.Status] += doc.Totals.Total
		}
	}

	bucket.TopClients = rankClients(filtered)
	bucket.TopServices = rankServices(filtered)
	bucket.MonthlySeries = monthlySeries(filtered, window.Now)
	return bucket
}

func rankClients(docs []billing.Document) []ClientRevenue {
	index := make(map[string]int)
	ranking := make([]ClientRevenue, 0)
	for _, doc := range docs {
		key := doc.Party.GroupKey()
		if key == "" {
			continue
		}
		pos, seen := index[key]
		if !seen {
			pos = len(ranking)
			index[key] = pos
			ranking = append(ranking, ClientRevenue{Name: doc.Party.DisplayName()})
		}
		ranking[pos].Total += doc.Totals.Total
		ranking[pos].Count++
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Total > ranking[j].Total
	})
	if len(ranking) > RankLimit {
		ranking = ranking[:RankLimit]
	}
	return ranking
}

func rankServices(docs []billing.Document) []ServiceRevenue {
	index := make(map[string]int)
	ranking := make([]ServiceRevenue, 0)
	for _, doc := range docs {
		for _, item := range doc.Items {
			key := item.RankKey()
			if key == "" {
				continue
			}
			pos, seen := index[key]
			if !seen {
				pos = len(ranking)
				index[key] = pos
				ranking = append(ranking, ServiceRevenue{Name: item.Description, Category: item.Category})
			}
			ranking[pos].Total += item.Total()
			ranking[pos].UnitsSold += item.Quantity
		}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Total > ranking[j].Total
	})
	if len(ranking) > RankLimit {
		ranking = ranking[:RankLimit]
	}
	return ranking
}

func monthlySeries(docs []billing.Document, now time.Time) []MonthlyPoint {
	series := make([]MonthlyPoint, 0, SeriesMonths)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := SeriesMonths - 1; i >= 0; i-- {
		monthStart := current.AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)
		point := MonthlyPoint{Label: monthLabel(monthStart)}
		for _, doc := range docs {
			if doc.IssueDate.Before(monthStart) || !doc.IssueDate.Before(monthEnd) {
				continue
			}
			point.IssuedTotal += doc.Totals.Total
			if doc.Status == billing.StatusPaid {
				point.PaidTotal += doc.Totals.Total
			}
		}
		series = append(series, point)
	}
	return series
}

func monthLabel(monthStart time.Time) string {
	return fmt.Sprintf("%s %d", spanishMonths[monthStart.Month()-1], monthStart.Year())
}
