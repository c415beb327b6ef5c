package reporting

import (
	"reflect"
	"testing"
	"time"

	billing "billing-cloud/internal/billing/domain"
)

func invoiceOn(t *testing.T, number string, issue time.Time, status billing.Status, items []billing.LineItem, clientID, clientName string) billing.Document {
	t.Helper()
	party, err := billing.NewClientParty(billing.ClientRef{ID: clientID, LegalName: clientName})
	if err != nil {
		t.Fatalf("client party: %v", err)
	}
	doc, err := billing.NewDocument(billing.KindInvoice, number, issue, issue.AddDate(0, 1, 0), party, items, false, "")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	if err := doc.ChangeStatus(status, issue); err != nil {
		t.Fatalf("change status: %v", err)
	}
	return *doc
}

func TestAggregateExample(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	window := NewWindow(PeriodMonth, now)
	issue := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)

	docs := []billing.Document{
		invoiceOn(t, "F-1", issue, billing.StatusPaid,
			[]billing.LineItem{{Description: "Hosting", Quantity: 1, UnitPrice: 50000}}, "cli-1", "Acme SpA"),
		invoiceOn(t, "F-2", issue, billing.StatusPending,
			[]billing.LineItem{{Description: "Soporte", Quantity: 1, UnitPrice: 30000}}, "cli-2", "Beta Ltda"),
	}

	bucket := Aggregate(docs, window)
	if bucket.StatusTotals[billing.StatusPaid] != 50000 {
		t.Fatalf("expected paid 50000, got %d", bucket.StatusTotals[billing.StatusPaid])
	}
	if bucket.StatusTotals[billing.StatusPending] != 30000 {
		t.Fatalf("expected pending 30000, got %d", bucket.StatusTotals[billing.StatusPending])
	}
	if len(bucket.MonthlySeries) != SeriesMonths {
		t.Fatalf("expected %d series entries, got %d", SeriesMonths, len(bucket.MonthlySeries))
	}
	last := bucket.MonthlySeries[SeriesMonths-1]
	if last.IssuedTotal != 80000 {
		t.Fatalf("expected issued 80000, got %d", last.IssuedTotal)
	}
	if last.PaidTotal != 50000 {
		t.Fatalf("expected paid 50000, got %d", last.PaidTotal)
	}
	if last.Label != "agosto 2026" {
		t.Fatalf("unexpected label %q", last.Label)
	}
}

func TestAggregateEmptyData(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	bucket := Aggregate(nil, NewWindow(PeriodYear, now))
	if len(bucket.MonthlySeries) != SeriesMonths {
		t.Fatalf("expected %d entries, got %d", SeriesMonths, len(bucket.MonthlySeries))
	}
	for _, point := range bucket.MonthlySeries {
		if point.IssuedTotal != 0 || point.PaidTotal != 0 {
			t.Fatalf("expected zero month, got %+v", point)
		}
	}
	if len(bucket.TopClients) != 0 || len(bucket.TopServices) != 0 {
		t.Fatalf("expected empty rankings")
	}
	for status, total := range bucket.StatusTotals {
		if total != 0 {
			t.Fatalf("expected zero total for %s, got %d", status, total)
		}
	}
}

func TestAggregateIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	window := NewWindow(PeriodQuarter, now)
	issue := time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC)
	docs := []billing.Document{
		invoiceOn(t, "F-1", issue, billing.StatusPaid,
			[]billing.LineItem{{Description: "Hosting", Quantity: 3, UnitPrice: 10000}}, "cli-1", "Acme SpA"),
	}
	first := Aggregate(docs, window)
	second := Aggregate(docs, window)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation is not idempotent: %+v != %+v", first, second)
	}
}

func TestAggregateIgnoresDocumentsBeforeWindow(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	window := NewWindow(PeriodMonth, now)
	old := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	docs := []billing.Document{
		invoiceOn(t, "F-old", old, billing.StatusPaid,
			[]billing.LineItem{{Description: "Hosting", Quantity: 1, UnitPrice: 99999}}, "cli-1", "Acme SpA"),
	}
	bucket := Aggregate(docs, window)
	if bucket.StatusTotals[billing.StatusPaid] != 0 {
		t.Fatalf("expected old invoice ignored, got %d", bucket.StatusTotals[billing.StatusPaid])
	}
}

func TestAggregateUnknownStatusUncounted(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	window := NewWindow(PeriodMonth, now)
	issue := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	doc := invoiceOn(t, "F-1", issue, billing.StatusPaid, nil, "cli-1", "Acme SpA")
	doc.Status = billing.StatusDraft

	bucket := Aggregate([]billing.Document{doc}, window)
	var counted int64
	for _, total := range bucket.StatusTotals {
		counted += total
	}
	if counted != 0 {
		t.Fatalf("draft documents must not be counted, got %d", counted)
	}
}

func TestRankingsCappedAndSorted(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	window := NewWindow(PeriodYear, now)
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	docs := make([]billing.Document, 0, 12)
	for i := 0; i < 12; i++ {
		docs = append(docs, invoiceOn(t, "F-"+string(rune('A'+i)), issue, billing.StatusPaid,
			[]billing.LineItem{{Description: "Servicio " + string(rune('A'+i)), Quantity: 1, UnitPrice: int64(1000 * (i + 1))}},
			"cli-"+string(rune('A'+i)), "Cliente "+string(rune('A'+i))))
	}

	bucket := Aggregate(docs, window)
	if len(bucket.TopClients) != RankLimit {
		t.Fatalf("expected %d clients, got %d", RankLimit, len(bucket.TopClients))
	}
	if len(bucket.TopServices) != RankLimit {
		t.Fatalf("expected %d services, got %d", RankLimit, len(bucket.TopServices))
	}
	for i := 1; i < len(bucket.TopClients); i++ {
		if bucket.TopClients[i-1].Total < bucket.TopClients[i].Total {
			t.Fatalf("clients not sorted descending at %d", i)
		}
	}
	if bucket.TopClients[0].Name != "Cliente L" {
		t.Fatalf("expected Cliente L first, got %s", bucket.TopClients[0].Name)
	}
}

func TestRankingTiesKeepInputOrder(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	window := NewWindow(PeriodMonth, now)
	issue := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)

	docs := []billing.Document{
		invoiceOn(t, "F-1", issue, billing.StatusPaid,
			[]billing.LineItem{{Description: "Primero", Quantity: 1, UnitPrice: 5000}}, "cli-1", "Primero SpA"),
		invoiceOn(t, "F-2", issue, billing.StatusPaid,
			[]billing.LineItem{{Description: "Segundo", Quantity: 1, UnitPrice: 5000}}, "cli-2", "Segundo SpA"),
	}

	bucket := Aggregate(docs, window)
	if bucket.TopClients[0].Name != "Primero SpA" || bucket.TopClients[1].Name != "Segundo SpA" {
		t.Fatalf("tie break must keep input order, got %+v", bucket.TopClients)
	}
	if bucket.TopServices[0].Name != "Primero" || bucket.TopServices[1].Name != "Segundo" {
		t.Fatalf("service tie break must keep input order, got %+v", bucket.TopServices)
	}
}

func TestServiceRankGroupsByServiceRef(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	window := NewWindow(PeriodMonth, now)
	issue := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)

	docs := []billing.Document{
		invoiceOn(t, "F-1", issue, billing.StatusPaid, []billing.LineItem{
			{ServiceRef: "svc-hosting", Description: "Hosting anual", Quantity: 1, UnitPrice: 10000},
		}, "cli-1", "Acme SpA"),
		invoiceOn(t, "F-2", issue, billing.StatusPaid, []billing.LineItem{
			{ServiceRef: "svc-hosting", Description: "Hosting anual renovación", Quantity: 2, UnitPrice: 10000},
		}, "cli-2", "Beta Ltda"),
	}

	bucket := Aggregate(docs, window)
	if len(bucket.TopServices) != 1 {
		t.Fatalf("expected one grouped service, got %d", len(bucket.TopServices))
	}
	if bucket.TopServices[0].Total != 30000 || bucket.TopServices[0].UnitsSold != 3 {
		t.Fatalf("unexpected grouped service %+v", bucket.TopServices[0])
	}
}

func TestNewWindowStarts(t *testing.T) {
	now := time.Date(2026, 8, 20, 15, 30, 0, 0, time.UTC)
	cases := []struct {
		period Period
		start  time.Time
	}{
		{PeriodMonth, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodQuarter, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodYear, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		window := NewWindow(tc.period, now)
		if !window.Start.Equal(tc.start) {
			t.Fatalf("%s: expected start %s, got %s", tc.period, tc.start, window.Start)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	if _, err := ParsePeriod("week"); err == nil {
		t.Fatal("expected error for unknown period")
	}
	period, err := ParsePeriod("")
	if err != nil || period != PeriodMonth {
		t.Fatalf("expected default month, got %s %v", period, err)
	}
}
