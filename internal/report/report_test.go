package report

import (
	"testing"
	"time"
)

func TestDeliveryRates_Consistency(t *testing.T) {
	t.Parallel()

	g := NewGeneratorWithSeed(1)
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)

	r := g.DeliveryRates(from, to)

	if r.TotalSucceeded+r.TotalFailed != r.TotalAttempted {
		t.Errorf("totals do not add up: %d + %d != %d", r.TotalSucceeded, r.TotalFailed, r.TotalAttempted)
	}
	if r.SuccessRate < 90 || r.SuccessRate > 99.5 {
		t.Errorf("success rate out of range: %f", r.SuccessRate)
	}
	if len(r.DailyStats) != 7 {
		t.Errorf("daily stats: got %d, want 7", len(r.DailyStats))
	}
	for _, d := range r.DailyStats {
		if d.Successful+d.Failed != d.Total {
			t.Errorf("daily totals do not add up on %s", d.Date)
		}
	}
	if len(r.FailureReasons) != 4 {
		t.Errorf("failure reasons: got %d, want 4", len(r.FailureReasons))
	}
}

func TestTopSenders_RankedAndLimited(t *testing.T) {
	t.Parallel()

	g := NewGeneratorWithSeed(2)

	stats := g.TopSenders(5)
	if len(stats) != 5 {
		t.Fatalf("got %d senders, want 5", len(stats))
	}
	for i := 1; i < len(stats); i++ {
		if stats[i].EmailsSent > stats[i-1].EmailsSent {
			t.Errorf("senders not ranked by volume at index %d", i)
		}
	}
	for _, s := range stats {
		if s.SuccessCount > s.EmailsSent {
			t.Errorf("success count exceeds sent for %s", s.SenderUPN)
		}
	}
}

func TestEmailVolumes_BreakdownSumsToTotal(t *testing.T) {
	t.Parallel()

	g := NewGeneratorWithSeed(3)
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	r := g.EmailVolumes(from, to, "domain")

	var sum int64
	for _, v := range r.VolumeBreakdown {
		sum += v
	}
	if sum != r.TotalVolume {
		t.Errorf("breakdown sum %d != total %d", sum, r.TotalVolume)
	}
	if r.GroupBy != "domain" {
		t.Errorf("GroupBy: got %q", r.GroupBy)
	}
}

func TestSummary_Defaults(t *testing.T) {
	t.Parallel()

	g := NewGeneratorWithSeed(4)

	s := g.Summary(0)
	if s.PeriodDays != 30 {
		t.Errorf("PeriodDays: got %d, want 30", s.PeriodDays)
	}
	if len(s.TopSenders) != 3 {
		t.Errorf("TopSenders: got %d, want 3", len(s.TopSenders))
	}
	if s.SystemHealthScore <= 0 {
		t.Errorf("SystemHealthScore: got %f", s.SystemHealthScore)
	}
}
