// Package report generates synthetic analytics and reporting data. Nothing
// here aggregates real traffic: every figure is randomly generated and the
// package exists only to keep the reporting endpoints of the old API alive.
package report

import (
	"fmt"
	"math/rand"
	"time"
)

// Generator produces fake reports. A seeded source can be injected for
// deterministic tests.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator with a time-based seed.
func NewGenerator() *Generator {
	return NewGeneratorWithSeed(time.Now().UnixNano())
}

// NewGeneratorWithSeed creates a Generator with a fixed seed.
func NewGeneratorWithSeed(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// DailyStat is one day of delivery counts.
type DailyStat struct {
	Date       string `json:"date"`
	Total      int64  `json:"total"`
	Successful int64  `json:"successful"`
	Failed     int64  `json:"failed"`
}

// FailureReason is one bucket of the failure breakdown.
type FailureReason struct {
	Reason     string  `json:"reason"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DeliveryRateReport summarizes send success/failure over a period.
type DeliveryRateReport struct {
	ReportDate     string          `json:"reportDate"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	TotalAttempted int64           `json:"totalEmailsAttempted"`
	TotalSucceeded int64           `json:"totalEmailsSuccessful"`
	TotalFailed    int64           `json:"totalEmailsFailed"`
	SuccessRate    float64         `json:"successRate"`
	DailyStats     []DailyStat     `json:"dailyStats"`
	FailureReasons []FailureReason `json:"failureReasons"`
}

// DeliveryRates fabricates a delivery rate report for the date range.
func (g *Generator) DeliveryRates(from, to time.Time) *DeliveryRateReport {
	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	total := int64(100 + g.rng.Intn(1000)*days)
	succeeded := int64(float64(total) * (0.90 + g.rng.Float64()*0.09))
	failed := total - succeeded

	report := &DeliveryRateReport{
		ReportDate:     time.Now().UTC().Format("2006-01-02"),
		StartDate:      from.Format("2006-01-02"),
		EndDate:        to.Format("2006-01-02"),
		TotalAttempted: total,
		TotalSucceeded: succeeded,
		TotalFailed:    failed,
		SuccessRate:    float64(succeeded) / float64(total) * 100,
	}

	for d := 0; d < days; d++ {
		dayTotal := int64(50 + g.rng.Intn(200))
		daySucceeded := int64(float64(dayTotal) * (0.85 + g.rng.Float64()*0.14))
		report.DailyStats = append(report.DailyStats, DailyStat{
			Date:       from.AddDate(0, 0, d).Format("2006-01-02"),
			Total:      dayTotal,
			Successful: daySucceeded,
			Failed:     dayTotal - daySucceeded,
		})
	}

	report.FailureReasons = []FailureReason{
		{Reason: "Rate Limit Exceeded", Count: failed * 40 / 100, Percentage: 40.0},
		{Reason: "Invalid Recipient", Count: failed * 25 / 100, Percentage: 25.0},
		{Reason: "Authentication Failed", Count: failed * 20 / 100, Percentage: 20.0},
		{Reason: "Temporary Server Error", Count: failed * 15 / 100, Percentage: 15.0},
	}

	return report
}

// EngagementReport fabricates open/click statistics.
type EngagementReport struct {
	ReportDate string  `json:"reportDate"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	TotalSent  int64   `json:"totalSent"`
	OpenRate   float64 `json:"openRate"`
	ClickRate  float64 `json:"clickRate"`
	BounceRate float64 `json:"bounceRate"`
}

// Engagement fabricates an engagement report for the date range.
func (g *Generator) Engagement(from, to time.Time) *EngagementReport {
	return &EngagementReport{
		ReportDate: time.Now().UTC().Format("2006-01-02"),
		StartDate:  from.Format("2006-01-02"),
		EndDate:    to.Format("2006-01-02"),
		TotalSent:  int64(500 + g.rng.Intn(5000)),
		OpenRate:   15 + g.rng.Float64()*35,
		ClickRate:  2 + g.rng.Float64()*10,
		BounceRate: g.rng.Float64() * 5,
	}
}

// UsageReport fabricates API usage statistics.
type UsageReport struct {
	ReportDate          string  `json:"reportDate"`
	StartDate           string  `json:"startDate"`
	EndDate             string  `json:"endDate"`
	TotalRequests       int64   `json:"totalRequests"`
	SuccessRate         float64 `json:"successRate"`
	AverageResponseTime float64 `json:"averageResponseTimeMs"`
	PeakRequestsPerMin  int64   `json:"peakRequestsPerMinute"`
}

// Usage fabricates a usage report for the date range.
func (g *Generator) Usage(from, to time.Time) *UsageReport {
	return &UsageReport{
		ReportDate:          time.Now().UTC().Format("2006-01-02"),
		StartDate:           from.Format("2006-01-02"),
		EndDate:             to.Format("2006-01-02"),
		TotalRequests:       int64(1000 + g.rng.Intn(50000)),
		SuccessRate:         95 + g.rng.Float64()*4.9,
		AverageResponseTime: 50 + g.rng.Float64()*400,
		PeakRequestsPerMin:  int64(10 + g.rng.Intn(90)),
	}
}

// SenderStats summarizes one sender's volume.
type SenderStats struct {
	SenderUPN    string  `json:"senderUpn"`
	EmailsSent   int64   `json:"emailsSent"`
	SuccessCount int64   `json:"successCount"`
	SuccessRate  float64 `json:"successRate"`
}

// TopSenders fabricates a ranked list of senders, highest volume first.
func (g *Generator) TopSenders(limit int) []SenderStats {
	if limit <= 0 {
		limit = 10
	}

	stats := make([]SenderStats, 0, limit)
	volume := int64(2000 + g.rng.Intn(3000))
	for i := 0; i < limit; i++ {
		sent := volume - int64(i)*int64(50+g.rng.Intn(150))
		if sent < 1 {
			sent = 1
		}
		success := int64(float64(sent) * (0.9 + g.rng.Float64()*0.1))
		stats = append(stats, SenderStats{
			SenderUPN:    fmt.Sprintf("sender%d@example.com", i+1),
			EmailsSent:   sent,
			SuccessCount: success,
			SuccessRate:  float64(success) / float64(sent) * 100,
		})
	}
	return stats
}

// ErrorTrendReport fabricates error counts over a period.
type ErrorTrendReport struct {
	ReportDate     string         `json:"reportDate"`
	StartDate      string         `json:"startDate"`
	EndDate        string         `json:"endDate"`
	TotalErrors    int64          `json:"totalErrors"`
	CriticalErrors int64          `json:"criticalErrors"`
	ErrorsByType   map[string]int `json:"errorsByType"`
}

// ErrorTrends fabricates an error trend report for the date range.
func (g *Generator) ErrorTrends(from, to time.Time) *ErrorTrendReport {
	total := int64(10 + g.rng.Intn(200))
	return &ErrorTrendReport{
		ReportDate:     time.Now().UTC().Format("2006-01-02"),
		StartDate:      from.Format("2006-01-02"),
		EndDate:        to.Format("2006-01-02"),
		TotalErrors:    total,
		CriticalErrors: total / 10,
		ErrorsByType: map[string]int{
			"authentication": g.rng.Intn(20),
			"rate_limit":     g.rng.Intn(50),
			"validation":     g.rng.Intn(80),
			"provider":       g.rng.Intn(30),
		},
	}
}

// EmailVolumeReport fabricates volume totals grouped by a dimension.
type EmailVolumeReport struct {
	ReportDate       string           `json:"reportDate"`
	StartDate        string           `json:"startDate"`
	EndDate          string           `json:"endDate"`
	GroupBy          string           `json:"groupBy"`
	TotalVolume      int64            `json:"totalVolume"`
	SuccessfulVolume int64            `json:"successfulVolume"`
	FailedVolume     int64            `json:"failedVolume"`
	VolumeBreakdown  map[string]int64 `json:"volumeBreakdown"`
}

// EmailVolumes fabricates a volume report derived from delivery rates.
func (g *Generator) EmailVolumes(from, to time.Time, groupBy string) *EmailVolumeReport {
	delivery := g.DeliveryRates(from, to)

	breakdown := make(map[string]int64)
	remaining := delivery.TotalAttempted
	for _, domain := range []string{"example.com", "partner.example.org", "contoso.com"} {
		share := remaining / int64(2+g.rng.Intn(3))
		breakdown[domain] = share
		remaining -= share
	}
	breakdown["other"] = remaining

	return &EmailVolumeReport{
		ReportDate:       delivery.ReportDate,
		StartDate:        delivery.StartDate,
		EndDate:          delivery.EndDate,
		GroupBy:          groupBy,
		TotalVolume:      delivery.TotalAttempted,
		SuccessfulVolume: delivery.TotalSucceeded,
		FailedVolume:     delivery.TotalFailed,
		VolumeBreakdown:  breakdown,
	}
}

// SummaryReport fabricates a high-level roll-up of the other reports.
type SummaryReport struct {
	ReportDate           string        `json:"reportDate"`
	PeriodDays           int           `json:"periodDays"`
	StartDate            string        `json:"startDate"`
	EndDate              string        `json:"endDate"`
	TotalEmailsProcessed int64         `json:"totalEmailsProcessed"`
	EmailSuccessRate     float64       `json:"emailSuccessRate"`
	TotalAPIRequests     int64         `json:"totalApiRequests"`
	AverageResponseTime  float64       `json:"averageResponseTimeMs"`
	SystemHealthScore    float64       `json:"systemHealthScore"`
	TotalErrors          int64         `json:"totalErrors"`
	CriticalErrors       int64         `json:"criticalErrors"`
	TopSenders           []SenderStats `json:"topSenders"`
}

// Summary fabricates an executive summary covering the last periodDays days.
func (g *Generator) Summary(periodDays int) *SummaryReport {
	if periodDays <= 0 {
		periodDays = 30
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -periodDays+1)

	delivery := g.DeliveryRates(from, to)
	usage := g.Usage(from, to)
	errTrends := g.ErrorTrends(from, to)
	senders := g.TopSenders(3)

	healthScore := (delivery.SuccessRate + usage.SuccessRate) / 2
	if errTrends.CriticalErrors > 10 {
		healthScore -= 5
	}

	return &SummaryReport{
		ReportDate:           delivery.ReportDate,
		PeriodDays:           periodDays,
		StartDate:            delivery.StartDate,
		EndDate:              delivery.EndDate,
		TotalEmailsProcessed: delivery.TotalAttempted,
		EmailSuccessRate:     delivery.SuccessRate,
		TotalAPIRequests:     usage.TotalRequests,
		AverageResponseTime:  usage.AverageResponseTime,
		SystemHealthScore:    healthScore,
		TotalErrors:          errTrends.TotalErrors,
		CriticalErrors:       errTrends.CriticalErrors,
		TopSenders:           senders,
	}
}
