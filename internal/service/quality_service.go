package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/apperr"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultWindowDays is the analytics window applied when the caller does
// not supply one.
const DefaultWindowDays = 30

const summaryCacheTTL = 5 * time.Minute

// QualityService computes yield and scrap analytics over the immutable
// quantity ledger plus issue records. Every query is a pure reduction over
// a freshly loaded window; only the summary is cached, and the cache is
// dropped on every ledger write.
type QualityService struct {
	qtyRepo   *repository.QuantityRepository
	issueRepo *repository.IssueRepository
	rdb       *redis.Client
	logger    *zap.Logger
}

func NewQualityService(qtyRepo *repository.QuantityRepository, issueRepo *repository.IssueRepository, rdb *redis.Client, logger *zap.Logger) *QualityService {
	return &QualityService{qtyRepo: qtyRepo, issueRepo: issueRepo, rdb: rdb, logger: logger}
}

// QualitySummary is the headline yield view for a window.
type QualitySummary struct {
	WindowDays    int     `json:"window_days"`
	TotalProduced int     `json:"total_produced"`
	TotalGood     int     `json:"total_good"`
	TotalScrap    int     `json:"total_scrap"`
	TotalRework   int     `json:"total_rework"`
	Yield         float64 `json:"yield"`
	ScrapRate     float64 `json:"scrap_rate"`
	ReworkRate    float64 `json:"rework_rate"`
}

// ScrapBucket is one group in a scrap breakdown.
type ScrapBucket struct {
	Key         string `json:"key"`
	TotalScrap  int    `json:"total_scrap"`
	Occurrences int    `json:"occurrences"`
}

// ParetoEntry is one reason in the Pareto ranking.
type ParetoEntry struct {
	ReasonCode           string  `json:"reason_code"`
	TotalScrap           int     `json:"total_scrap"`
	Percentage           float64 `json:"percentage"`
	CumulativePercentage float64 `json:"cumulative_percentage"`
}

// TrendBucket is one day or ISO week of production totals.
type TrendBucket struct {
	Date      string  `json:"date"`
	Produced  int     `json:"produced"`
	Good      int     `json:"good"`
	Scrap     int     `json:"scrap"`
	ScrapRate float64 `json:"scrap_rate"`
}

// Quality score classification thresholds.
const (
	ScoreClassGood           = "good"
	ScoreClassModerate       = "moderate"
	ScoreClassNeedsAttention = "needs_attention"
)

// QualityScore is the composite score with its components.
type QualityScore struct {
	WindowDays      int     `json:"window_days"`
	Score           int     `json:"score"`
	Classification  string  `json:"classification"`
	YieldScore      float64 `json:"yield_score"`
	IssueScore      float64 `json:"issue_score"`
	ResolutionScore float64 `json:"resolution_score"`
}

func windowStart(days int) time.Time {
	if days <= 0 {
		days = DefaultWindowDays
	}
	return time.Now().AddDate(0, 0, -days)
}

func normalizeDays(days int) int {
	if days <= 0 {
		return DefaultWindowDays
	}
	return days
}

// loadWindow fetches the ledger window and drops rows that violate the sum
// invariant. A bad row is logged and skipped; partial analytics beat none.
func (s *QualityService) loadWindow(ctx context.Context, tenantID string, days int) ([]repository.LedgerRow, error) {
	rows, err := s.qtyRepo.ListWindow(ctx, tenantID, windowStart(days))
	if err != nil {
		return nil, fmt.Errorf("load ledger window: %w", err)
	}
	valid := rows[:0]
	for _, row := range rows {
		if row.Produced < 0 || row.Good < 0 || row.Scrap < 0 || row.Rework < 0 ||
			row.Produced != row.Good+row.Scrap+row.Rework {
			s.logger.Warn("skipping inconsistent ledger row",
				zap.String("operation_id", row.OperationID),
				zap.Int("produced", row.Produced),
				zap.Int("good", row.Good),
				zap.Int("scrap", row.Scrap),
				zap.Int("rework", row.Rework),
			)
			continue
		}
		valid = append(valid, row)
	}
	return valid, nil
}

func summaryCacheKey(tenantID string, days int) string {
	return fmt.Sprintf("quality:summary:%s:%d", tenantID, days)
}

// Summary returns the windowed yield totals, served from redis when fresh.
func (s *QualityService) Summary(ctx context.Context, tenantID string, days int) (*QualitySummary, error) {
	days = normalizeDays(days)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, summaryCacheKey(tenantID, days)).Result(); err == nil {
			var summary QualitySummary
			if json.Unmarshal([]byte(cached), &summary) == nil {
				return &summary, nil
			}
		}
	}

	rows, err := s.loadWindow(ctx, tenantID, days)
	if err != nil {
		return nil, err
	}
	summary := computeSummary(rows)
	summary.WindowDays = days

	if s.rdb != nil {
		if b, err := json.Marshal(summary); err == nil {
			s.rdb.Set(ctx, summaryCacheKey(tenantID, days), b, summaryCacheTTL)
		}
	}
	return &summary, nil
}

// InvalidateSummary drops cached summaries for the tenant. Called by the
// reconciliation engine after every ledger write.
func (s *QualityService) InvalidateSummary(ctx context.Context, tenantID string) {
	if s.rdb == nil {
		return
	}
	iter := s.rdb.Scan(ctx, 0, fmt.Sprintf("quality:summary:%s:*", tenantID), 0).Iterator()
	for iter.Next(ctx) {
		s.rdb.Del(ctx, iter.Val())
	}
}

// Breakdown groups windowed scrap by reason, category, cell or material.
func (s *QualityService) Breakdown(ctx context.Context, tenantID string, days int, groupBy string) ([]ScrapBucket, error) {
	if !validBreakdownDim(groupBy) {
		return nil, apperr.NewValidation("group_by", "must be one of reason, category, cell, material")
	}
	rows, err := s.loadWindow(ctx, tenantID, days)
	if err != nil {
		return nil, err
	}
	return scrapBreakdown(rows, groupBy), nil
}

// Pareto ranks scrap reasons by contribution with cumulative share.
func (s *QualityService) Pareto(ctx context.Context, tenantID string, days, topN int) ([]ParetoEntry, error) {
	rows, err := s.loadWindow(ctx, tenantID, days)
	if err != nil {
		return nil, err
	}
	return paretoEntries(rows, topN), nil
}

// Trend buckets the window by day or ISO week (weeks start Monday).
func (s *QualityService) Trend(ctx context.Context, tenantID string, days int, interval string) ([]TrendBucket, error) {
	if interval != "day" && interval != "week" {
		return nil, apperr.NewValidation("interval", "must be day or week")
	}
	rows, err := s.loadWindow(ctx, tenantID, days)
	if err != nil {
		return nil, err
	}
	return trendBuckets(rows, interval), nil
}

// Score computes the composite quality score for the window.
func (s *QualityService) Score(ctx context.Context, tenantID string, days int) (*QualityScore, error) {
	days = normalizeDays(days)
	rows, err := s.loadWindow(ctx, tenantID, days)
	if err != nil {
		return nil, err
	}
	issues, err := s.issueRepo.ListWindow(ctx, tenantID, windowStart(days))
	if err != nil {
		return nil, fmt.Errorf("load issues: %w", err)
	}
	score := computeQualityScore(computeSummary(rows), issues)
	score.WindowDays = days
	return &score, nil
}

// --- pure reductions ---

func computeSummary(rows []repository.LedgerRow) QualitySummary {
	var summary QualitySummary
	for _, row := range rows {
		summary.TotalProduced += row.Produced
		summary.TotalGood += row.Good
		summary.TotalScrap += row.Scrap
		summary.TotalRework += row.Rework
	}
	if summary.TotalProduced == 0 {
		// No production observed means no evidence of loss.
		summary.Yield = 100
		return summary
	}
	produced := float64(summary.TotalProduced)
	summary.Yield = float64(summary.TotalGood) / produced * 100
	summary.ScrapRate = float64(summary.TotalScrap) / produced * 100
	summary.ReworkRate = float64(summary.TotalRework) / produced * 100
	return summary
}

func validBreakdownDim(dim string) bool {
	switch dim {
	case "reason", "category", "cell", "material":
		return true
	}
	return false
}

func breakdownKey(row repository.LedgerRow, dim string) string {
	switch dim {
	case "reason":
		return row.ReasonCode
	case "category":
		return row.ReasonCategory
	case "cell":
		return row.CellName
	case "material":
		return row.Material
	}
	return ""
}

func scrapBreakdown(rows []repository.LedgerRow, dim string) []ScrapBucket {
	totals := make(map[string]*ScrapBucket)
	for _, row := range rows {
		if row.Scrap == 0 {
			continue
		}
		key := breakdownKey(row, dim)
		if key == "" {
			key = "unspecified"
		}
		bucket, ok := totals[key]
		if !ok {
			bucket = &ScrapBucket{Key: key}
			totals[key] = bucket
		}
		bucket.TotalScrap += row.Scrap
		bucket.Occurrences++
	}
	result := make([]ScrapBucket, 0, len(totals))
	for _, bucket := range totals {
		result = append(result, *bucket)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalScrap != result[j].TotalScrap {
			return result[i].TotalScrap > result[j].TotalScrap
		}
		return result[i].Key < result[j].Key
	})
	return result
}

func paretoEntries(rows []repository.LedgerRow, topN int) []ParetoEntry {
	buckets := scrapBreakdown(rows, "reason")
	var grandTotal int
	for _, bucket := range buckets {
		grandTotal += bucket.TotalScrap
	}
	if grandTotal == 0 {
		return []ParetoEntry{}
	}
	entries := make([]ParetoEntry, 0, len(buckets))
	var cumulative float64
	for _, bucket := range buckets {
		pct := float64(bucket.TotalScrap) / float64(grandTotal) * 100
		cumulative += pct
		entries = append(entries, ParetoEntry{
			ReasonCode:           bucket.Key,
			TotalScrap:           bucket.TotalScrap,
			Percentage:           pct,
			CumulativePercentage: cumulative,
		})
	}
	if topN > 0 && topN < len(entries) {
		entries = entries[:topN]
	}
	return entries
}

// weekStart returns the Monday of t's ISO week.
func weekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return t.AddDate(0, 0, -offset)
}

func trendBuckets(rows []repository.LedgerRow, interval string) []TrendBucket {
	totals := make(map[string]*TrendBucket)
	for _, row := range rows {
		var key string
		if interval == "week" {
			key = weekStart(row.RecordedAt).Format("2006-01-02")
		} else {
			key = row.RecordedAt.Format("2006-01-02")
		}
		bucket, ok := totals[key]
		if !ok {
			bucket = &TrendBucket{Date: key}
			totals[key] = bucket
		}
		bucket.Produced += row.Produced
		bucket.Good += row.Good
		bucket.Scrap += row.Scrap
	}
	result := make([]TrendBucket, 0, len(totals))
	for _, bucket := range totals {
		if bucket.Produced > 0 {
			bucket.ScrapRate = float64(bucket.Scrap) / float64(bucket.Produced) * 100
		}
		result = append(result, *bucket)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func computeQualityScore(summary QualitySummary, issues []entity.Issue) QualityScore {
	yieldScore := summary.Yield

	var critical, high, medium, low int
	for _, issue := range issues {
		switch issue.Severity {
		case entity.IssueSeverityCritical:
			critical++
		case entity.IssueSeverityHigh:
			high++
		case entity.IssueSeverityMedium:
			medium++
		default:
			low++
		}
	}
	issueScore := math.Max(0, 100-float64(10*critical+5*high+2*medium+1*low))

	// resolutionScore rewards closing issues within ~3 days; with nothing
	// resolved in the window there is no penalty to measure.
	resolutionScore := 100.0
	var resolved int
	var totalDays float64
	for _, issue := range issues {
		if issue.Resolved() {
			resolved++
			totalDays += issue.UpdatedAt.Sub(issue.CreatedAt).Hours() / 24
		}
	}
	if resolved > 0 {
		avgDays := totalDays / float64(resolved)
		resolutionScore = clamp(100-(avgDays-3)*14.3, 0, 100)
	}

	score := int(math.Round(yieldScore*0.5 + issueScore*0.3 + resolutionScore*0.2))
	classification := ScoreClassNeedsAttention
	switch {
	case score >= 80:
		classification = ScoreClassGood
	case score >= 60:
		classification = ScoreClassModerate
	}
	return QualityScore{
		Score:           score,
		Classification:  classification,
		YieldScore:      yieldScore,
		IssueScore:      issueScore,
		ResolutionScore: resolutionScore,
	}
}
