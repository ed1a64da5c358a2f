package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "postureguard/internal/errors"
	"postureguard/internal/models"
	"postureguard/internal/pagination"
)

// measurementService handles posture measurement business logic.
type measurementService struct {
	db *gorm.DB
}

// NewMeasurementService creates a new MeasurementServicer.
func NewMeasurementService(db *gorm.DB) MeasurementServicer {
	return &measurementService{db: db}
}

// Log persists a direct measurement. The category is derived from the
// score regardless of what the caller supplied.
func (s *measurementService) Log(userID string, input LogInput) (*models.PostureMeasurement, error) {
	if input.Score < 0 || input.Score > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "score must be between 0 and 100")
	}
	if input.JointAngles != nil {
		if err := input.JointAngles.Validate(); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
	}

	recordedAt := time.Now()
	if input.RecordedAt != nil {
		recordedAt = *input.RecordedAt
	}

	m := models.NewMeasurement(userID, input.Score, recordedAt)
	if input.DurationSeconds > 0 {
		m.DurationSeconds = input.DurationSeconds
	}
	m.JointAngles = input.JointAngles
	m.Environment = input.Environment
	m.Metadata = input.Metadata
	m.SessionID = input.SessionID

	if err := s.db.Create(m).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return m, nil
}

// List returns the user's measurements, newest first, with optional date
// and category filters.
func (s *measurementService) List(userID string, filter MeasurementFilter, page pagination.PageRequest) (*pagination.PageResponse[models.PostureMeasurement], error) {
	page.Defaults()

	base := s.db.Model(&models.PostureMeasurement{}).Where("user_id = ?", userID)
	if filter.StartDate != nil {
		base = base.Where("recorded_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		base = base.Where("recorded_at <= ?", *filter.EndDate)
	}
	if filter.Category != nil {
		base = base.Where("category = ?", *filter.Category)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var measurements []models.PostureMeasurement
	if err := base.Order("recorded_at DESC").Scopes(pagination.Paginate(page)).Find(&measurements).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(measurements, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Latest returns the user's most recent measurement.
func (s *measurementService) Latest(userID string) (*models.PostureMeasurement, error) {
	var m models.PostureMeasurement
	if err := s.db.Where("user_id = ?", userID).Order("recorded_at DESC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMeasurementNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &m, nil
}

// getOwned loads a measurement scoped to its owner. A record that exists
// but belongs to someone else is indistinguishable from one that does not
// exist.
func (s *measurementService) getOwned(userID, measurementID string) (*models.PostureMeasurement, error) {
	var m models.PostureMeasurement
	if err := s.db.Where("id = ? AND user_id = ?", measurementID, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMeasurementNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &m, nil
}

// Update applies a partial update to an owned measurement, recomputing the
// derived category whenever the score changes.
func (s *measurementService) Update(userID, measurementID string, update MeasurementUpdate) (*models.PostureMeasurement, error) {
	m, err := s.getOwned(userID, measurementID)
	if err != nil {
		return nil, err
	}

	if update.Score != nil {
		if *update.Score < 0 || *update.Score > 100 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "score must be between 0 and 100")
		}
		m.SetScore(*update.Score)
	}
	if update.DurationSeconds != nil {
		if *update.DurationSeconds < 1 || *update.DurationSeconds > 86400 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "durationSeconds must be between 1 and 86400")
		}
		m.DurationSeconds = *update.DurationSeconds
	}
	if update.JointAngles != nil {
		if err := update.JointAngles.Validate(); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		m.JointAngles = update.JointAngles
	}
	if update.Environment != nil {
		m.Environment = *update.Environment
	}

	if err := s.db.Save(m).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return m, nil
}

// Delete removes an owned measurement.
func (s *measurementService) Delete(userID, measurementID string) error {
	m, err := s.getOwned(userID, measurementID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(m).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Analytics computes the read-only rollup over an optionally date-bounded
// window: average score, per-category counts, and hourly/daily buckets.
func (s *measurementService) Analytics(userID string, from, to *time.Time) (*AnalyticsSummary, error) {
	base := s.db.Model(&models.PostureMeasurement{}).Where("user_id = ?", userID)
	if from != nil {
		base = base.Where("recorded_at >= ?", *from)
	}
	if to != nil {
		base = base.Where("recorded_at <= ?", *to)
	}

	summary := &AnalyticsSummary{
		HourlyBuckets: []HourlyBucket{},
		DailyBuckets:  []DailyBucket{},
	}

	if err := base.Session(&gorm.Session{}).Count(&summary.TotalMeasurements).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := base.Session(&gorm.Session{}).Select("COALESCE(AVG(score), 0)").Scan(&summary.AverageScore).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	counts, err := categoryCounts(base.Session(&gorm.Session{}))
	if err != nil {
		return nil, err
	}
	summary.Categories = counts

	// Time buckets are computed in-process: bucketing portably across the
	// production and test drivers beats pushing date functions into SQL
	// for per-user volumes.
	var rows []models.PostureMeasurement
	if err := base.Session(&gorm.Session{}).Select("score", "recorded_at").Order("recorded_at ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary.HourlyBuckets = bucketByHour(rows)
	summary.DailyBuckets = bucketByDay(rows)

	return summary, nil
}

// DashboardToday summarizes today's measurements with a score delta
// against yesterday.
func (s *measurementService) DashboardToday(userID string, now time.Time) (*DailyDashboard, error) {
	dayStart := startOfDay(now)
	dayEnd := dayStart.Add(24 * time.Hour)

	var rows []models.PostureMeasurement
	if err := s.db.Where("user_id = ? AND recorded_at >= ? AND recorded_at < ?", userID, dayStart, dayEnd).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	dash := &DailyDashboard{Date: dayStart.Format("2006-01-02")}
	var scoreSum float64
	for i := range rows {
		dash.MeasurementCount++
		scoreSum += rows[i].Score
		dash.TotalDurationSeconds += int64(rows[i].DurationSeconds)
		if rows[i].Feedback.AlertTriggered {
			dash.AlertCount++
		}
		switch rows[i].Category {
		case models.CategoryGood:
			dash.Categories.Good++
		case models.CategoryModerate:
			dash.Categories.Moderate++
		default:
			dash.Categories.Poor++
		}
	}
	if dash.MeasurementCount > 0 {
		dash.AverageScore = scoreSum / float64(dash.MeasurementCount)
	}

	yesterdayAvg, err := s.averageBetween(userID, dayStart.Add(-24*time.Hour), dayStart)
	if err != nil {
		return nil, err
	}
	if yesterdayAvg > 0 && dash.MeasurementCount > 0 {
		dash.ScoreDeltaVsPrevious = dash.AverageScore - yesterdayAvg
	}

	return dash, nil
}

// DashboardWeek summarizes the trailing seven days as daily buckets.
func (s *measurementService) DashboardWeek(userID string, now time.Time) (*WeeklyDashboard, error) {
	weekStart := startOfDay(now).Add(-6 * 24 * time.Hour)

	var rows []models.PostureMeasurement
	if err := s.db.Where("user_id = ? AND recorded_at >= ?", userID, weekStart).
		Order("recorded_at ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	dash := &WeeklyDashboard{Days: bucketByDay(rows)}
	var scoreSum float64
	for i := range rows {
		dash.MeasurementCount++
		scoreSum += rows[i].Score
	}
	if dash.MeasurementCount > 0 {
		dash.AverageScore = scoreSum / float64(dash.MeasurementCount)
	}

	var bestAvg, worstAvg float64
	for _, day := range dash.Days {
		if dash.BestDay == "" || day.AverageScore > bestAvg {
			dash.BestDay, bestAvg = day.Date, day.AverageScore
		}
		if dash.WorstDay == "" || day.AverageScore < worstAvg {
			dash.WorstDay, worstAvg = day.Date, day.AverageScore
		}
	}

	return dash, nil
}

// DashboardStats returns the all-time rollup with a today-vs-yesterday delta.
func (s *measurementService) DashboardStats(userID string, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{}

	base := s.db.Model(&models.PostureMeasurement{}).Where("user_id = ?", userID)
	if err := base.Session(&gorm.Session{}).Count(&stats.TotalMeasurements).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := base.Session(&gorm.Session{}).Select("COALESCE(AVG(score), 0)").Scan(&stats.AverageScore).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	counts, err := categoryCounts(base.Session(&gorm.Session{}))
	if err != nil {
		return nil, err
	}
	stats.Categories = counts

	dayStart := startOfDay(now)
	stats.TodayAverage, err = s.averageBetween(userID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	stats.YesterdayAverage, err = s.averageBetween(userID, dayStart.Add(-24*time.Hour), dayStart)
	if err != nil {
		return nil, err
	}
	stats.ScoreDelta = stats.TodayAverage - stats.YesterdayAverage

	return stats, nil
}

// averageBetween computes the average score over [from, to).
func (s *measurementService) averageBetween(userID string, from, to time.Time) (float64, error) {
	var avg float64
	if err := s.db.Model(&models.PostureMeasurement{}).
		Where("user_id = ? AND recorded_at >= ? AND recorded_at < ?", userID, from, to).
		Select("COALESCE(AVG(score), 0)").
		Scan(&avg).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return avg, nil
}

// categoryCounts runs a GROUP BY category over the given query.
func categoryCounts(base *gorm.DB) (CategoryCounts, error) {
	var grouped []struct {
		Category models.PostureCategory
		Count    int64
	}
	if err := base.Select("category, COUNT(*) as count").Group("category").Scan(&grouped).Error; err != nil {
		return CategoryCounts{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var counts CategoryCounts
	for _, g := range grouped {
		switch g.Category {
		case models.CategoryGood:
			counts.Good = g.Count
		case models.CategoryModerate:
			counts.Moderate = g.Count
		case models.CategoryPoor:
			counts.Poor = g.Count
		}
	}
	return counts, nil
}

// bucketByHour groups measurements by hour-of-day (0-23).
func bucketByHour(rows []models.PostureMeasurement) []HourlyBucket {
	sums := make(map[int]float64)
	counts := make(map[int]int64)
	for i := range rows {
		h := rows[i].RecordedAt.Hour()
		sums[h] += rows[i].Score
		counts[h]++
	}

	buckets := make([]HourlyBucket, 0, len(counts))
	for h := 0; h < 24; h++ {
		if counts[h] == 0 {
			continue
		}
		buckets = append(buckets, HourlyBucket{
			Hour:         h,
			AverageScore: sums[h] / float64(counts[h]),
			Count:        counts[h],
		})
	}
	return buckets
}

// bucketByDay groups measurements by calendar day, oldest first. Rows must
// already be ordered by recorded_at ascending.
func bucketByDay(rows []models.PostureMeasurement) []DailyBucket {
	sums := make(map[string]float64)
	counts := make(map[string]int64)
	order := []string{}
	for i := range rows {
		d := rows[i].RecordedAt.Format("2006-01-02")
		if counts[d] == 0 {
			order = append(order, d)
		}
		sums[d] += rows[i].Score
		counts[d]++
	}

	buckets := make([]DailyBucket, 0, len(order))
	for _, d := range order {
		buckets = append(buckets, DailyBucket{
			Date:         d,
			AverageScore: sums[d] / float64(counts[d]),
			Count:        counts[d],
		})
	}
	return buckets
}

// startOfDay truncates to local midnight.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
