package usage

import (
	"context"

	"gorm.io/gorm"

	"github.com/auroradesk/aurora/pkg/Logger"
	"github.com/auroradesk/aurora/pkg/assistant/router"
)

// GormRepo persists usage records and satisfies router.Sink, so the mux
// can stream completion records straight into it.
type GormRepo struct {
	db     *gorm.DB
	logger *Logger.Logger
}

func NewGormRepo(db *gorm.DB, logger *Logger.Logger) (*GormRepo, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &GormRepo{db: db, logger: logger}, nil
}

// Record implements router.Sink. Persistence failures are logged, not
// surfaced; usage accounting must never fail a user request.
func (r *GormRepo) Record(ctx context.Context, u router.Usage) {
	rec := Record{
		Adapter:    u.Adapter,
		Category:   string(u.Category),
		TokensUsed: u.TokensUsed,
		LatencyMs:  u.LatencyMs,
		Cost:       u.Cost,
		Success:    u.Success,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		r.logger.Errorf("record usage for %s: %v", u.Adapter, err)
	}
}

// Summary returns per-adapter aggregates over all recorded requests.
func (r *GormRepo) Summary(ctx context.Context) ([]AdapterSummary, error) {
	var rows []AdapterSummary
	err := r.db.WithContext(ctx).
		Model(&Record{}).
		Select("adapter, count(*) as requests, sum(tokens_used) as total_tokens, avg(latency_ms) as avg_latency_ms, sum(cost) as total_cost").
		Group("adapter").
		Order("requests desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Recent returns the latest n records, newest first.
func (r *GormRepo) Recent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		n = 50
	}
	var recs []Record
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(n).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}
