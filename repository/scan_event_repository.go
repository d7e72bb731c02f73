package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/Kyu-Ar/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanEventRepositoryImpl implements ScanEventRepository
type ScanEventRepositoryImpl struct {
	*BaseRepository[models.ScanEvent, any]
}

func NewScanEventRepository(db *gorm.DB) ScanEventRepository {
	return &ScanEventRepositoryImpl{BaseRepository: NewBaseRepository[models.ScanEvent, any](db)}
}

// ListScans returns up to limit events of one code ordered by timestamp.
// A non-positive limit returns all of them.
func (r *ScanEventRepositoryImpl) ListScans(ctx context.Context, codeID uuid.UUID, limit int, order SortOrder) ([]*models.ScanEvent, error) {
	if order != SortAsc {
		order = SortDesc
	}
	db := r.getDB(ctx)
	query := db.Model(&models.ScanEvent{}).
		Where("code_id = ?", codeID).
		Order(fmt.Sprintf("timestamp %s, id %s", order, order))
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []*models.ScanEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list scans for code %s: %w", codeID, err)
	}
	return rows, nil
}

func (r *ScanEventRepositoryImpl) CountByCode(ctx context.Context, codeID uuid.UUID) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := db.Model(&models.ScanEvent{}).Where("code_id = ?", codeID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count scans for code %s: %w", codeID, err)
	}
	return count, nil
}

// TopReferrers groups a code's events by referrer, most frequent first.
// Events without a referrer are grouped under a nil referrer.
func (r *ScanEventRepositoryImpl) TopReferrers(ctx context.Context, codeID uuid.UUID, limit int) ([]*models.ReferrerCount, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ScanEvent{}).
		Select("referrer, COUNT(*) AS count").
		Where("code_id = ?", codeID).
		Group("referrer").
		Order("count DESC, referrer ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []*models.ReferrerCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate referrers for code %s: %w", codeID, err)
	}
	return rows, nil
}
