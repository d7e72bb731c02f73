package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/Kyu-Ar/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CodeRepositoryImpl implements CodeRepository
type CodeRepositoryImpl struct {
	*BaseRepository[models.Code, models.CodeFilter]
}

func NewCodeRepository(db *gorm.DB) CodeRepository {
	return &CodeRepositoryImpl{BaseRepository: NewBaseRepository[models.Code, models.CodeFilter](db)}
}

// BySlug returns the code with exactly this slug, or nil when there is none
func (r *CodeRepositoryImpl) BySlug(ctx context.Context, slug string) (*models.Code, error) {
	db := r.getDB(ctx)
	var row models.Code
	if err := db.Where("slug = ?", slug).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find code by slug: %w", err)
	}
	return &row, nil
}

func (r *CodeRepositoryImpl) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	return r.Exists(ctx, models.CodeFilter{Slug: &slug})
}

func (r *CodeRepositoryImpl) applyFilter(db *gorm.DB, f models.CodeFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.Slug != nil {
		db = db.Where("slug = ?", *f.Slug)
	}
	if f.Type != nil {
		db = db.Where("type = ?", *f.Type)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *CodeRepositoryImpl) ByFilter(ctx context.Context, filter models.CodeFilter, orderBy string, limit, offset int) ([]*models.Code, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Code{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Code
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list codes: %w", err)
	}
	return rows, nil
}

func (r *CodeRepositoryImpl) Count(ctx context.Context, filter models.CodeFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Code{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count codes: %w", err)
	}
	return count, nil
}

func (r *CodeRepositoryImpl) Exists(ctx context.Context, filter models.CodeFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ListRecent returns up to limit codes, newest first
func (r *CodeRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*models.Code, error) {
	return r.ByFilter(ctx, models.CodeFilter{}, "created_at DESC, id DESC", limit, 0)
}

// IncrementScans bumps scans_count by one in a single UPDATE so concurrent
// callers never lose an increment.
func (r *CodeRepositoryImpl) IncrementScans(ctx context.Context, id uuid.UUID) error {
	db := r.getDB(ctx)
	res := db.Model(&models.Code{}).
		Where("id = ?", id).
		UpdateColumn("scans_count", gorm.Expr("scans_count + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment scans for code %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to increment scans for code %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete removes the code; its scan events go with it through the cascading foreign key
func (r *CodeRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.getDB(ctx)
	res := db.Where("id = ?", id).Delete(&models.Code{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete code %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete code %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
