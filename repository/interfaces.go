// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/Kyu-Ar/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// SortOrder selects ascending or descending order for time-ordered listings
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uuid.UUID) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CodeRepository defines operations for codes
type CodeRepository interface {
	Repository[models.Code, models.CodeFilter]
	BySlug(ctx context.Context, slug string) (*models.Code, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Code, error)
	IncrementScans(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ScanEventRepository defines operations for scan events
type ScanEventRepository interface {
	Save(ctx context.Context, event *models.ScanEvent) error
	ListScans(ctx context.Context, codeID uuid.UUID, limit int, order SortOrder) ([]*models.ScanEvent, error)
	CountByCode(ctx context.Context, codeID uuid.UUID) (int64, error)
	TopReferrers(ctx context.Context, codeID uuid.UUID, limit int) ([]*models.ReferrerCount, error)
}
