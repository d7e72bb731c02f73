package businessflow

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/amirphl/Kyu-Ar/app/dto"
	"github.com/amirphl/Kyu-Ar/config"
	"github.com/amirphl/Kyu-Ar/models"
	"github.com/amirphl/Kyu-Ar/repository"
	"github.com/amirphl/Kyu-Ar/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistryMetrics receives registry events for instrumentation
type RegistryMetrics interface {
	CodeCreated(codeType string)
	ScanRecorded()
	ScanRecordFailed()
}

type noopMetrics struct{}

func (noopMetrics) CodeCreated(string) {}
func (noopMetrics) ScanRecorded()      {}
func (noopMetrics) ScanRecordFailed()  {}

// NoopMetrics returns a RegistryMetrics that discards every event
func NoopMetrics() RegistryMetrics { return noopMetrics{} }

// CreateCodeInput is a validated create request. Payload has already been
// decoded into its variant.
type CreateCodeInput struct {
	Title   *string
	Note    *string
	Payload models.CodePayload
}

// CodeFlow registers codes and reads them back
type CodeFlow interface {
	Create(ctx context.Context, input CreateCodeInput) (*dto.CodeResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.CodeResponse, error)
	ListRecent(ctx context.Context, limit int) (*dto.ListCodesResponse, error)
}

type CodeFlowImpl struct {
	codeRepo repository.CodeRepository
	db       *gorm.DB
	cfg      config.RegistryConfig
	metrics  RegistryMetrics
}

func NewCodeFlow(codeRepo repository.CodeRepository, db *gorm.DB, cfg config.RegistryConfig, metrics RegistryMetrics) CodeFlow {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &CodeFlowImpl{codeRepo: codeRepo, db: db, cfg: cfg, metrics: metrics}
}

// Create resolves the payload target, allocates a unique slug and stores the
// code. Every insert attempt runs in its own transaction; a unique violation
// moves on to the next slug candidate, any other failure aborts.
func (f *CodeFlowImpl) Create(ctx context.Context, input CreateCodeInput) (*dto.CodeResponse, error) {
	if input.Payload == nil {
		return nil, NewBusinessError("INVALID_INPUT", "Code payload is required", ErrInvalidInput)
	}
	if input.Payload.Type() == models.CodeTypeURL {
		if err := validateTargetURL(input.Payload.Target()); err != nil {
			return nil, NewBusinessError("INVALID_TARGET_URL", "Target URL is invalid", err)
		}
	}

	base, fromTitle, err := utils.GenerateSlug(input.Title)
	if err != nil {
		return nil, NewBusinessError("SLUG_GENERATION_FAILED", "Failed to generate slug", err)
	}
	next := newSlugSequence(base, fromTitle, f.cfg.SlugSuffixAttempts)

	for {
		if err := ctx.Err(); err != nil {
			return nil, storageError("CREATE_CODE_FAILED", "Failed to create code", err)
		}

		slug, err := next()
		if err != nil {
			return nil, NewBusinessError("SLUG_GENERATION_FAILED", "Failed to generate slug", err)
		}

		taken, err := f.codeRepo.ExistsBySlug(ctx, slug)
		if err != nil {
			return nil, storageError("CREATE_CODE_FAILED", "Failed to check slug availability", err)
		}
		if taken {
			continue
		}

		code := &models.Code{
			ID:         uuid.New(),
			Slug:       slug,
			Title:      strings.TrimSpace(utils.Deref(input.Title)),
			Type:       input.Payload.Type(),
			TargetURL:  input.Payload.Target(),
			Data:       input.Payload.Fields(),
			Note:       utils.NilIfBlank(input.Note),
			CreatedAt:  utils.UTCNow(),
			ScansCount: 0,
		}

		err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
			return f.codeRepo.Save(txCtx, code)
		})
		if err == nil {
			f.metrics.CodeCreated(string(code.Type))
			return toCodeResponse(code), nil
		}
		if repository.IsDuplicateKey(err) {
			log.Printf("slug %q taken concurrently, trying next candidate: request_id=%s", slug, utils.RequestIDFromContext(ctx))
			continue
		}
		return nil, storageError("CREATE_CODE_FAILED", "Failed to create code", err)
	}
}

// GetBySlug looks the slug up exactly as given
func (f *CodeFlowImpl) GetBySlug(ctx context.Context, slug string) (*dto.CodeResponse, error) {
	code, err := findCode(ctx, f.codeRepo, slug)
	if err != nil {
		return nil, err
	}
	return toCodeResponse(code), nil
}

func findCode(ctx context.Context, repo repository.CodeRepository, slug string) (*models.Code, error) {
	code, err := repo.BySlug(ctx, slug)
	if err != nil {
		return nil, storageError("CODE_LOOKUP_FAILED", "Failed to lookup code", err)
	}
	if code == nil {
		return nil, ErrCodeNotFound
	}
	return code, nil
}

// ListRecent returns the newest codes first. A non-positive limit selects the
// configured default; larger limits are clamped to the configured maximum.
func (f *CodeFlowImpl) ListRecent(ctx context.Context, limit int) (*dto.ListCodesResponse, error) {
	if limit <= 0 {
		limit = f.cfg.ListDefaultLimit
	}
	if f.cfg.ListMaxLimit > 0 && limit > f.cfg.ListMaxLimit {
		limit = f.cfg.ListMaxLimit
	}

	rows, err := f.codeRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, storageError("LIST_CODES_FAILED", "Failed to list codes", err)
	}

	items := make([]dto.CodeResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, *toCodeResponse(row))
	}
	return &dto.ListCodesResponse{Items: items, Count: len(items), Limit: limit}, nil
}

// newSlugSequence yields slug candidates in order. Title slugs are tried as is,
// then with suffixes -2 up to -(attempts+1), then random slugs. Random slugs
// are redrawn on every call.
func newSlugSequence(base string, fromTitle bool, attempts int) func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		if n == 1 {
			return base, nil
		}
		if fromTitle && n <= attempts+1 {
			return utils.SuffixSlug(base, n), nil
		}
		return utils.RandomSlug(utils.SlugLength)
	}
}

func validateTargetURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: target_url is required", ErrInvalidURL)
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q has no scheme or host", ErrInvalidURL, raw)
	}
	return nil
}

func toCodeResponse(code *models.Code) *dto.CodeResponse {
	return &dto.CodeResponse{
		ID:         code.ID.String(),
		Slug:       code.Slug,
		Title:      code.Title,
		Type:       string(code.Type),
		TargetURL:  code.TargetURL,
		Note:       code.Note,
		CreatedAt:  utils.FormatRFC3339(code.CreatedAt),
		ScansCount: code.ScansCount,
	}
}
