package testing

import (
	"fmt"

	"github.com/amirphl/Kyu-Ar/models"
	"github.com/amirphl/Kyu-Ar/utils"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCode inserts a URL code with a random slug and fake title and target
func (tf *TestFixtures) CreateTestCode() (*models.Code, error) {
	slug, err := utils.RandomSlug(utils.SlugLength)
	if err != nil {
		return nil, err
	}
	return tf.CreateTestCodeWithSlug(slug)
}

// CreateTestCodeWithSlug inserts a URL code with the given slug
func (tf *TestFixtures) CreateTestCodeWithSlug(slug string) (*models.Code, error) {
	code := &models.Code{
		ID:        uuid.New(),
		Slug:      slug,
		Title:     gofakeit.Company(),
		Type:      models.CodeTypeURL,
		TargetURL: gofakeit.URL(),
		CreatedAt: utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(code).Error; err != nil {
		return nil, fmt.Errorf("failed to create test code: %w", err)
	}
	return code, nil
}

// NewTestScanEvent builds an unsaved scan event for code with fake client data.
// The IP is already anonymized.
func (tf *TestFixtures) NewTestScanEvent(code *models.Code) *models.ScanEvent {
	referrer := "https://" + gofakeit.DomainName() + "/"
	userAgent := gofakeit.UserAgent()
	ip := gofakeit.IPv4Address()
	return &models.ScanEvent{
		ID:        uuid.New(),
		CodeID:    code.ID,
		Timestamp: utils.UTCNow(),
		Referrer:  &referrer,
		UserAgent: &userAgent,
		IP:        utils.AnonymizeIP(&ip),
	}
}

// CreateTestScanEvents inserts n scan events for code and sets its counter to match
func (tf *TestFixtures) CreateTestScanEvents(code *models.Code, n int) ([]*models.ScanEvent, error) {
	events := make([]*models.ScanEvent, 0, n)
	for i := 0; i < n; i++ {
		e := tf.NewTestScanEvent(code)
		if err := tf.DB.DB.Create(e).Error; err != nil {
			return nil, fmt.Errorf("failed to create test scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := tf.DB.DB.Model(&models.Code{}).Where("id = ?", code.ID).
		UpdateColumn("scans_count", int64(n)+code.ScansCount).Error; err != nil {
		return nil, fmt.Errorf("failed to update scans count: %w", err)
	}
	code.ScansCount += int64(n)
	return events, nil
}
