package businessflow_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"sync"
	"testing"

	businessflow "github.com/amirphl/Kyu-Ar/business_flow"
	"github.com/amirphl/Kyu-Ar/models"
	"github.com/amirphl/Kyu-Ar/repository"
	testingutil "github.com/amirphl/Kyu-Ar/testing"
	"github.com/amirphl/Kyu-Ar/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// failingScanRepository rejects every write and delegates reads
type failingScanRepository struct {
	repository.ScanEventRepository
}

func (failingScanRepository) Save(context.Context, *models.ScanEvent) error {
	return errors.New("disk full")
}

func newScanFlow(testDB *testingutil.TestDB, metrics businessflow.RegistryMetrics) businessflow.ScanFlow {
	return businessflow.NewScanFlow(
		repository.NewCodeRepository(testDB.DB),
		repository.NewScanEventRepository(testDB.DB),
		testDB.DB,
		testRegistryConfig(),
		metrics,
	)
}

func reloadCode(t *testing.T, testDB *testingutil.TestDB, id uuid.UUID) *models.Code {
	t.Helper()
	code, err := repository.NewCodeRepository(testDB.DB).ByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, code)
	return code
}

func TestScanFlow_Visit(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		metrics := &countingMetrics{}
		flow := newScanFlow(testDB, metrics)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		code, err := fixtures.CreateTestCode()
		require.NoError(t, err)

		target, err := flow.Visit(ctx, code.Slug, businessflow.NewScanMetadata("203.0.113.45:51234", "Mozilla/5.0", "https://news.example/"))
		require.NoError(t, err)
		assert.Equal(t, code.TargetURL, target)

		assert.Equal(t, int64(1), reloadCode(t, testDB, code.ID).ScansCount)
		events, err := repository.NewScanEventRepository(testDB.DB).ListScans(ctx, code.ID, 0, repository.SortDesc)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "203.0.113.0", *events[0].IP)
		assert.Equal(t, "Mozilla/5.0", *events[0].UserAgent)
		assert.Equal(t, "https://news.example/", *events[0].Referrer)
		assert.Equal(t, int64(1), metrics.recorded.Load())

		_, err = flow.Visit(ctx, "missing-slug", nil)
		require.Error(t, err)
		assert.True(t, businessflow.IsCodeNotFound(err))
		return nil
	})
	require.NoError(t, err)
}

func TestScanFlow_VisitAccounting(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		codeRepo := repository.NewCodeRepository(testDB.DB)
		failing := failingScanRepository{repository.NewScanEventRepository(testDB.DB)}

		code, err := fixtures.CreateTestCode()
		require.NoError(t, err)

		t.Run("StrictFailsVisit", func(t *testing.T) {
			metrics := &countingMetrics{}
			flow := businessflow.NewScanFlow(codeRepo, failing, testDB.DB, testRegistryConfig(), metrics)

			target, err := flow.Visit(ctx, code.Slug, businessflow.NewScanMetadata("10.0.0.1", "", ""))
			require.Error(t, err)
			assert.Empty(t, target)
			assert.True(t, businessflow.IsStorageError(err))
			assert.Equal(t, int64(1), metrics.recordFailure.Load())
		})

		t.Run("LenientStillRedirects", func(t *testing.T) {
			cfg := testRegistryConfig()
			cfg.StrictScanAccounting = false
			metrics := &countingMetrics{}
			flow := businessflow.NewScanFlow(codeRepo, failing, testDB.DB, cfg, metrics)

			reqCtx := context.WithValue(ctx, utils.RequestIDKey, "req-1")
			target, err := flow.Visit(reqCtx, code.Slug, businessflow.NewScanMetadata("10.0.0.1", "", ""))
			require.NoError(t, err)
			assert.Equal(t, code.TargetURL, target)
			assert.Equal(t, int64(1), metrics.recordFailure.Load())
			assert.Equal(t, int64(0), metrics.recorded.Load())
		})

		assert.Equal(t, int64(0), reloadCode(t, testDB, code.ID).ScansCount)
		return nil
	})
	require.NoError(t, err)
}

func TestScanFlow_RecordScan(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newScanFlow(testDB, nil)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		code, err := fixtures.CreateTestCode()
		require.NoError(t, err)

		t.Run("WithoutMetadata", func(t *testing.T) {
			event, err := flow.RecordScan(ctx, code, nil)
			require.NoError(t, err)
			assert.Equal(t, code.ID, event.CodeID)
			assert.Nil(t, event.IP)
			assert.Nil(t, event.Referrer)
			assert.Nil(t, event.UserAgent)
			assert.False(t, event.Timestamp.IsZero())
		})

		t.Run("InvalidIPDropped", func(t *testing.T) {
			event, err := flow.RecordScan(ctx, code, businessflow.NewScanMetadata("not-an-ip", "curl/8.0", ""))
			require.NoError(t, err)
			assert.Nil(t, event.IP)
			assert.Equal(t, "curl/8.0", *event.UserAgent)
		})

		t.Run("NilCode", func(t *testing.T) {
			_, err := flow.RecordScan(ctx, nil, nil)
			assert.True(t, businessflow.IsInvalidInput(err))
		})

		t.Run("UnsavedCodeRollsBack", func(t *testing.T) {
			ghost := &models.Code{ID: uuid.New()}
			_, err := flow.RecordScan(ctx, ghost, nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsStorageError(err))

			count, err := repository.NewScanEventRepository(testDB.DB).CountByCode(ctx, ghost.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), count)
		})

		assert.Equal(t, int64(2), reloadCode(t, testDB, code.ID).ScansCount)
		return nil
	})
	require.NoError(t, err)
}

func TestScanFlow_RecordScanConcurrent(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		metrics := &countingMetrics{}
		flow := newScanFlow(testDB, metrics)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		code, err := fixtures.CreateTestCode()
		require.NoError(t, err)

		const n = 25
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := flow.RecordScan(ctx, code, businessflow.NewScanMetadata("198.51.100.7", "bot", "")); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		assert.Equal(t, int64(n), reloadCode(t, testDB, code.ID).ScansCount)
		count, err := repository.NewScanEventRepository(testDB.DB).CountByCode(ctx, code.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(n), count)
		assert.Equal(t, int64(n), metrics.recorded.Load())
		return nil
	})
	require.NoError(t, err)
}

// recordReferrers records one scan per entry; "" records a scan without referrer
func recordReferrers(t *testing.T, flow businessflow.ScanFlow, code *models.Code, referrers ...string) {
	t.Helper()
	for _, ref := range referrers {
		_, err := flow.RecordScan(context.Background(), code, businessflow.NewScanMetadata("192.0.2.10", "test-agent", ref))
		require.NoError(t, err)
	}
}

func TestScanFlow_Stats(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		cfg := testRegistryConfig()
		cfg.StatsRecentScans = 3
		cfg.StatsTopReferrers = 2
		flow := businessflow.NewScanFlow(
			repository.NewCodeRepository(testDB.DB),
			repository.NewScanEventRepository(testDB.DB),
			testDB.DB, cfg, nil,
		)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		code, err := fixtures.CreateTestCode()
		require.NoError(t, err)

		empty, err := flow.Stats(ctx, code.Slug)
		require.NoError(t, err)
		assert.Equal(t, int64(0), empty.ScansCount)
		assert.Empty(t, empty.Recent)
		assert.Empty(t, empty.TopReferrers)

		recordReferrers(t, flow, code, "https://a.example/", "https://b.example/", "https://a.example/", "", "https://a.example/")

		stats, err := flow.Stats(ctx, code.Slug)
		require.NoError(t, err)
		assert.Equal(t, code.Slug, stats.Slug)
		assert.Equal(t, code.Title, stats.Title)
		assert.Equal(t, int64(5), stats.ScansCount)
		assert.Len(t, stats.Recent, 3)
		for i := 1; i < len(stats.Recent); i++ {
			assert.GreaterOrEqual(t, stats.Recent[i-1].Timestamp, stats.Recent[i].Timestamp)
		}
		require.Len(t, stats.TopReferrers, 2)
		assert.Equal(t, "https://a.example/", *stats.TopReferrers[0].Referrer)
		assert.Equal(t, int64(3), stats.TopReferrers[0].Count)
		assert.Equal(t, int64(1), stats.TopReferrers[1].Count)

		_, err = flow.Stats(ctx, "nope")
		assert.True(t, businessflow.IsCodeNotFound(err))
		return nil
	})
	require.NoError(t, err)
}

func TestScanFlow_Export(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newScanFlow(testDB, nil)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		code, err := fixtures.CreateTestCodeWithSlug("export-me")
		require.NoError(t, err)
		recordReferrers(t, flow, code, "https://a.example/", "", "https://a.example/")

		t.Run("CSV", func(t *testing.T) {
			name, body, err := flow.ExportScansCSV(ctx, code.Slug)
			require.NoError(t, err)
			assert.Equal(t, "scans_export-me.csv", name)

			records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, 4)
			assert.Equal(t, []string{"timestamp", "referrer", "user_agent", "ip"}, records[0])
			for _, r := range records[1:] {
				assert.Equal(t, "test-agent", r[2])
				assert.Equal(t, "192.0.2.0", r[3])
			}
		})

		t.Run("Excel", func(t *testing.T) {
			name, body, err := flow.ExportScansExcel(ctx, code.Slug)
			require.NoError(t, err)
			assert.Equal(t, "scans_export-me.xlsx", name)

			xl, err := excelize.OpenReader(bytes.NewReader(body))
			require.NoError(t, err)
			defer func() { _ = xl.Close() }()

			assert.Equal(t, []string{"scans", "referrers"}, xl.GetSheetList())

			rows, err := xl.GetRows("scans")
			require.NoError(t, err)
			require.Len(t, rows, 4)
			assert.Equal(t, "timestamp", rows[0][0])

			refRows, err := xl.GetRows("referrers")
			require.NoError(t, err)
			require.Len(t, refRows, 3)
			assert.Equal(t, []string{"referrer", "count"}, refRows[0])
			assert.Equal(t, []string{"https://a.example/", "2"}, refRows[1])
		})

		t.Run("UnknownSlug", func(t *testing.T) {
			_, _, err := flow.ExportScansCSV(ctx, "missing")
			assert.True(t, businessflow.IsCodeNotFound(err))
			_, _, err = flow.ExportScansExcel(ctx, "missing")
			assert.True(t, businessflow.IsCodeNotFound(err))
		})
		return nil
	})
	require.NoError(t, err)
}
