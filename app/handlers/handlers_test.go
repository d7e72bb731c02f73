package handlers_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amirphl/Kyu-Ar/app/handlers"
	"github.com/amirphl/Kyu-Ar/app/services"
	businessflow "github.com/amirphl/Kyu-Ar/business_flow"
	"github.com/amirphl/Kyu-Ar/config"
	"github.com/amirphl/Kyu-Ar/repository"
	testingutil "github.com/amirphl/Kyu-Ar/testing"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Details any    `json:"details"`
	} `json:"error"`
}

func newTestApp(testDB *testingutil.TestDB) *fiber.App {
	cfg := config.RegistryConfig{
		ListDefaultLimit:     100,
		ListMaxLimit:         500,
		StatsRecentScans:     50,
		StatsTopReferrers:    10,
		SlugSuffixAttempts:   100,
		ExportMaxRows:        1000,
		StrictScanAccounting: true,
	}
	codeRepo := repository.NewCodeRepository(testDB.DB)
	scanRepo := repository.NewScanEventRepository(testDB.DB)

	codeHandler := handlers.NewCodeHandler(
		businessflow.NewCodeFlow(codeRepo, testDB.DB, cfg, nil),
		businessflow.NewScanFlow(codeRepo, scanRepo, testDB.DB, cfg, nil),
		"https://qr.example",
		5*time.Second,
	)
	imageHandler := handlers.NewImageHandler(businessflow.NewRenderFlow(codeRepo, services.NewQRRenderer()), 5*time.Second)

	app := fiber.New()
	app.Post("/codes", codeHandler.Create)
	app.Get("/codes", codeHandler.List)
	app.Get("/codes/:slug", codeHandler.Get)
	app.Get("/codes/:slug/redirect", codeHandler.Redirect)
	app.Get("/codes/:slug/stats", codeHandler.Stats)
	app.Get("/codes/:slug/scans.csv", codeHandler.ExportScansCSV)
	app.Get("/codes/:slug/scans.xlsx", codeHandler.ExportScansExcel)
	app.Get("/image.png", imageHandler.PNG)
	app.Get("/image.svg", imageHandler.SVG)
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, body
}

func decode(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCodeHandler_Create(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(testDB)

		t.Run("Created", func(t *testing.T) {
			resp, body := do(t, app, postJSON("/codes", `{"title":"My Menu","type":"URL","target_url":"https://example.com/menu","note":"lobby"}`))
			require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))

			env := decode(t, body)
			assert.True(t, env.Success)
			var code map[string]any
			require.NoError(t, json.Unmarshal(env.Data, &code))
			assert.Equal(t, "my-menu", code["slug"])
			assert.Equal(t, "URL", code["type"])
			assert.Equal(t, "https://example.com/menu", code["target_url"])
			assert.Equal(t, "https://qr.example/s/my-menu", code["short_url"])
			assert.Equal(t, float64(0), code["scans_count"])
		})

		t.Run("WiFiHidesStructuredData", func(t *testing.T) {
			resp, body := do(t, app, postJSON("/codes", `{"type":"WIFI","data":{"ssid":"net","password":"pw","encryption":"WPA"}}`))
			require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))

			var code map[string]any
			require.NoError(t, json.Unmarshal(decode(t, body).Data, &code))
			assert.Equal(t, "WIFI:T:WPA;S:net;P:pw;;", code["target_url"])
			assert.NotContains(t, code, "data")

			resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/codes", nil))
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			var list struct {
				Items []map[string]any `json:"items"`
			}
			require.NoError(t, json.Unmarshal(decode(t, body).Data, &list))
			require.NotEmpty(t, list.Items)
			for _, item := range list.Items {
				assert.NotContains(t, item, "data")
			}
		})

		tests := []struct {
			name     string
			body     string
			wantCode string
		}{
			{name: "MalformedJSON", body: `{"title":`, wantCode: "INVALID_REQUEST"},
			{name: "MissingType", body: `{"title":"x"}`, wantCode: "VALIDATION_ERROR"},
			{name: "UnsupportedType", body: `{"type":"PDF"}`, wantCode: "UNSUPPORTED_TYPE"},
			{name: "LowercaseType", body: `{"type":"wifi","data":{"ssid":"net"}}`, wantCode: "UNSUPPORTED_TYPE"},
			{name: "InvalidURL", body: `{"type":"URL","target_url":"not a url"}`, wantCode: "INVALID_TARGET_URL"},
			{name: "MissingURL", body: `{"type":"URL"}`, wantCode: "INVALID_TARGET_URL"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, body := do(t, app, postJSON("/codes", tt.body))
				assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, string(body))
				env := decode(t, body)
				assert.False(t, env.Success)
				assert.Equal(t, tt.wantCode, env.Error.Code)
			})
		}
		return nil
	})
	require.NoError(t, err)
}

func TestCodeHandler_GetAndList(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)

		code, err := fixtures.CreateTestCode()
		require.NoError(t, err)
		_, err = fixtures.CreateTestCode()
		require.NoError(t, err)

		resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/codes/"+code.Slug, nil))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var got map[string]any
		require.NoError(t, json.Unmarshal(decode(t, body).Data, &got))
		assert.Equal(t, code.ID.String(), got["id"])

		resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/codes/unknown-slug", nil))
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "CODE_NOT_FOUND", decode(t, body).Error.Code)

		resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/codes?limit=1", nil))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var list struct {
			Items []map[string]any `json:"items"`
			Count int              `json:"count"`
			Limit int              `json:"limit"`
		}
		require.NoError(t, json.Unmarshal(decode(t, body).Data, &list))
		assert.Len(t, list.Items, 1)
		assert.Equal(t, 1, list.Limit)

		resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/codes", nil))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NoError(t, json.Unmarshal(decode(t, body).Data, &list))
		assert.Equal(t, 2, list.Count)
		assert.Equal(t, 100, list.Limit)

		resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/codes?limit=abc", nil))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		return nil
	})
	require.NoError(t, err)
}

func TestCodeHandler_RedirectStatsAndExport(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)

		code, err := fixtures.CreateTestCodeWithSlug("visit-me")
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/codes/visit-me/redirect", nil)
			req.Header.Set("Referer", "https://flyer.example/")
			req.Header.Set("User-Agent", "scanner/1.0")
			resp, _ := do(t, app, req)
			require.Equal(t, fiber.StatusFound, resp.StatusCode)
			assert.Equal(t, code.TargetURL, resp.Header.Get("Location"))
		}

		resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/codes/nope/redirect", nil))
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/codes/visit-me/stats", nil))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var stats struct {
			ScansCount   int64 `json:"scans_count"`
			Recent       []map[string]any
			TopReferrers []struct {
				Referrer string `json:"referrer"`
				Count    int64  `json:"count"`
			} `json:"top_referrers"`
		}
		require.NoError(t, json.Unmarshal(decode(t, body).Data, &stats))
		assert.Equal(t, int64(2), stats.ScansCount)
		assert.Len(t, stats.Recent, 2)
		require.Len(t, stats.TopReferrers, 1)
		assert.Equal(t, "https://flyer.example/", stats.TopReferrers[0].Referrer)
		assert.Equal(t, int64(2), stats.TopReferrers[0].Count)

		resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/codes/visit-me/scans.csv", nil))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
		assert.Equal(t, "attachment; filename=scans_visit-me.csv", resp.Header.Get("Content-Disposition"))
		assert.Len(t, strings.Split(strings.TrimSpace(string(body)), "\n"), 3)

		resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/codes/visit-me/scans.xlsx", nil))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "attachment; filename=scans_visit-me.xlsx", resp.Header.Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(body, []byte("PK")))

		resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/codes/nope/scans.csv", nil))
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		return nil
	})
	require.NoError(t, err)
}

func TestImageHandler(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)

		code, err := fixtures.CreateTestCode()
		require.NoError(t, err)

		t.Run("PNG", func(t *testing.T) {
			resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/image.png?data=hello&scale=2&border=1", nil))
			require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
			assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
			img, err := png.Decode(bytes.NewReader(body))
			require.NoError(t, err)
			assert.Equal(t, (21+2)*2, img.Bounds().Dx())
		})

		t.Run("SVGFromSlug", func(t *testing.T) {
			resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/image.svg?slug="+code.Slug+"&dark=navy", nil))
			require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
			assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
			assert.Contains(t, string(body), "#000080")
		})

		tests := []struct {
			name       string
			target     string
			wantStatus int
			wantCode   string
		}{
			{name: "MissingData", target: "/image.png", wantStatus: fiber.StatusBadRequest, wantCode: "MISSING_DATA"},
			{name: "ScaleOutOfRange", target: "/image.png?data=x&scale=50", wantStatus: fiber.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
			{name: "ScaleNotNumber", target: "/image.png?data=x&scale=big", wantStatus: fiber.StatusBadRequest, wantCode: "INVALID_REQUEST"},
			{name: "BadDirection", target: "/image.svg?data=x&gradient_start=red&gradient_end=blue&gradient_direction=radial", wantStatus: fiber.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
			{name: "BadColor", target: "/image.svg?data=x&dark=nope", wantStatus: fiber.StatusBadRequest, wantCode: "INVALID_IMAGE_OPTIONS"},
			{name: "UnknownSlug", target: "/image.svg?slug=ghost", wantStatus: fiber.StatusNotFound, wantCode: "CODE_NOT_FOUND"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, body := do(t, app, httptest.NewRequest(http.MethodGet, tt.target, nil))
				assert.Equal(t, tt.wantStatus, resp.StatusCode, string(body))
				assert.Equal(t, tt.wantCode, decode(t, body).Error.Code)
			})
		}
		return nil
	})
	require.NoError(t, err)
}
