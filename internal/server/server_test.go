package server

import (
	"encoding/csv"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/hdiview/internal/catalog"
	"github.com/KaramelBytes/hdiview/internal/dashboard"
	"github.com/KaramelBytes/hdiview/internal/logging"
	"github.com/KaramelBytes/hdiview/internal/render"
	"github.com/KaramelBytes/hdiview/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter() *gin.Engine {
	m := store.NewMemoryStore()
	for y := 1990; y <= 2000; y++ {
		m.Add(store.KindCountry, "India", "Female Primary Education", y, float64(y-1940))
		m.Add(store.KindCountry, "Chile", "Female Primary Education", y, float64(y-1920))
		m.Add(store.KindState, "Kerala", "Female Primary Education", y, 90)
	}
	eng := dashboard.New(m, catalog.Default(), logging.Discard())
	return New(eng, render.Options{Width: 320, Height: 240}, logging.Discard()).Router()
}

func do(r *gin.Engine, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type viewResponse struct {
	Params map[string]string `json:"params"`
	Share  string            `json:"share"`
	Chart  struct {
		Grid   int `json:"grid"`
		Panels []struct {
			Metric    string `json:"metric"`
			Overlays  []struct{ Label string } `json:"overlays"`
			Primaries []struct{ Label string } `json:"primaries"`
		} `json:"panels"`
	} `json:"chart"`
	Downloads bool `json:"downloads"`
}

func scopeCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == ScopeCookie {
			return c
		}
	}
	return nil
}

func TestView_PartialQueryReturnsCanonicalParams(t *testing.T) {
	w := do(setupTestRouter(), http.MethodGet, "/api/view?c=chile,India&s=Kerala")
	require.Equal(t, http.StatusOK, w.Code)

	var resp viewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "true", resp.Params["world"])
	assert.Equal(t, "Chile,India", resp.Params["c"])
	assert.Equal(t, "Kerala", resp.Params["s"])
	assert.Equal(t, "Female", resp.Params["gender"])
	assert.Equal(t, "1960", resp.Params["sy"])
	assert.Equal(t, "false", resp.Params["vertical"])
	assert.True(t, resp.Downloads)

	require.Equal(t, 1, resp.Chart.Grid)
	p := resp.Chart.Panels[0]
	require.Len(t, p.Overlays, 1)
	assert.Equal(t, "Kerala", p.Overlays[0].Label)
	require.Len(t, p.Primaries, 2)
	assert.Equal(t, "Chile", p.Primaries[0].Label)

	c := scopeCookie(w)
	require.NotNil(t, c)
	assert.Equal(t, "true", c.Value)
}

func TestView_CookieSuppliesPriorScope(t *testing.T) {
	w := do(setupTestRouter(), http.MethodGet, "/api/view?s=Goa", &http.Cookie{Name: ScopeCookie, Value: "false"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp viewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "false", resp.Params["world"])
	assert.Equal(t, "Goa", resp.Params["s"])
	assert.False(t, resp.Downloads)
}

func TestScopeToggle(t *testing.T) {
	r := setupTestRouter()
	w := do(r, http.MethodPost, "/api/scope/india")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "false", scopeCookie(w).Value)
	var resp viewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Kerala", resp.Params["s"])

	w = do(r, http.MethodPost, "/api/scope/mars")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChartPNG(t *testing.T) {
	w := do(setupTestRouter(), http.MethodGet, "/api/chart.png?c=India&other=HDI&vertical=true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	// HDI has no data here, so only the primary panel is drawn
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestExportCSV(t *testing.T) {
	w := do(setupTestRouter(), http.MethodGet, "/api/export.csv?c=India&sy=1999&ey=2000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Yea_Pri.csv")

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Entity", "Year", "Female Primary Education"},
		{"India", "1999", "59"},
		{"India", "2000", "60"},
	}, rows)
}

func TestExportUnavailableInIndiaScope(t *testing.T) {
	w := do(setupTestRouter(), http.MethodGet, "/api/export.xlsx?world=false")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportXLSX(t *testing.T) {
	w := do(setupTestRouter(), http.MethodGet, "/api/export.xlsx")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))
}

func TestCatalogAndHealth(t *testing.T) {
	r := setupTestRouter()
	w := do(r, http.MethodGet, "/api/catalog?scope=india")
	require.Equal(t, http.StatusOK, w.Code)
	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "india", resp.Scope)
	assert.Contains(t, resp.Entities, "Kerala")
	assert.Empty(t, resp.Comparison)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/catalog?scope=moon").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz").Code)

	do(r, http.MethodGet, "/api/view")
	w = do(r, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hdiview_passes_total")
}
