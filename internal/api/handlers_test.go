package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senzi/weibochat-insight/internal/cache"
	"github.com/senzi/weibochat-insight/internal/config"
	"github.com/senzi/weibochat-insight/internal/dataset"
	"github.com/senzi/weibochat-insight/internal/session"
)

func setupTestServer(t *testing.T) (http.Handler, string) {
	t.Helper()
	dataDir := t.TempDir()

	c, err := cache.New(config.CacheConfig{Type: "local", LocalPath: t.TempDir()})
	require.NoError(t, err)

	sess := session.New(dataset.NewStore(dataDir), c)
	return SetupRoutes(NewHandlers(sess)), dataDir
}

func writeProcessed(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	data := ""
	for _, l := range lines {
		data += l + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0644))
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func selectFiles(t *testing.T, h http.Handler, names ...string) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/select_files", map[string][]string{"files": names})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

const (
	textLine = `{"id":"1","time":1700000000,"from_uid":"u1","screen_name":"alice","is_text":true,"token_count":4,"content_len":11}`
	webLine  = `{"id":"2","time":1700000060,"from_uid":"u2","screen_name":"bob","is_web":true}`
	redLine  = `{"id":"3","time":1700000120,"from_uid":"u1","screen_name":"alice","is_redpacket":true,"redpacket_amount":0.52}`
)

func TestHealth(t *testing.T) {
	h, _ := setupTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestGetFiles(t *testing.T) {
	h, dir := setupTestServer(t)
	writeProcessed(t, dir, "a.ndjson", textLine)
	writeProcessed(t, dir, "b.ndjson", webLine)

	rec := doJSON(t, h, http.MethodGet, "/api/files", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Available []string `json:"available"`
		Selected  []string `json:"selected"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"a.ndjson", "b.ndjson"}, resp.Available)
	assert.Empty(t, resp.Selected)
}

func TestSelectFiles(t *testing.T) {
	h, dir := setupTestServer(t)
	writeProcessed(t, dir, "a.ndjson", textLine, webLine)

	rec := doJSON(t, h, http.MethodPost, "/api/select_files", map[string][]string{"files": {"a.ndjson"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success      bool     `json:"success"`
		Selected     []string `json:"selected_files"`
		MessageCount int      `json:"message_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"a.ndjson"}, resp.Selected)
	assert.Equal(t, 2, resp.MessageCount)
}

func TestSelectFilesErrors(t *testing.T) {
	h, dir := setupTestServer(t)
	writeProcessed(t, dir, "a.ndjson", textLine)
	writeProcessed(t, dir, "empty.ndjson")

	tests := []struct {
		name   string
		files  []string
		status int
		detail string
	}{
		{"empty list", []string{}, http.StatusBadRequest, "no files selected"},
		{"unknown names", []string{"ghost.ndjson"}, http.StatusBadRequest, "ghost.ndjson"},
		{"zero records", []string{"empty.ndjson"}, http.StatusNotFound, "no records"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/select_files", map[string][]string{"files": tt.files})
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.detail)
		})
	}

	rec := doJSON(t, h, http.MethodPost, "/api/select_files", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAggregationBeforeLoad(t *testing.T) {
	h, _ := setupTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/summary", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	h, dir := setupTestServer(t)
	writeProcessed(t, dir, "a.ndjson", textLine, webLine, redLine)
	selectFiles(t, h, "a.ndjson")

	rec := doJSON(t, h, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalMessages        int     `json:"total_messages"`
		TotalUsers           int     `json:"total_users"`
		TotalRedpacketAmount float64 `json:"total_redpacket_amount"`
		AvgTokenLength       float64 `json:"avg_token_length"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalMessages)
	assert.Equal(t, 2, resp.TotalUsers)
	assert.Equal(t, 0.52, resp.TotalRedpacketAmount)
	assert.Equal(t, 4.0, resp.AvgTokenLength)
}

func TestAggregationIdempotent(t *testing.T) {
	h, dir := setupTestServer(t)
	writeProcessed(t, dir, "a.ndjson", textLine, webLine, redLine)
	selectFiles(t, h, "a.ndjson")

	first := doJSON(t, h, http.MethodGet, "/api/daily", nil)
	second := doJSON(t, h, http.MethodGet, "/api/daily", nil)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestSelectionChangeChangesResults(t *testing.T) {
	h, dir := setupTestServer(t)
	writeProcessed(t, dir, "a.ndjson", textLine)
	writeProcessed(t, dir, "b.ndjson", webLine, redLine)

	selectFiles(t, h, "a.ndjson")
	recA := doJSON(t, h, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, recA.Code)

	selectFiles(t, h, "b.ndjson")
	recB := doJSON(t, h, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, recB.Code)

	// No value computed under a.ndjson leaks into the b.ndjson selection.
	assert.NotEqual(t, recA.Body.String(), recB.Body.String())
	assert.Contains(t, recB.Body.String(), `"total_messages":2`)
}

func TestHeatmapShape(t *testing.T) {
	h, dir := setupTestServer(t)
	writeProcessed(t, dir, "a.ndjson", textLine)
	selectFiles(t, h, "a.ndjson")

	rec := doJSON(t, h, http.MethodGet, "/api/hourly_heatmap", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cells [][3]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cells))
	require.Len(t, cells, 1)
	assert.Equal(t, 1, cells[0][2])
}

func TestUserTrendEndpoint(t *testing.T) {
	h, dir := setupTestServer(t)
	writeProcessed(t, dir, "a.ndjson", textLine, webLine, redLine)
	selectFiles(t, h, "a.ndjson")

	rec := doJSON(t, h, http.MethodGet, "/api/user_trend/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var points []struct {
		Date         string `json:"date"`
		MessageCount int    `json:"message_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 1)
	assert.Equal(t, 2, points[0].MessageCount)

	rec = doJSON(t, h, http.MethodGet, "/api/user_trend/nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}
