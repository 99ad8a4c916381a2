package collector

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bilal/solar-monitor/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestPostLog(t *testing.T) {
	h := NewServer(newTestStore(t), metrics.NewCollector()).Routes()

	code, out := do(t, h, http.MethodPost, "/solar-log",
		`{"device_id":"esp32_solar_monitor","timestamp":1700000000,"wifi_rssi":-62,"free_heap":180000,"uptime":3600000}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "Log received and saved", out["message"])
	assert.Equal(t, "solar_log_2023-11-14.txt", out["filename"])

	code, out = do(t, h, http.MethodGet, "/solar-log/status", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["file_exists"])
	assert.Equal(t, float64(1), out["total_entries"])

	code, out = do(t, h, http.MethodGet, "/solar-log/files", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, out["files"], 1)
}

func TestPostLogRejectsEmpty(t *testing.T) {
	h := NewServer(newTestStore(t), nil).Routes()
	for _, body := range []string{"", "{}", "null", "not json"} {
		code, out := do(t, h, http.MethodPost, "/solar-log", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.Equal(t, "No data received", out["error"])
	}
}

func TestPostLogAcceptsFractionalTimestamp(t *testing.T) {
	h := NewServer(newTestStore(t), nil).Routes()
	code, out := do(t, h, http.MethodPost, "/solar-log", `{"device_id":"dev","timestamp":1700000000.5,"wifi_rssi":-61.5}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", out["status"])

	code, _ = do(t, h, http.MethodPost, "/solar-log", `{"wifi_rssi":"strong"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewServer(newTestStore(t), nil).Routes()
	code, _ := do(t, h, http.MethodGet, "/solar-log", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	code, _ = do(t, h, http.MethodPost, "/solar-log/files", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestPostLogTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	h := NewServer(newTestStore(t), nil).Routes()
	code, _ := do(t, h, http.MethodPost, "/solar-log", `{"device_id":"dev"}`)
	require.Equal(t, http.StatusOK, code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), buf.String())
	assert.Equal(t, "collector", line["component"])
	assert.Equal(t, "log entry written", line["message"])
}
