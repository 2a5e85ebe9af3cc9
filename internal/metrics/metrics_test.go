package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPromCollector_RegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPromCollector(reg)

	c.RecordUploadSuccess("audio", 2048, 150*time.Millisecond)
	c.RecordUploadFailure("image")
	c.RecordPushEnabled()
	c.RecordPushDisabled()
	c.RecordTrackSwitch()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["caminho_upload_success_total"])
	require.True(t, names["caminho_upload_bytes_total"])
	require.True(t, names["caminho_push_toggle_total"])
	require.True(t, names["caminho_playback_track_switch_total"])
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPromCollector(reg)
	c.RecordTrackSwitch()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
