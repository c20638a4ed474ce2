package handler

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/sse"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

func TestSSEHandler_RequiresToken(t *testing.T) {
	h := NewSSEHandler(sse.NewHub())
	r := gin.New()
	r.GET("/v1/history/stream", h.Stream)

	w, _ := do(t, r, http.MethodGet, "/v1/history/stream", nil)
	assert.Equal(t, 401, w.Code)

	w, env := do(t, r, http.MethodGet, "/v1/history/stream?token=bogus", nil)
	assert.Equal(t, 401, w.Code)
	assert.Equal(t, "INVALID_TOKEN", env.Error.Code)
}

func TestSSEHandler_StreamsActivity(t *testing.T) {
	utils.InitJWT("test-secret", time.Hour)
	token, _, err := utils.GenerateJWT(7, "ops@example.com")
	require.NoError(t, err)

	hub := sse.NewHub()
	h := NewSSEHandler(hub)
	h.pingInterval = time.Hour
	r := gin.New()
	r.GET("/v1/history/stream", h.Stream)

	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/history/stream?token=" + token)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	readUntil := func(prefix string) string {
		t.Helper()
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q", prefix)
		return ""
	}

	readUntil("event:connected")
	require.Equal(t, 1, hub.ClientCount())

	sse.NewHubNotifier(hub).NotifyActivity(&models.ActivityRecord{
		ID: "rec-1", ItemType: models.ItemAssets, ActionType: models.ActionCreate, UserID: "7",
	})
	readUntil("event:activity.created")
	assert.Contains(t, readUntil("data:"), `"_id":"rec-1"`)

	resp.Body.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
