package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mock_interview_backend/internal/util"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func liveServer(t *testing.T, run *LiveRun, limiter func() *rate.Limiter) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := LiveUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ServeLive(run, conn, limiter())
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendLive(t *testing.T, conn *websocket.Conn, typ string, args *CommandArgs) {
	t.Helper()
	msg := map[string]interface{}{"type": typ}
	if args != nil {
		msg["data"] = args
	}
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil 读取事件直到出现 typ，返回该事件及沿途收到的类型
func readUntil(t *testing.T, conn *websocket.Conn, typ string) (wireEvent, []string) {
	t.Helper()
	var seen []string
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var ev wireEvent
		require.NoError(t, conn.ReadJSON(&ev), "waiting for %q, saw %v", typ, seen)
		seen = append(seen, ev.Type)
		if ev.Type == typ {
			return ev, seen
		}
	}
}

func TestLiveClientAnswerFlow(t *testing.T) {
	f := newLiveFixture(t)
	run, _, err := f.svc.Open(context.Background(), "user@example.com", "mock-1", true)
	require.NoError(t, err)

	conn := liveServer(t, run, func() *rate.Limiter { return rate.NewLimiter(rate.Inf, 1) })
	readUntil(t, conn, EventState)

	supported := true
	sendLive(t, conn, CmdHello, &CommandArgs{SpeechSupported: &supported})
	readUntil(t, conn, EventState)

	sendLive(t, conn, CmdStart, nil)
	readUntil(t, conn, EventRecognitionStart)

	sendLive(t, conn, CmdFragment, &CommandArgs{Text: "Goroutines are multiplexed onto threads", Final: true})
	readUntil(t, conn, EventTurn)

	sendLive(t, conn, CmdStop, nil)
	ev, _ := readUntil(t, conn, EventGraded)

	var view struct {
		Kind   string `json:"kind"`
		Index  int    `json:"index"`
		Rating int    `json:"rating"`
		Answer string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(ev.Data, &view))
	assert.Equal(t, "graded", view.Kind)
	assert.Equal(t, 0, view.Index)
	assert.Equal(t, 7, view.Rating)
	assert.Equal(t, "Goroutines are multiplexed onto threads", view.Answer)
	require.Len(t, f.gradeRequests(), 1)
}

func TestLiveClientRateLimited(t *testing.T) {
	f := newLiveFixture(t)
	run, _, err := f.svc.Open(context.Background(), "user@example.com", "mock-1", true)
	require.NoError(t, err)

	conn := liveServer(t, run, func() *rate.Limiter { return rate.NewLimiter(rate.Limit(0.001), 1) })
	readUntil(t, conn, EventState)

	sendLive(t, conn, CmdState, nil)
	readUntil(t, conn, EventState)

	sendLive(t, conn, CmdNext, nil)
	ev, _ := readUntil(t, conn, EventError)

	var resp util.Response
	require.NoError(t, json.Unmarshal(ev.Data, &resp))
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, util.ErrRateLimited.Error(), resp.Message)

	// 被限流的指令不生效
	assert.Equal(t, "What is a goroutine?", run.Controller().State().Question)
}

func TestLiveClientInvalidMessage(t *testing.T) {
	f := newLiveFixture(t)
	run, _, err := f.svc.Open(context.Background(), "user@example.com", "mock-1", true)
	require.NoError(t, err)

	conn := liveServer(t, run, func() *rate.Limiter { return rate.NewLimiter(rate.Inf, 1) })
	readUntil(t, conn, EventState)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	ev, _ := readUntil(t, conn, EventError)

	var resp util.Response
	require.NoError(t, json.Unmarshal(ev.Data, &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLiveClientCloseRunSendsCloseFrame(t *testing.T) {
	f := newLiveFixture(t)
	run, _, err := f.svc.Open(context.Background(), "user@example.com", "mock-1", true)
	require.NoError(t, err)

	conn := liveServer(t, run, func() *rate.Limiter { return rate.NewLimiter(rate.Inf, 1) })
	readUntil(t, conn, EventState)

	require.NoError(t, f.svc.CloseRun("user@example.com", "mock-1"))
	readUntil(t, conn, EventClosed)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
