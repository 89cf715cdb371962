package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sweeney/forcepad/internal/logic"
	"github.com/sweeney/forcepad/internal/status"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*httptest.Server, *Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:       50,
		HeartbeatMs:  900000,
		Broker:       "tcp://192.168.1.200:1883",
		HTTPAddr:     ":80",
		SerialDevice: "/dev/ttyUSB0",
		LEDLine:      17,
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return ts, srv, tr
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestJSONEndpoint(t *testing.T) {
	ts, _, tr := newTestServer(t)
	tr.Update(
		logic.ChannelView{Raw: 4500, Pressed: true, Baseline: 200, Threshold: 300, Phase: logic.Pressed},
		logic.ChannelView{Raw: 50, Baseline: 210, Threshold: 300, Phase: logic.Idle},
		true,
		logic.GestureCounts{ShortPress: 5, DoublePress: 2},
	)
	tr.SetKeyboardConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if !sj.Status.Left.Pressed || sj.Status.Left.Phase != "PRESSED" {
		t.Errorf("Left: got %+v", sj.Status.Left)
	}
	if sj.Status.Right.Raw != 50 {
		t.Errorf("Right.Raw: got %d, want 50", sj.Status.Right.Raw)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.Keyboard.Connected {
		t.Error("expected Keyboard.Connected=true")
	}
	if sj.Status.Keyboard.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("Keyboard.Broker: got %q", sj.Status.Keyboard.Broker)
	}
	if sj.Status.Counts.ShortPress != 5 {
		t.Errorf("Counts.ShortPress: got %d, want 5", sj.Status.Counts.ShortPress)
	}
	if sj.Status.Counts.DoublePress != 2 {
		t.Errorf("Counts.DoublePress: got %d, want 2", sj.Status.Counts.DoublePress)
	}
	if sj.Status.Config.PollMs != 50 {
		t.Errorf("Config.PollMs: got %d, want 50", sj.Status.Config.PollMs)
	}
	if sj.Status.Config.LEDLine != 17 {
		t.Errorf("Config.LEDLine: got %d, want 17", sj.Status.Config.LEDLine)
	}
}

func TestJSONUnknownPhaseBeforeFirstSample(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.Left.Phase != "UNKNOWN" {
		t.Errorf("Left.Phase before first sample: got %q, want UNKNOWN", sj.Status.Left.Phase)
	}
	if sj.Status.Ready {
		t.Error("expected Ready=false before calibration")
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, _, tr := newTestServer(t)
	tr.Update(logic.ChannelView{Raw: 1234, Phase: logic.Idle}, logic.ChannelView{Phase: logic.LongPressed}, true, logic.GestureCounts{})
	tr.Record(status.GestureRecord{Side: logic.Left, Kind: logic.ShortPress, Command: logic.PlayPause, Sent: true})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"1234", "LONG_PRESSED", "PLAY_PAUSE", "line 17"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, _, tr := newTestServer(t)

	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.Ready {
		t.Error("expected Ready=false initially")
	}

	tr.Update(logic.ChannelView{Phase: logic.Idle}, logic.ChannelView{Phase: logic.AwaitingSecondPress, PressCount: 1}, true, logic.GestureCounts{LongPress: 1})
	tr.SetKeyboardConnected(true)

	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if !sj2.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if sj2.Status.Right.Phase != "AWAITING_SECOND_PRESS" {
		t.Errorf("Right.Phase: got %q", sj2.Status.Right.Phase)
	}
	if sj2.Status.Right.PressCount != 1 {
		t.Errorf("Right.PressCount: got %d, want 1", sj2.Status.Right.PressCount)
	}
	if !sj2.Status.Keyboard.Connected {
		t.Error("expected keyboard connected after update")
	}
}

func readStatus(t *testing.T, conn *websocket.Conn) status.StatusJSON {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read ws message: %v", err)
	}
	var sj status.StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("decode ws message: %v", err)
	}
	return sj
}

func TestWebsocketSnapshotOnConnectAndBroadcast(t *testing.T) {
	ts, srv, tr := newTestServer(t)
	tr.Update(logic.ChannelView{Raw: 77, Phase: logic.Idle}, logic.ChannelView{Phase: logic.Idle}, true, logic.GestureCounts{})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()

	first := readStatus(t, conn)
	if first.Status.Event != EventSnapshot {
		t.Errorf("Event: got %q, want %s", first.Status.Event, EventSnapshot)
	}
	if first.Status.Left.Raw != 77 {
		t.Errorf("Left.Raw: got %d, want 77", first.Status.Left.Raw)
	}

	waitUntil(t, time.Second, func() bool { return srv.Hub().Clients() == 1 }, "client not registered in time")

	tr.Update(logic.ChannelView{Raw: 4100, Pressed: true, Phase: logic.Pressed}, logic.ChannelView{Phase: logic.Idle}, true, logic.GestureCounts{})
	srv.Broadcast()

	second := readStatus(t, conn)
	if second.Status.Left.Raw != 4100 || !second.Status.Left.Pressed {
		t.Errorf("Left after broadcast: got %+v", second.Status.Left)
	}
}

func TestWebsocketClientUnregistersOnClose(t *testing.T) {
	ts, srv, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	readStatus(t, conn)
	waitUntil(t, time.Second, func() bool { return srv.Hub().Clients() == 1 }, "client not registered in time")

	conn.Close()
	waitUntil(t, 2*time.Second, func() bool { return srv.Hub().Clients() == 0 }, "client not unregistered after close")
}
