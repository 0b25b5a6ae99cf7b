package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dukerupert/toodo/internal/database"
)

func setupServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, cfg, logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s status = %d, want %d (%s)", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

type taskJSON struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Points      int    `json:"points"`
	IsCompleted bool   `json:"is_completed"`
}

func TestHealth(t *testing.T) {
	ts := setupServer(t, Config{})
	resp := do(t, ts, "GET", "/health", nil)
	expectStatus(t, resp, http.StatusOK)
	body := decode[map[string]any](t, resp)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if v, _ := body["schema_version"].(float64); v < 1 {
		t.Errorf("schema_version = %v, want >= 1", body["schema_version"])
	}
}

func TestTaskAndRedeemFlow(t *testing.T) {
	ts := setupServer(t, Config{UndoWindow: time.Minute})

	resp := do(t, ts, "POST", "/api/tasks", map[string]any{"title": "A", "difficulty": "Hard"})
	expectStatus(t, resp, http.StatusCreated)
	a := decode[taskJSON](t, resp)
	if a.Points != 5 {
		t.Fatalf("points = %d, want 5", a.Points)
	}

	resp = do(t, ts, "POST", "/api/tasks", map[string]any{"title": "B", "difficulty": "Hard"})
	expectStatus(t, resp, http.StatusCreated)
	b := decode[taskJSON](t, resp)

	resp = do(t, ts, "POST", "/api/tasks", map[string]any{"title": ""})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, ts, "POST", "/api/prizes", map[string]any{"name": "Sundae", "cost": 10})
	expectStatus(t, resp, http.StatusCreated)
	prize := decode[map[string]any](t, resp)
	prizeID := int64(prize["id"].(float64))

	resp = do(t, ts, "POST", "/api/prizes/"+itoa(prizeID)+"/redeem", nil)
	expectStatus(t, resp, http.StatusConflict)

	for _, id := range []int64{a.ID, b.ID} {
		resp = do(t, ts, "POST", "/api/tasks/"+itoa(id)+"/complete", nil)
		expectStatus(t, resp, http.StatusOK)
	}

	resp = do(t, ts, "GET", "/api/points", nil)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[map[string]int](t, resp)["total_points"]; got != 10 {
		t.Fatalf("total = %d, want 10", got)
	}

	resp = do(t, ts, "POST", "/api/prizes/"+itoa(prizeID)+"/redeem", nil)
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, ts, "GET", "/api/points", nil)
	if got := decode[map[string]int](t, resp)["total_points"]; got != 0 {
		t.Errorf("total after redeem = %d, want 0", got)
	}

	resp = do(t, ts, "GET", "/api/ledger", nil)
	expectStatus(t, resp, http.StatusOK)
	if entries := decode[[]map[string]any](t, resp); len(entries) != 3 {
		t.Errorf("ledger = %d entries, want 3", len(entries))
	}

	resp = do(t, ts, "GET", "/api/tasks?tab=completed", nil)
	expectStatus(t, resp, http.StatusOK)
	if tasks := decode[[]taskJSON](t, resp); len(tasks) != 3 {
		t.Errorf("completed tasks = %d, want 3", len(tasks))
	}

	resp = do(t, ts, "POST", "/api/prizes/9999/redeem", nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestUncheckAndDeleteGuards(t *testing.T) {
	ts := setupServer(t, Config{UndoWindow: time.Minute})

	resp := do(t, ts, "POST", "/api/tasks", map[string]any{"title": "A"})
	a := decode[taskJSON](t, resp)
	do(t, ts, "POST", "/api/tasks/"+itoa(a.ID)+"/complete", nil)

	resp = do(t, ts, "POST", "/api/tasks/"+itoa(a.ID)+"/uncheck", nil)
	expectStatus(t, resp, http.StatusConflict)

	resp = do(t, ts, "POST", "/api/tasks/"+itoa(a.ID)+"/uncheck?confirmed=true", nil)
	expectStatus(t, resp, http.StatusOK)
	if task := decode[taskJSON](t, resp); task.IsCompleted {
		t.Error("expected active task")
	}

	resp = do(t, ts, "DELETE", "/api/tasks/"+itoa(a.ID), nil)
	expectStatus(t, resp, http.StatusConflict)

	resp = do(t, ts, "DELETE", "/api/tasks/"+itoa(a.ID)+"?confirmed=true", nil)
	expectStatus(t, resp, http.StatusOK)
	token := decode[map[string]any](t, resp)["token"].(string)

	resp = do(t, ts, "POST", "/api/tasks/undo", map[string]string{"token": token})
	expectStatus(t, resp, http.StatusCreated)

	resp = do(t, ts, "POST", "/api/tasks/undo", map[string]string{"token": token})
	expectStatus(t, resp, http.StatusGone)

	resp = do(t, ts, "DELETE", "/api/tasks/9999?confirmed=true", nil)
	expectStatus(t, resp, http.StatusNoContent)
}

func TestSettingsAndBuiltinPrizes(t *testing.T) {
	ts := setupServer(t, Config{})

	resp := do(t, ts, "GET", "/api/prizes", nil)
	expectStatus(t, resp, http.StatusOK)
	prizes := decode[[]map[string]any](t, resp)
	if len(prizes) != 3 {
		t.Fatalf("prizes = %d, want 3 builtins", len(prizes))
	}
	builtinID := int64(prizes[0]["id"].(float64))

	resp = do(t, ts, "DELETE", "/api/prizes/"+itoa(builtinID), nil)
	expectStatus(t, resp, http.StatusForbidden)

	resp = do(t, ts, "PUT", "/api/settings", map[string]string{"sort_order": "sideways"})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, ts, "PUT", "/api/settings", map[string]string{"disable_confirmations": "true", "sort_order": "points"})
	expectStatus(t, resp, http.StatusOK)
	got := decode[map[string]any](t, resp)
	if got["disable_confirmations"] != true || got["sort_order"] != "POINTS" {
		t.Errorf("settings = %v", got)
	}
}

func TestReorderAndClear(t *testing.T) {
	ts := setupServer(t, Config{ClearLimit: 1})

	var ids []int64
	for _, title := range []string{"A", "B", "C"} {
		resp := do(t, ts, "POST", "/api/tasks", map[string]any{"title": title})
		ids = append(ids, decode[taskJSON](t, resp).ID)
	}

	resp := do(t, ts, "PUT", "/api/tasks/order", map[string]any{"ids": []int64{ids[2], ids[0], ids[1]}})
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, ts, "GET", "/api/tasks", nil)
	tasks := decode[[]taskJSON](t, resp)
	if len(tasks) != 3 || tasks[0].ID != ids[2] {
		t.Errorf("tasks = %+v, want C first", tasks)
	}

	resp = do(t, ts, "POST", "/api/clear", nil)
	expectStatus(t, resp, http.StatusNoContent)

	resp = do(t, ts, "POST", "/api/clear", nil)
	expectStatus(t, resp, http.StatusTooManyRequests)

	resp = do(t, ts, "GET", "/api/tasks", nil)
	if tasks := decode[[]taskJSON](t, resp); len(tasks) != 0 {
		t.Errorf("tasks after clear = %d, want 0", len(tasks))
	}

	resp = do(t, ts, "POST", "/api/retention/run", nil)
	expectStatus(t, resp, http.StatusOK)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
