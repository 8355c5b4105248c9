package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/toanminhbui/viral/internal/board"
)

func testRecord(id string) board.Record {
	return board.Record{
		ID:        id,
		Type:      "draw",
		Author:    "alice",
		Timestamp: 42,
		Payload:   json.RawMessage(`{"points":[{"x":0,"y":0},{"x":1,"y":1}]}`),
	}
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(strings.TrimPrefix(srv.URL, "http://"))
}

func TestInsertAndSelectAll(t *testing.T) {
	var mu sync.Mutex
	var stored []board.Record

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/elements":
			var rec board.Record
			if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			mu.Lock()
			stored = append(stored, rec)
			mu.Unlock()
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodGet && r.URL.Path == "/elements":
			mu.Lock()
			defer mu.Unlock()
			json.NewEncoder(w).Encode(stored)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)
	if err := c.Insert(context.Background(), testRecord("r-1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	recs, err := c.SelectAll(context.Background())
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "r-1" || recs[0].Author != "alice" {
		t.Fatalf("unexpected collection: %+v", recs)
	}
}

func TestUpdateTargetsID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	if err := c.Update(context.Background(), "l-7", testRecord("l-7")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if gotPath != "/elements/l-7" {
		t.Errorf("update hit %q, want /elements/l-7", gotPath)
	}
}

func TestInsertSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	if err := c.Insert(context.Background(), testRecord("dup")); err == nil {
		t.Fatal("Insert swallowed a 409")
	}
}

func TestSubscribeDeliversInserts(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteJSON(testRecord("pushed-1"))
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)
	got := make(chan board.Record, 1)
	stop, err := c.Subscribe(func(r board.Record) {
		select {
		case got <- r:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer stop()

	select {
	case rec := <-got:
		if rec.ID != "pushed-1" {
			t.Errorf("pushed record id = %q", rec.ID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no push notification received")
	}
}
