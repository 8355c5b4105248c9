// Command viralserver is the shared element store: a sqlite-backed
// table of board elements with a small HTTP API and a websocket
// channel that pushes every accepted insert to all subscribers.
package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	_ "github.com/mattn/go-sqlite3"

	"github.com/toanminhbui/viral/internal/board"
	"github.com/toanminhbui/viral/internal/remote"
)

func main() {
	if err := mainInner(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInner() error {
	addrVar := flag.String("addr", ":8787", "the address to listen on")
	dbVar := flag.String("db", "viral.sqlite3", "path to the sqlite database")
	mdnsVar := flag.Bool("mdns", true, "advertise the server on the local network")
	flag.Parse()

	slog.Info("opening database", "path", *dbVar)
	db, err := sql.Open("sqlite3", *dbVar)
	if err != nil {
		return err
	}
	defer db.Close()

	s := &server{database: db, hub: newHub()}
	if err := s.init(); err != nil {
		return err
	}

	r := mux.NewRouter()
	r.HandleFunc("/elements", s.list).Methods(http.MethodGet)
	r.HandleFunc("/elements", s.insert).Methods(http.MethodPost)
	r.HandleFunc("/elements/{id}", s.update).Methods(http.MethodPatch)
	r.HandleFunc("/ws", s.subscribe).Methods(http.MethodGet)
	r.Use(logMiddleware)

	if *mdnsVar {
		port, err := listenPort(*addrVar)
		if err != nil {
			return fmt.Errorf("cannot derive advertised port from -addr %q: %w", *addrVar, err)
		}
		if srv, err := remote.Advertise(port); err != nil {
			slog.Warn("mDNS advertise failed", "err", err)
		} else {
			defer srv.Shutdown()
		}
		slog.Info("share address", "addr", remote.ShareAddress(port))
	}

	slog.Info("listening", "addr", *addrVar)
	if err := http.ListenAndServe(*addrVar, r); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// listenPort extracts the port a listen address binds to, so mDNS can
// advertise the same one.
func listenPort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, err
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		slog.Info("handled", "method", r.Method, "url", r.URL.String())
	})
}

type server struct {
	database *sql.DB
	hub      *hub
}

func (s *server) init() error {
	slog.Info("creating initial tables")
	_, err := s.database.Exec(
		`CREATE TABLE IF NOT EXISTS elements (
		id      TEXT NOT NULL PRIMARY KEY,
		type    TEXT NOT NULL,
		author  TEXT NOT NULL,
		ts      INTEGER NOT NULL,
		payload TEXT NOT NULL
		)`,
	)
	return err
}

func (s *server) list(w http.ResponseWriter, r *http.Request) {
	rows, err := s.database.QueryContext(r.Context(),
		`SELECT id, type, author, ts, payload FROM elements ORDER BY ts ASC`)
	if err != nil {
		slog.Error("failed to query", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	recs := make([]board.Record, 0)
	for rows.Next() {
		var rec board.Record
		var payload string
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Author, &rec.Timestamp, &payload); err != nil {
			slog.Error("failed to scan", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		rec.Payload = json.RawMessage(payload)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		slog.Error("row iteration failed", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(recs); err != nil {
		slog.Error("failed to write", "err", err)
	}
}

func (s *server) insert(w http.ResponseWriter, r *http.Request) {
	var rec board.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		slog.Error("failed to decode body", "err", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if rec.ID == "" || rec.Type == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if _, err := s.database.ExecContext(r.Context(),
		`INSERT INTO elements(id, type, author, ts, payload) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Type, rec.Author, rec.Timestamp, string(rec.Payload),
	); err != nil {
		// Re-sent records keep the first write; ids never change meaning.
		slog.Warn("insert rejected", "id", rec.ID, "err", err)
		w.WriteHeader(http.StatusConflict)
		return
	}

	s.hub.broadcast(rec)
	w.WriteHeader(http.StatusCreated)
}

func (s *server) update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var rec board.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		slog.Error("failed to decode body", "err", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	res, err := s.database.ExecContext(r.Context(),
		`UPDATE elements SET payload = ? WHERE id = ?`,
		string(rec.Payload), id,
	)
	if err != nil {
		slog.Error("failed to update", "id", id, "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if n, err := res.RowsAffected(); err != nil {
		slog.Error("failed to count rows affected", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	} else if n == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var upgrader = websocket.Upgrader{
	// Board clients are native apps, not browsers; origin checks
	// would only reject them.
	CheckOrigin: func(*http.Request) bool { return true },
}

func (s *server) subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "err", err)
		return
	}
	s.hub.add(conn)
	defer s.hub.remove(conn)

	// Subscribers never send anything meaningful; reading just
	// detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// hub fans insert notifications out to every connected subscriber.
type hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]bool
}

func newHub() *hub {
	return &hub{conns: make(map[*websocket.Conn]bool)}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
	slog.Info("subscriber connected", "addr", conn.RemoteAddr().String())
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	conn.Close()
	slog.Info("subscriber disconnected", "addr", conn.RemoteAddr().String())
}

func (h *hub) broadcast(rec board.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(rec); err != nil {
			slog.Warn("failed to push to subscriber", "addr", conn.RemoteAddr().String(), "err", err)
		}
	}
}
