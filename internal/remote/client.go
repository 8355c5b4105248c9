// Package remote talks to the board's persisted element store: a small
// HTTP API for inserts, updates and full reads, plus a websocket
// channel that pushes every accepted insert to subscribers.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/toanminhbui/viral/internal/board"
)

// Client implements the store contract against a viralserver instance.
type Client struct {
	base string // e.g. "http://192.168.1.10:8787"
	http *http.Client
}

func NewClient(addr string) *Client {
	return &Client{
		base: "http://" + addr,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Insert persists one new element record.
func (c *Client) Insert(ctx context.Context, r board.Record) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/elements", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	defer drain(resp.Body)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("insert: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Update rewrites the record with the given id.
func (c *Client) Update(ctx context.Context, id string, r board.Record) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.base+"/elements/"+id, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	defer drain(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("update: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// SelectAll fetches the whole collection ordered by creation timestamp.
func (c *Client) SelectAll(ctx context.Context) ([]board.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/elements", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("select all: %w", err)
	}
	defer drain(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("select all: unexpected status %d", resp.StatusCode)
	}
	var recs []board.Record
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return recs, nil
}

// Subscribe opens the websocket push channel and delivers every insert
// notification to onInsert from a background goroutine. The connection
// is redialled with backoff until the returned stop function is
// called; missed notifications during an outage are healed by the next
// poll, so reconnection does not replay anything.
func (c *Client) Subscribe(onInsert func(board.Record)) (func(), error) {
	wsURL := "ws" + c.base[len("http"):] + "/ws"
	done := make(chan struct{})

	go func() {
		backoff := time.Second
		for {
			select {
			case <-done:
				return
			default:
			}
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			if err != nil {
				log.Printf("[WS] dial %s failed: %v, retrying in %v", wsURL, err, backoff)
				select {
				case <-done:
					return
				case <-time.After(backoff):
				}
				if backoff < 30*time.Second {
					backoff *= 2
				}
				continue
			}
			log.Printf("[WS] subscribed to %s", wsURL)
			backoff = time.Second

			closed := make(chan struct{})
			go func() {
				select {
				case <-done:
					conn.Close()
				case <-closed:
				}
			}()

			for {
				var rec board.Record
				if err := conn.ReadJSON(&rec); err != nil {
					log.Printf("[WS] read failed: %v", err)
					break
				}
				onInsert(rec)
			}
			close(closed)
			conn.Close()
		}
	}()

	return func() { close(done) }, nil
}

func drain(rc io.ReadCloser) {
	io.Copy(io.Discard, rc)
	rc.Close()
}
