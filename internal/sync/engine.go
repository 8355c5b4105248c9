// Package sync keeps the session's element store reconciled with the
// remote store over three independent channels: local optimistic
// edits, push notifications of remote inserts, and a periodic full
// poll that wholesale-replaces the local collection.
package sync

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/toanminhbui/viral/internal/board"
)

// Remote is the contract the engine needs from the persisted store.
// The concrete client lives in internal/remote; tests use an in-memory
// fake.
type Remote interface {
	Insert(ctx context.Context, r board.Record) error
	Update(ctx context.Context, id string, r board.Record) error
	SelectAll(ctx context.Context) ([]board.Record, error)
	// Subscribe starts delivering insert notifications to onInsert
	// until the returned stop function is called. Callbacks may
	// arrive from any goroutine.
	Subscribe(onInsert func(board.Record)) (stop func(), err error)
}

const (
	DefaultPollInterval   = 10 * time.Second
	DefaultRosterInterval = 5 * time.Second
	// How long after their last push notification a participant
	// still counts as active.
	DefaultActiveWindow = 30 * time.Second
)

// Engine drives persistence and merging for one session. All On*
// callbacks may fire from network goroutines; the caller is
// responsible for marshalling them onto its UI thread.
type Engine struct {
	remote Remote
	store  *board.Store
	self   string

	PollInterval   time.Duration
	RosterInterval time.Duration
	ActiveWindow   time.Duration

	// OnFullRedraw fires after a wholesale store replacement.
	OnFullRedraw func()
	// OnElement fires with a single merged remote insert, for the
	// incremental draw path.
	OnElement func(board.Element)
	// OnStatus receives non-blocking human-readable status lines.
	OnStatus func(string)
	// OnUsers receives the known and active participant lists.
	OnUsers func(known, active []string)

	mu         sync.Mutex
	knownOrder []string
	known      map[string]bool
	active     map[string]time.Time
}

func New(remote Remote, store *board.Store, self string) *Engine {
	return &Engine{
		remote:         remote,
		store:          store,
		self:           self,
		PollInterval:   DefaultPollInterval,
		RosterInterval: DefaultRosterInterval,
		ActiveWindow:   DefaultActiveWindow,
		known:          make(map[string]bool),
		active:         make(map[string]time.Time),
	}
}

// Run performs the initial load, opens the push subscription, and then
// services the poll and roster tickers until ctx is cancelled. Network
// failures are reported through OnStatus and retried on the next tick;
// they never end the session.
func (e *Engine) Run(ctx context.Context) {
	if err := e.Load(ctx); err != nil {
		log.Printf("[SYNC] initial load failed: %v", err)
		e.status(fmt.Sprintf("load failed: %v", err))
	}

	stop, err := e.remote.Subscribe(e.HandlePush)
	if err != nil {
		log.Printf("[SYNC] subscribe failed: %v", err)
		e.status(fmt.Sprintf("live updates unavailable: %v", err))
	} else {
		defer stop()
	}

	poll := time.NewTicker(e.PollInterval)
	defer poll.Stop()
	roster := time.NewTicker(e.RosterInterval)
	defer roster.Stop()

	for {
		select {
		case <-poll.C:
			if err := e.Poll(ctx); err != nil {
				log.Printf("[SYNC] poll failed: %v", err)
				e.status(fmt.Sprintf("sync failed: %v", err))
			}
		case <-roster.C:
			e.publishUsers()
		case <-ctx.Done():
			log.Println("[SYNC] session ending, sync stopped")
			return
		}
	}
}

// Load fetches the full remote collection and replaces the store.
func (e *Engine) Load(ctx context.Context) error {
	recs, err := e.remote.SelectAll(ctx)
	if err != nil {
		return fmt.Errorf("select all: %w", err)
	}
	e.replaceFrom(recs)
	log.Printf("[SYNC] loaded %d elements", len(recs))
	return nil
}

// Poll is the periodic reconciliation backstop: identical to Load, on
// a timer. A local optimistic element whose persist never landed is
// dropped here; that trade-off is accepted rather than corrected.
func (e *Engine) Poll(ctx context.Context) error {
	return e.Load(ctx)
}

func (e *Engine) replaceFrom(recs []board.Record) {
	elems := board.FromRecords(recs)
	e.store.ReplaceAll(elems)
	for _, el := range elems {
		e.noteKnown(el.Author)
	}
	if e.OnFullRedraw != nil {
		e.OnFullRedraw()
	}
}

// Persist submits a locally created element to the remote store. The
// element is already in the local store; on failure nothing is rolled
// back, durability is best-effort and the next poll tells the truth.
func (e *Engine) Persist(ctx context.Context, el board.Element) {
	e.noteKnown(el.Author)
	rec, err := el.Record()
	if err != nil {
		log.Printf("[SYNC] cannot encode element %s: %v", el.ID, err)
		return
	}
	go func() {
		if err := e.remote.Insert(ctx, rec); err != nil {
			log.Printf("[SYNC] persist of %s failed: %v", el.ID, err)
			e.status("couldn't save your last edit")
		}
	}()
}

// PersistUpdate submits an edited label to the remote store.
func (e *Engine) PersistUpdate(ctx context.Context, el board.Element) {
	rec, err := el.Record()
	if err != nil {
		log.Printf("[SYNC] cannot encode element %s: %v", el.ID, err)
		return
	}
	go func() {
		if err := e.remote.Update(ctx, el.ID, rec); err != nil {
			log.Printf("[SYNC] update of %s failed: %v", el.ID, err)
			e.status("couldn't save your last edit")
		}
	}()
}

// HandlePush merges one insert notification. Self-authored inserts are
// ignored, the local session already applied them optimistically.
func (e *Engine) HandlePush(r board.Record) {
	e.noteKnown(r.Author)
	e.noteActive(r.Author)
	if r.Author == e.self {
		return
	}
	el := board.FromRecord(r)
	if err := e.store.Append(el); err != nil {
		// Poll may have delivered it already.
		log.Printf("[SYNC] push for %s not applied: %v", el.ID, err)
		return
	}
	if e.OnElement != nil {
		e.OnElement(el)
	}
}

// KnownUsers returns every author seen on any channel this session.
func (e *Engine) KnownUsers() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.knownOrder))
	copy(out, e.knownOrder)
	return out
}

// ActiveUsers returns participants seen on the push channel within the
// active window, sorted for stable display.
func (e *Engine) ActiveUsers() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	cutoff := time.Now().Add(-e.ActiveWindow)
	var out []string
	for who, at := range e.active {
		if at.After(cutoff) {
			out = append(out, who)
		}
	}
	sort.Strings(out)
	return out
}

func (e *Engine) noteKnown(author string) {
	if author == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.known[author] {
		e.known[author] = true
		e.knownOrder = append(e.knownOrder, author)
	}
}

func (e *Engine) noteActive(author string) {
	if author == "" {
		return
	}
	e.mu.Lock()
	e.active[author] = time.Now()
	e.mu.Unlock()
}

func (e *Engine) publishUsers() {
	if e.OnUsers == nil {
		return
	}
	e.OnUsers(e.KnownUsers(), e.ActiveUsers())
}

func (e *Engine) status(msg string) {
	if e.OnStatus != nil {
		e.OnStatus(msg)
	}
}
