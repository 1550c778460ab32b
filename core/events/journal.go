package events

import (
	"encoding/binary"
	"errors"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"swapdex/core/types"
	"swapdex/storage"
)

var (
	journalEntryPrefix = []byte("events/journal/entry/")
	journalSeqKey      = []byte("events/journal/seq")
)

// attributed is satisfied by event payloads that can render themselves as a
// generic attribute map for persistence and RPC exposure.
type attributed interface {
	Event() *types.Event
}

type storedEvent struct {
	Type   string
	Keys   []string
	Values []string
}

// Journal persists every emitted event append-only in the underlying key-value
// store. Entries are keyed by a monotonically increasing sequence number and
// are never rewritten, matching the observable-log contract of the exchange.
type Journal struct {
	mu    sync.Mutex
	store storage.Database
	next  uint64
}

// NewJournal opens a journal on the supplied store, resuming the sequence
// counter when one was persisted by a previous run.
func NewJournal(store storage.Database) (*Journal, error) {
	if store == nil {
		return nil, errors.New("events: journal store must not be nil")
	}
	j := &Journal{store: store}
	raw, err := store.Get(journalSeqKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// fresh journal
	case err != nil:
		return nil, err
	case len(raw) == 8:
		j.next = binary.BigEndian.Uint64(raw)
	}
	// The counter write can trail the last appended entry when a previous run
	// hit a storage error. Probe forward so a resumed journal never rewrites
	// an existing entry.
	for {
		ok, err := store.Has(journalKey(j.next))
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		j.next++
	}
	return j, nil
}

// Emit implements the Emitter interface. Events that cannot render attributes
// are skipped; persistence failures are swallowed because emission sits after
// the state transition and must not unwind it.
func (j *Journal) Emit(evt Event) {
	if j == nil || evt == nil {
		return
	}
	payload, ok := evt.(attributed)
	if !ok {
		return
	}
	rendered := payload.Event()
	if rendered == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.append(rendered)
}

func (j *Journal) append(rendered *types.Event) error {
	stored := storedEvent{Type: rendered.Type}
	keys := make([]string, 0, len(rendered.Attributes))
	for k := range rendered.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		stored.Keys = append(stored.Keys, k)
		stored.Values = append(stored.Values, rendered.Attributes[k])
	}
	encoded, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return err
	}
	if err := j.store.Put(journalKey(j.next), encoded); err != nil {
		return err
	}
	// Advance past the written entry before persisting the counter: a failed
	// counter write must never cause the next emit to reuse the sequence slot.
	j.next++
	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, j.next)
	return j.store.Put(journalSeqKey, seq)
}

// Len reports the number of persisted events.
func (j *Journal) Len() uint64 {
	if j == nil {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.next
}

// List returns up to limit events starting at the given sequence number. A
// non-positive limit returns everything from the offset onward.
func (j *Journal) List(from uint64, limit int) ([]*types.Event, error) {
	if j == nil {
		return nil, errors.New("events: journal not initialised")
	}
	j.mu.Lock()
	end := j.next
	j.mu.Unlock()
	out := make([]*types.Event, 0)
	for seq := from; seq < end; seq++ {
		if limit > 0 && len(out) >= limit {
			break
		}
		raw, err := j.store.Get(journalKey(seq))
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var stored storedEvent
		if err := rlp.DecodeBytes(raw, &stored); err != nil {
			return nil, err
		}
		evt := &types.Event{Type: stored.Type, Attributes: make(map[string]string, len(stored.Keys))}
		for i := range stored.Keys {
			if i < len(stored.Values) {
				evt.Attributes[stored.Keys[i]] = stored.Values[i]
			}
		}
		out = append(out, evt)
	}
	return out, nil
}

func journalKey(seq uint64) []byte {
	buf := make([]byte, len(journalEntryPrefix)+8)
	copy(buf, journalEntryPrefix)
	binary.BigEndian.PutUint64(buf[len(journalEntryPrefix):], seq)
	return buf
}
