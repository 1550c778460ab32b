package events

import (
	"errors"
	"math/big"
	"testing"

	"swapdex/storage"
)

func testAddr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func TestJournalAppendAndList(t *testing.T) {
	db := storage.NewMemDB()
	journal, err := NewJournal(db)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}

	journal.Emit(TokenRegistered{
		Engine: testAddr(0xEE),
		Token:  testAddr(0x01),
		Name:   "Test Token",
		Symbol: "TST",
		Slot:   0,
	})
	journal.Emit(NativeToTokenSwap{
		Caller:    testAddr(0x11),
		Slot:      0,
		NativeIn:  big.NewInt(100),
		TokensOut: big.NewInt(200),
	})

	if journal.Len() != 2 {
		t.Fatalf("expected 2 journalled events, got %d", journal.Len())
	}
	list, err := journal.List(0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 events, got %d", len(list))
	}
	if list[0].Type != TypeTokenRegistered {
		t.Fatalf("expected %s first, got %s", TypeTokenRegistered, list[0].Type)
	}
	if list[1].Type != TypeNativeToTokenSwap {
		t.Fatalf("expected %s second, got %s", TypeNativeToTokenSwap, list[1].Type)
	}
	if list[1].Attributes["nativeIn"] != "100" || list[1].Attributes["tokensOut"] != "200" {
		t.Fatalf("unexpected swap attributes: %v", list[1].Attributes)
	}

	// Pagination from an offset with a limit.
	page, err := journal.List(1, 1)
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].Type != TypeNativeToTokenSwap {
		t.Fatalf("unexpected page: %v", page)
	}
}

func TestJournalResumesSequence(t *testing.T) {
	db := storage.NewMemDB()
	journal, err := NewJournal(db)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	journal.Emit(TreasuryWithdrawal{Recipient: testAddr(0xAA), Amount: big.NewInt(5)})

	reopened, err := NewJournal(db)
	if err != nil {
		t.Fatalf("reopen journal: %v", err)
	}
	if reopened.Len() != 1 {
		t.Fatalf("expected resumed length 1, got %d", reopened.Len())
	}
	reopened.Emit(TreasuryWithdrawal{Recipient: testAddr(0xAA), Amount: big.NewInt(7)})
	list, err := reopened.List(0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 events after resume, got %d", len(list))
	}
	if list[1].Attributes["amount"] != "7" {
		t.Fatalf("unexpected resumed attributes: %v", list[1].Attributes)
	}
}

func TestMultiEmitterFansOut(t *testing.T) {
	db := storage.NewMemDB()
	journal, err := NewJournal(db)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	var captured []Event
	capture := emitterFunc(func(evt Event) { captured = append(captured, evt) })

	multi := MultiEmitter{journal, capture, nil}
	multi.Emit(TokenToTokenSwap{Caller: testAddr(0x11), SourceSlot: 0, DestSlot: 1, Amount: big.NewInt(3)})

	if journal.Len() != 1 {
		t.Fatalf("journal missed the event")
	}
	if len(captured) != 1 {
		t.Fatalf("capture missed the event")
	}
}

type emitterFunc func(Event)

func (f emitterFunc) Emit(evt Event) { f(evt) }

func TestBroadcasterDeliversWithoutBlocking(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()
	defer cancel()

	// An unsubscribed broadcaster and a full buffer must both be non-fatal.
	for i := 0; i < subscriberBuffer+10; i++ {
		b.Emit(TreasuryWithdrawal{Recipient: testAddr(0xAA), Amount: big.NewInt(int64(i))})
	}

	select {
	case evt := <-ch:
		if evt.Type != TypeTreasuryWithdrawal {
			t.Fatalf("unexpected event type %s", evt.Type)
		}
	default:
		t.Fatal("expected a buffered event")
	}
}

// seqFaultStore drops writes of the sequence counter while letting entry
// writes through.
type seqFaultStore struct {
	storage.Database
	dropSeq bool
}

func (s *seqFaultStore) Put(key, value []byte) error {
	if s.dropSeq && string(key) == "events/journal/seq" {
		return errors.New("transient write failure")
	}
	return s.Database.Put(key, value)
}

func TestJournalNeverRewritesOnCounterFailure(t *testing.T) {
	store := &seqFaultStore{Database: storage.NewMemDB(), dropSeq: true}
	journal, err := NewJournal(store)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}

	journal.Emit(TreasuryWithdrawal{Recipient: testAddr(0xAA), Amount: big.NewInt(1)})
	journal.Emit(TreasuryWithdrawal{Recipient: testAddr(0xAA), Amount: big.NewInt(2)})
	list, err := journal.List(0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("counter failure must not collapse entries, got %d", len(list))
	}
	if list[0].Attributes["amount"] != "1" || list[1].Attributes["amount"] != "2" {
		t.Fatalf("entry overwritten: %v", list)
	}

	// A reopened journal resumes past the entries the stale counter missed.
	store.dropSeq = false
	reopened, err := NewJournal(store)
	if err != nil {
		t.Fatalf("reopen journal: %v", err)
	}
	if reopened.Len() != 2 {
		t.Fatalf("expected resumed length 2, got %d", reopened.Len())
	}
	reopened.Emit(TreasuryWithdrawal{Recipient: testAddr(0xAA), Amount: big.NewInt(3)})
	list, err = reopened.List(0, 0)
	if err != nil {
		t.Fatalf("list after reopen: %v", err)
	}
	if len(list) != 3 || list[0].Attributes["amount"] != "1" {
		t.Fatalf("resume rewrote history: %v", list)
	}
}
