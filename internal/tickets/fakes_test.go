package tickets

import (
	"context"
	"fmt"
	"sync"
)

// fakeMeta is a map-backed MetadataStore with the same version-guard
// semantics as the DynamoDB store.
type fakeMeta struct {
	mu    sync.Mutex
	items map[string]Ticket

	// getHook runs after each successful Get, before returning. Lets
	// the race test line up two readers on the same version.
	getHook func()

	failCreate error
	failDelete error
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{items: map[string]Ticket{}}
}

func (f *fakeMeta) Create(ctx context.Context, t *Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	if _, ok := f.items[t.TicketID]; ok {
		return fmt.Errorf("ticket exists: %w", ErrConcurrentModification)
	}
	f.items[t.TicketID] = *t
	return nil
}

func (f *fakeMeta) Get(ctx context.Context, id string) (*Ticket, error) {
	f.mu.Lock()
	t, ok := f.items[id]
	f.mu.Unlock()
	if hook := f.getHook; hook != nil {
		hook()
	}
	if !ok {
		return nil, nil
	}
	cp := t
	return &cp, nil
}

func (f *fakeMeta) Scan(ctx context.Context, state string) ([]Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Ticket
	for _, t := range f.items {
		if state != "" && t.State != state {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeMeta) Update(ctx context.Context, t *Ticket, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.items[t.TicketID]
	if !ok || cur.Version != expectedVersion {
		return fmt.Errorf("version %d: %w", expectedVersion, ErrConcurrentModification)
	}
	f.items[t.TicketID] = *t
	return nil
}

func (f *fakeMeta) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	delete(f.items, id)
	return nil
}

// fakeBlobs records blob-store calls and can fail deletes.
type fakeBlobs struct {
	mu         sync.Mutex
	uploads    []string
	deletes    []string
	allocPuts  []string
	allocReads []string
	failDelete error
}

func (f *fakeBlobs) AllocateWriteLocation(ctx context.Context, ticketID string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ticketID + ".jpg"
	f.allocPuts = append(f.allocPuts, key)
	return key, "https://blob.test/upload/" + key, nil
}

func (f *fakeBlobs) AllocateReadLocation(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allocReads = append(f.allocReads, key)
	return "https://blob.test/read/" + key, nil
}

func (f *fakeBlobs) Upload(ctx context.Context, ticketID string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ticketID + ".jpg"
	f.uploads = append(f.uploads, key)
	return key, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeBlobs) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads) + len(f.deletes) + len(f.allocPuts) + len(f.allocReads)
}

// fakeNotifier captures completion events.
type fakeNotifier struct {
	mu     sync.Mutex
	events []CompletionEvent
	fail   error
}

func (f *fakeNotifier) PublishCompletion(ctx context.Context, ev CompletionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.events = append(f.events, ev)
	return nil
}

// fakeCleanup captures enqueued cleanup requests.
type fakeCleanup struct {
	mu   sync.Mutex
	keys []string
	fail error
}

func (f *fakeCleanup) Enqueue(ctx context.Context, imageKey, ticketID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.keys = append(f.keys, imageKey)
	return nil
}
