package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	stdsync "sync"
	"time"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// --- Test doubles shared by the pipeline tests ---

func refs(ids ...string) []domain.ItemRef {
	out := make([]domain.ItemRef, len(ids))
	for i, id := range ids {
		out[i] = domain.ItemRef{ID: id, Title: "Item " + id}
	}
	return out
}

func numberedRefs(n int) []domain.ItemRef {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d", i+1)
	}
	return refs(ids...)
}

// fakeEnumerator returns a fixed list.
type fakeEnumerator struct {
	items []domain.ItemRef
	err   error
}

func (e *fakeEnumerator) ListItems(ctx context.Context) ([]domain.ItemRef, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.items, ctx.Err()
}

// fakeSource returns "body-<id>" unless a scripted error sequence says otherwise.
// Once the sequence for an ID is used up, reads succeed.
type fakeSource struct {
	mu     stdsync.Mutex
	errs   map[string][]error
	calls  map[string]int
	order  []string
	onRead func(ctx context.Context, ref domain.ItemRef)
	delay  func(ref domain.ItemRef) time.Duration
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		errs:  make(map[string][]error),
		calls: make(map[string]int),
	}
}

func (s *fakeSource) failWith(id string, errs ...error) *fakeSource {
	s.errs[id] = errs
	return s
}

func (s *fakeSource) Read(ctx context.Context, ref domain.ItemRef) (*domain.Content, error) {
	if s.onRead != nil {
		s.onRead(ctx, ref)
	}
	if s.delay != nil {
		select {
		case <-time.After(s.delay(ref)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.calls[ref.ID]
	s.calls[ref.ID] = n + 1
	s.order = append(s.order, ref.ID)

	if seq := s.errs[ref.ID]; n < len(seq) && seq[n] != nil {
		return nil, seq[n]
	}
	return &domain.Content{Data: []byte("body-" + ref.ID), MIMEType: "text/plain"}, nil
}

func (s *fakeSource) callCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

// fakeRenderer renders "<id>:<data>" and can be told to fail for some IDs.
type fakeRenderer struct {
	sep  string
	fail map[string]bool
}

func (r *fakeRenderer) Render(ref domain.ItemRef, content *domain.Content) ([]byte, error) {
	if r.fail[ref.ID] {
		return nil, errors.New("cannot render")
	}
	return []byte(ref.ID + ":" + string(content.Data)), nil
}

func (r *fakeRenderer) Separator() []byte {
	return []byte(r.sep)
}

// fakeSink keeps artifacts in memory. Only committed artifacts are visible
// through artifacts.
type fakeSink struct {
	mu        stdsync.Mutex
	committed map[string]string
	aborted   []string
	order     []string
	createErr map[string]error
	writeErr  map[string]error // artifact name -> error on the block starting with failOn
	failOn    string
	commitErr map[string]error
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		committed: make(map[string]string),
		createErr: make(map[string]error),
		writeErr:  make(map[string]error),
		commitErr: make(map[string]error),
	}
}

func (s *fakeSink) Create(_ context.Context, name string) (driven.ArtifactWriter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.createErr[name]; err != nil {
		return nil, err
	}
	s.order = append(s.order, name)
	return &fakeWriter{sink: s, name: name}, nil
}

func (s *fakeSink) artifact(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.committed[name]
	return body, ok
}

type fakeWriter struct {
	sink *fakeSink
	name string
	buf  strings.Builder
}

func (w *fakeWriter) WriteBlock(b []byte) error {
	w.sink.mu.Lock()
	err := w.sink.writeErr[w.name]
	failOn := w.sink.failOn
	w.sink.mu.Unlock()

	if err != nil && strings.HasPrefix(string(b), failOn+":") {
		return err
	}
	w.buf.Write(b)
	return nil
}

func (w *fakeWriter) Location() string {
	return "mem://" + w.name
}

func (w *fakeWriter) Commit() error {
	w.sink.mu.Lock()
	defer w.sink.mu.Unlock()
	if err := w.sink.commitErr[w.name]; err != nil {
		return err
	}
	w.sink.committed[w.name] = w.buf.String()
	return nil
}

func (w *fakeWriter) Abort() error {
	w.sink.mu.Lock()
	defer w.sink.mu.Unlock()
	w.sink.aborted = append(w.sink.aborted, w.name)
	return nil
}

// recordingSleep records requested waits without sleeping.
type recordingSleep struct {
	mu    stdsync.Mutex
	waits []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recordingSleep) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}

func transient(msg string) error {
	return domain.MarkTransient(errors.New(msg))
}
