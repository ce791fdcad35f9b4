package query

import (
	"errors"
	"sort"
	"sync"

	"owlistic-notes/notes/broker"
	"owlistic-notes/notes/models"

	"github.com/google/uuid"
)

var ErrResultSetClosed = errors.New("result set closed")

// ResultSet is a live, ordered view of the entities matching a Request. It
// is owned by the context that created it: the context calls Refresh after
// each committed mutation batch and Invalidate when its store goes away.
type ResultSet[T models.Entity] struct {
	mu     sync.Mutex
	source func() []T
	filter Filter[T]
	less   func(a, b T) bool
	items  []T
	topic  *broker.Topic[[]Change[T]]

	err      error
	done     chan struct{}
	doneOnce sync.Once
	onClose  func()
}

// NewResultSet evaluates the query once against source.
func NewResultSet[T models.Entity](source func() []T, filter Filter[T], less func(a, b T) bool) *ResultSet[T] {
	rs := &ResultSet[T]{
		source: source,
		filter: filter,
		less:   less,
		topic:  broker.NewTopic[[]Change[T]](),
		done:   make(chan struct{}),
	}
	rs.items = rs.evaluate()
	return rs
}

func (rs *ResultSet[T]) evaluate() []T {
	all := rs.source()
	out := make([]T, 0, len(all))
	for _, e := range all {
		if rs.filter == nil || rs.filter(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return rs.less(out[i], out[j]) })
	return out
}

// Snapshot returns the current ordered entities. The single implicit
// section covers the whole slice.
func (rs *ResultSet[T]) Snapshot() []T {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]T(nil), rs.items...)
}

func (rs *ResultSet[T]) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.items)
}

// IndexOf returns the position of the entity with id, or -1.
func (rs *ResultSet[T]) IndexOf(id uuid.UUID) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for i, e := range rs.items {
		if e.EntityID() == id {
			return i
		}
	}
	return -1
}

// Subscribe registers handler for change batches. Each batch holds the
// changes of one committed mutation batch, in application order.
func (rs *ResultSet[T]) Subscribe(handler func([]Change[T])) *broker.Subscription {
	return rs.topic.Subscribe(handler)
}

// Err is nil while the result set is live.
func (rs *ResultSet[T]) Err() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.err
}

// Done is closed once the result set stops delivering changes.
func (rs *ResultSet[T]) Done() <-chan struct{} {
	return rs.done
}

// Close detaches the result set from its context.
func (rs *ResultSet[T]) Close() {
	rs.Invalidate(ErrResultSetClosed)
}

// OnClose sets a hook run once when the result set is closed or invalidated.
func (rs *ResultSet[T]) OnClose(fn func()) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.onClose = fn
}

// Refresh re-evaluates the query and returns a function delivering the
// resulting changes to subscribers; it is nil when nothing changed. The
// caller runs it after releasing its own locks.
func (rs *ResultSet[T]) Refresh(touched map[uuid.UUID]bool) func() {
	rs.mu.Lock()
	if rs.err != nil {
		rs.mu.Unlock()
		return nil
	}
	next := rs.evaluate()
	changes := Diff(rs.items, next, touched)
	rs.items = next
	rs.mu.Unlock()

	if len(changes) == 0 {
		return nil
	}
	return func() {
		if rs.Err() != nil {
			return
		}
		rs.topic.Publish(changes)
	}
}

// Invalidate moves the result set to its terminal state. Later calls keep
// the first error.
func (rs *ResultSet[T]) Invalidate(err error) {
	rs.doneOnce.Do(func() {
		rs.mu.Lock()
		rs.err = err
		onClose := rs.onClose
		rs.mu.Unlock()

		rs.topic.Close()
		close(rs.done)
		if onClose != nil {
			onClose()
		}
	})
}
