package query

import (
	"testing"

	"owlistic-notes/notes/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteSource struct {
	notes []*models.Note
}

func (s *noteSource) all() []*models.Note {
	return append([]*models.Note(nil), s.notes...)
}

func newTitleResultSet(t *testing.T, src *noteSource, filter Filter[*models.Note]) *ResultSet[*models.Note] {
	t.Helper()
	less, err := NoteOrder(ByTitle, true)
	require.NoError(t, err)
	return NewResultSet(src.all, filter, less)
}

func TestResultSet_SnapshotIsSortedAndFiltered(t *testing.T) {
	src := &noteSource{notes: []*models.Note{
		{ID: uuid.New(), Title: "c", Seq: 1},
		{ID: uuid.New(), Title: "a", Seq: 2},
		{ID: uuid.New(), Title: "skip", Seq: 3},
		{ID: uuid.New(), Title: "b", Seq: 4},
	}}

	rs := newTitleResultSet(t, src, func(n *models.Note) bool { return n.Title != "skip" })

	assert.Equal(t, "abc", titles(rs.Snapshot()))
	assert.Equal(t, 3, rs.Len())
	assert.Equal(t, 2, rs.IndexOf(src.notes[0].ID))
	assert.Equal(t, -1, rs.IndexOf(src.notes[2].ID))
}

func TestResultSet_RefreshDeliversBatch(t *testing.T) {
	a := &models.Note{ID: uuid.New(), Title: "a", Seq: 1}
	src := &noteSource{notes: []*models.Note{a}}
	rs := newTitleResultSet(t, src, nil)

	var batches [][]Change[*models.Note]
	rs.Subscribe(func(changes []Change[*models.Note]) {
		batches = append(batches, changes)
	})

	b := &models.Note{ID: uuid.New(), Title: "b", Seq: 2}
	src.notes = append(src.notes, b)

	deliver := rs.Refresh(nil)
	require.NotNil(t, deliver)
	assert.Empty(t, batches, "changes are delivered only when the caller runs them")

	deliver()
	require.Len(t, batches, 1)
	assert.Equal(t, []Change[*models.Note]{{Type: Inserted, Entity: b, Index: 1}}, batches[0])

	assert.Nil(t, rs.Refresh(nil), "no changes yields no delivery")
}

func TestResultSet_ConsumerViewMatchesRequery(t *testing.T) {
	notes := map[string]*models.Note{}
	for i, title := range []string{"d", "b", "a", "c"} {
		notes[title] = &models.Note{ID: uuid.New(), Title: title, Seq: int64(i + 1)}
	}
	src := &noteSource{notes: []*models.Note{notes["a"], notes["b"], notes["c"], notes["d"]}}
	rs := newTitleResultSet(t, src, nil)

	view := rs.Snapshot()
	rs.Subscribe(func(changes []Change[*models.Note]) {
		view = Apply(view, changes)
	})

	notes["a"].Title = "z"
	notes["c"].Title = "0"
	src.notes = append(src.notes[:1], src.notes[2:]...) // drop b
	src.notes = append(src.notes, &models.Note{ID: uuid.New(), Title: "bb", Seq: 9})

	rs.Refresh(map[uuid.UUID]bool{notes["a"].ID: true, notes["c"].ID: true})()

	assert.Equal(t, titles(rs.Snapshot()), titles(view))
	assert.Equal(t, "0bbdz", titles(view))
}

func TestResultSet_Invalidate(t *testing.T) {
	src := &noteSource{notes: []*models.Note{{ID: uuid.New(), Title: "a", Seq: 1}}}
	rs := newTitleResultSet(t, src, nil)

	var calls int
	rs.Subscribe(func([]Change[*models.Note]) { calls++ })

	var closed int
	rs.OnClose(func() { closed++ })

	deliver := rs.Refresh(nil)
	assert.Nil(t, deliver)

	src.notes = append(src.notes, &models.Note{ID: uuid.New(), Title: "b", Seq: 2})
	pending := rs.Refresh(nil)

	invalid := assert.AnError
	rs.Invalidate(invalid)
	rs.Invalidate(ErrResultSetClosed) // first error wins

	pending()
	assert.Equal(t, 0, calls, "no events after invalidation")
	assert.Nil(t, rs.Refresh(nil))
	assert.Equal(t, invalid, rs.Err())
	assert.Equal(t, 1, closed)

	select {
	case <-rs.Done():
	default:
		t.Fatal("Done should be closed after invalidation")
	}
}

func TestResultSet_Close(t *testing.T) {
	rs := newTitleResultSet(t, &noteSource{}, nil)
	rs.Close()
	assert.ErrorIs(t, rs.Err(), ErrResultSetClosed)
}
