package services

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"owlistic-notes/notes/database"
	"owlistic-notes/notes/models"
	"owlistic-notes/notes/query"

	"github.com/google/uuid"
)

// Store is the durable side of a DataContext. *database.Database is the
// production implementation.
type Store interface {
	Load() (database.Snapshot, error)
	Commit(cs database.ChangeSet) error
	Ping() error
	Close() error
}

type changeState int

const (
	stateInserted changeState = iota + 1
	stateUpdated
	stateDeleted
)

type pendingNote struct {
	state changeState
	note  *models.Note
}

type pendingCategory struct {
	state    changeState
	category *models.Category
}

// DataContext is the in-memory working set. Every create, update and delete
// goes through it; Save flushes the pending changes to the store in one
// transaction.
//
// Entities handed out by the context are the canonical instances. Treat
// them as read-only and change them through the context's methods.
type DataContext struct {
	mu     sync.Mutex
	store  Store
	now    func() time.Time
	logger *slog.Logger
	closed bool

	notes      map[uuid.UUID]*models.Note
	categories map[uuid.UUID]*models.Category
	nextSeq    int64

	noteChanges     map[uuid.UUID]pendingNote
	categoryChanges map[uuid.UUID]pendingCategory

	noteSets     []*query.ResultSet[*models.Note]
	categorySets []*query.ResultSet[*models.Category]

	// Mutations since the last notification batch.
	batchDepth        int
	touchedNotes      map[uuid.UUID]bool
	touchedCategories map[uuid.UUID]bool
	batchDirty        bool

	deliveries []func()
	draining   bool
}

type Option func(*DataContext)

// WithClock replaces time.Now for timestamping.
func WithClock(now func() time.Time) Option {
	return func(c *DataContext) {
		c.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *DataContext) {
		c.logger = logger
	}
}

// NewDataContext loads every entity from store into a new context.
func NewDataContext(store Store, opts ...Option) (*DataContext, error) {
	c := &DataContext{
		store:             store,
		now:               func() time.Time { return time.Now().UTC() },
		logger:            slog.Default(),
		notes:             make(map[uuid.UUID]*models.Note),
		categories:        make(map[uuid.UUID]*models.Category),
		nextSeq:           1,
		noteChanges:       make(map[uuid.UUID]pendingNote),
		categoryChanges:   make(map[uuid.UUID]pendingCategory),
		touchedNotes:      make(map[uuid.UUID]bool),
		touchedCategories: make(map[uuid.UUID]bool),
	}
	for _, opt := range opts {
		opt(c)
	}

	snap, err := store.Load()
	if err != nil {
		return nil, &QueryError{Err: err}
	}

	for i := range snap.Categories {
		category := snap.Categories[i]
		c.categories[category.ID] = &category
		c.bumpSeq(category.Seq)
	}
	for i := range snap.Notes {
		note := snap.Notes[i]
		if note.CategoryID != nil {
			category, ok := c.categories[*note.CategoryID]
			if !ok {
				c.logger.Warn("dropping reference to missing category",
					"note_id", note.ID, "category_id", *note.CategoryID)
				note.CategoryID = nil
				c.noteChanges[note.ID] = pendingNote{state: stateUpdated, note: &note}
			}
			note.Category = category
		}
		c.notes[note.ID] = &note
		c.bumpSeq(note.Seq)
	}

	c.logger.Debug("data context loaded",
		"notes", len(c.notes), "categories", len(c.categories))
	return c, nil
}

func (c *DataContext) bumpSeq(seq int64) {
	if seq >= c.nextSeq {
		c.nextSeq = seq + 1
	}
}

func (c *DataContext) takeSeq() int64 {
	seq := c.nextSeq
	c.nextSeq++
	return seq
}

// stamp returns the update time for note, never earlier than its creation.
func (c *DataContext) stamp(note *models.Note) time.Time {
	now := c.now()
	if now.Before(note.CreatedAt) {
		return note.CreatedAt
	}
	return now
}

// mutate runs fn under the context lock, then delivers the resulting change
// batches to result set subscribers.
func (c *DataContext) mutate(fn func() error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrContextClosed
	}
	err := fn()
	c.queueDeliveriesLocked()
	c.drainLocked()
	return err
}

// drainLocked is entered with c.mu held and returns with it released.
// Deliveries run without the lock, one at a time and in commit order, so a
// handler may call back into the context.
func (c *DataContext) drainLocked() {
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.deliveries) > 0 {
		deliver := c.deliveries[0]
		c.deliveries = c.deliveries[1:]
		c.mu.Unlock()
		deliver()
		c.mu.Lock()
	}
	c.draining = false
	c.mu.Unlock()
}

// queueDeliveriesLocked closes the current notification batch unless a
// PerformBatch is still open.
func (c *DataContext) queueDeliveriesLocked() {
	if c.batchDepth > 0 || !c.batchDirty {
		return
	}
	touchedNotes, touchedCategories := c.touchedNotes, c.touchedCategories
	c.touchedNotes = make(map[uuid.UUID]bool)
	c.touchedCategories = make(map[uuid.UUID]bool)
	c.batchDirty = false

	for _, rs := range c.noteSets {
		if deliver := rs.Refresh(touchedNotes); deliver != nil {
			c.deliveries = append(c.deliveries, deliver)
		}
	}
	for _, rs := range c.categorySets {
		if deliver := rs.Refresh(touchedCategories); deliver != nil {
			c.deliveries = append(c.deliveries, deliver)
		}
	}
}

// PerformBatch groups the mutations made by fn into one notification batch.
// Result sets are refreshed once, after fn returns.
func (c *DataContext) PerformBatch(fn func() error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrContextClosed
	}
	c.batchDepth++
	c.mu.Unlock()

	err := fn()

	c.mu.Lock()
	c.batchDepth--
	c.queueDeliveriesLocked()
	c.drainLocked()
	return err
}

func (c *DataContext) markNote(note *models.Note, state changeState) {
	c.batchDirty = true
	c.touchedNotes[note.ID] = true

	prev, ok := c.noteChanges[note.ID]
	switch {
	case ok && prev.state == stateInserted && state == stateDeleted:
		delete(c.noteChanges, note.ID)
	case ok && prev.state == stateInserted:
		// Still an insert as far as the store is concerned.
	default:
		c.noteChanges[note.ID] = pendingNote{state: state, note: note}
	}
}

func (c *DataContext) markCategory(category *models.Category, state changeState) {
	c.batchDirty = true
	c.touchedCategories[category.ID] = true

	prev, ok := c.categoryChanges[category.ID]
	switch {
	case ok && prev.state == stateInserted && state == stateDeleted:
		delete(c.categoryChanges, category.ID)
	case ok && prev.state == stateInserted:
	default:
		c.categoryChanges[category.ID] = pendingCategory{state: state, category: category}
	}
}

// CreateNote inserts a new note. The title is trimmed and must not be empty.
// The note is not durable until Save succeeds.
func (c *DataContext) CreateNote(title, contents string) (*models.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is missing"}
	}

	var note *models.Note
	err := c.mutate(func() error {
		now := c.now()
		note = &models.Note{
			ID:        uuid.New(),
			Title:     title,
			Contents:  contents,
			Seq:       c.takeSeq(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		c.notes[note.ID] = note
		c.markNote(note, stateInserted)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// CreateCategory inserts a new category. Names need not be unique.
func (c *DataContext) CreateCategory(name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is missing"}
	}

	var category *models.Category
	err := c.mutate(func() error {
		category = &models.Category{
			ID:   uuid.New(),
			Name: name,
			Seq:  c.takeSeq(),
		}
		c.categories[category.ID] = category
		c.markCategory(category, stateInserted)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

type noteUpdate struct {
	title       *string
	contents    *string
	setCategory bool
	categoryID  *uuid.UUID
}

// NoteOption selects a field to change in UpdateNote.
type NoteOption func(*noteUpdate)

// WithTitle sets the title. An empty or blank title is ignored and the note
// keeps its current one.
func WithTitle(title string) NoteOption {
	return func(u *noteUpdate) {
		u.title = &title
	}
}

func WithContents(contents string) NoteOption {
	return func(u *noteUpdate) {
		u.contents = &contents
	}
}

func WithCategory(id uuid.UUID) NoteOption {
	return func(u *noteUpdate) {
		u.setCategory = true
		u.categoryID = &id
	}
}

// WithoutCategory clears the note's category.
func WithoutCategory() NoteOption {
	return func(u *noteUpdate) {
		u.setCategory = true
		u.categoryID = nil
	}
}

// UpdateNote applies opts to the note with id. UpdatedAt is refreshed only
// when at least one field actually changes.
func (c *DataContext) UpdateNote(id uuid.UUID, opts ...NoteOption) (*models.Note, error) {
	var u noteUpdate
	for _, opt := range opts {
		opt(&u)
	}

	var note *models.Note
	err := c.mutate(func() error {
		var ok bool
		note, ok = c.notes[id]
		if !ok {
			return ErrNoteNotFound
		}

		var category *models.Category
		if u.setCategory && u.categoryID != nil {
			category, ok = c.categories[*u.categoryID]
			if !ok {
				return &ValidationError{Field: "category", Message: "category does not exist"}
			}
		}

		changed := false
		if u.title != nil {
			if title := strings.TrimSpace(*u.title); title != "" && title != note.Title {
				note.Title = title
				changed = true
			}
		}
		if u.contents != nil && *u.contents != note.Contents {
			note.Contents = *u.contents
			changed = true
		}
		if u.setCategory && !sameCategory(note.CategoryID, u.categoryID) {
			if category != nil {
				categoryID := category.ID
				note.CategoryID = &categoryID
			} else {
				note.CategoryID = nil
			}
			note.Category = category
			changed = true
		}

		if changed {
			note.UpdatedAt = c.stamp(note)
			c.markNote(note, stateUpdated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

func sameCategory(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// UpdateCategory renames a category. Notes in the category are reported as
// updated to note result sets, since their label changed, but keep their
// UpdatedAt.
func (c *DataContext) UpdateCategory(id uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is missing"}
	}

	var category *models.Category
	err := c.mutate(func() error {
		var ok bool
		category, ok = c.categories[id]
		if !ok {
			return ErrCategoryNotFound
		}
		if category.Name == name {
			return nil
		}

		category.Name = name
		c.markCategory(category, stateUpdated)
		for _, note := range c.notes {
			if note.CategoryID != nil && *note.CategoryID == id {
				c.touchedNotes[note.ID] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (c *DataContext) DeleteNote(id uuid.UUID) error {
	return c.mutate(func() error {
		note, ok := c.notes[id]
		if !ok {
			return ErrNoteNotFound
		}
		delete(c.notes, id)
		c.markNote(note, stateDeleted)
		return nil
	})
}

// DeleteCategory removes a category. Notes that referenced it stay, with
// their category cleared; their UpdatedAt is left alone.
func (c *DataContext) DeleteCategory(id uuid.UUID) error {
	return c.mutate(func() error {
		category, ok := c.categories[id]
		if !ok {
			return ErrCategoryNotFound
		}

		for _, note := range c.notes {
			if note.CategoryID != nil && *note.CategoryID == id {
				note.CategoryID = nil
				note.Category = nil
				c.markNote(note, stateUpdated)
			}
		}

		delete(c.categories, id)
		c.markCategory(category, stateDeleted)
		return nil
	})
}

// Note returns the note with id.
func (c *DataContext) Note(id uuid.UUID) (*models.Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	note, ok := c.notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

func (c *DataContext) Category(id uuid.UUID) (*models.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	category, ok := c.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// NotesInCategory is the inverse of Note.Category, most recent first.
func (c *DataContext) NotesInCategory(id uuid.UUID) []*models.Note {
	c.mu.Lock()
	defer c.mu.Unlock()

	inCategory := query.InCategory(id)
	var notes []*models.Note
	for _, note := range c.notes {
		if inCategory(note) {
			notes = append(notes, note)
		}
	}
	less, _ := query.NoteOrder(query.ByUpdatedAt, false)
	sort.Slice(notes, func(i, j int) bool { return less(notes[i], notes[j]) })
	return notes
}

// HasPendingChanges reports whether anything was inserted, changed or
// deleted since the last successful Save.
func (c *DataContext) HasPendingChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasPendingLocked()
}

func (c *DataContext) hasPendingLocked() bool {
	return len(c.noteChanges) > 0 || len(c.categoryChanges) > 0
}

// Save flushes pending changes to the store in one transaction. It does
// nothing when there are no pending changes. On failure the pending changes
// are kept so Save can be retried.
func (c *DataContext) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return &SaveError{Err: ErrContextClosed}
	}
	if !c.hasPendingLocked() {
		return nil
	}

	cs, err := c.changeSetLocked()
	if err != nil {
		return &SaveError{Err: err}
	}

	if err := c.store.Commit(cs); err != nil {
		if errors.Is(err, database.ErrStoreClosed) {
			c.invalidateLocked(err)
		}
		return &SaveError{Err: err}
	}

	c.logger.Debug("saved changes",
		"notes", len(cs.Notes), "categories", len(cs.Categories),
		"deleted_notes", len(cs.DeletedNotes), "deleted_categories", len(cs.DeletedCategories))

	c.noteChanges = make(map[uuid.UUID]pendingNote)
	c.categoryChanges = make(map[uuid.UUID]pendingCategory)
	return nil
}

// Close closes the store and invalidates every result set. Pending changes
// are discarded; save first.
func (c *DataContext) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	noteSets, categorySets := c.detachLocked()
	c.mu.Unlock()

	err := c.store.Close()
	invalid := &QueryError{Err: ErrContextClosed}
	for _, rs := range noteSets {
		rs.Invalidate(invalid)
	}
	for _, rs := range categorySets {
		rs.Invalidate(invalid)
	}
	return err
}

func (c *DataContext) detachLocked() ([]*query.ResultSet[*models.Note], []*query.ResultSet[*models.Category]) {
	noteSets, categorySets := c.noteSets, c.categorySets
	c.noteSets, c.categorySets = nil, nil
	return noteSets, categorySets
}

// invalidateLocked terminates every result set after the store was lost.
// The sets' close hooks take c.mu, so they are cleared first.
func (c *DataContext) invalidateLocked(cause error) {
	noteSets, categorySets := c.detachLocked()
	if len(noteSets) == 0 && len(categorySets) == 0 {
		return
	}
	c.logger.Warn("store lost, invalidating result sets", "error", cause)

	invalid := &QueryError{Err: cause}
	for _, rs := range noteSets {
		rs.OnClose(nil)
		rs.Invalidate(invalid)
	}
	for _, rs := range categorySets {
		rs.OnClose(nil)
		rs.Invalidate(invalid)
	}
}

func (c *DataContext) noteList() []*models.Note {
	out := make([]*models.Note, 0, len(c.notes))
	for _, note := range c.notes {
		out = append(out, note)
	}
	return out
}

func (c *DataContext) categoryList() []*models.Category {
	out := make([]*models.Category, 0, len(c.categories))
	for _, category := range c.categories {
		out = append(out, category)
	}
	return out
}

// QueryNotes returns a live result set over notes.
func (c *DataContext) QueryNotes(req query.Request[*models.Note]) (*query.ResultSet[*models.Note], error) {
	less, err := query.NoteOrder(req.SortKey, req.Ascending)
	if err != nil {
		return nil, &QueryError{Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkStoreLocked(); err != nil {
		return nil, err
	}

	rs := query.NewResultSet(c.noteList, req.Filter, less)
	c.noteSets = append(c.noteSets, rs)
	rs.OnClose(func() { c.removeNoteSet(rs) })
	return rs, nil
}

// QueryCategories returns a live result set over categories.
func (c *DataContext) QueryCategories(req query.Request[*models.Category]) (*query.ResultSet[*models.Category], error) {
	less, err := query.CategoryOrder(req.SortKey, req.Ascending)
	if err != nil {
		return nil, &QueryError{Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkStoreLocked(); err != nil {
		return nil, err
	}

	rs := query.NewResultSet(c.categoryList, req.Filter, less)
	c.categorySets = append(c.categorySets, rs)
	rs.OnClose(func() { c.removeCategorySet(rs) })
	return rs, nil
}

func (c *DataContext) checkStoreLocked() error {
	if c.closed {
		return &QueryError{Err: ErrContextClosed}
	}
	if err := c.store.Ping(); err != nil {
		c.invalidateLocked(err)
		return &QueryError{Err: err}
	}
	return nil
}

func (c *DataContext) removeNoteSet(rs *query.ResultSet[*models.Note]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.noteSets {
		if s == rs {
			c.noteSets = append(c.noteSets[:i], c.noteSets[i+1:]...)
			return
		}
	}
}

func (c *DataContext) removeCategorySet(rs *query.ResultSet[*models.Category]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.categorySets {
		if s == rs {
			c.categorySets = append(c.categorySets[:i], c.categorySets[i+1:]...)
			return
		}
	}
}
