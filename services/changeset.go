package services

import (
	"sort"

	"owlistic-notes/notes/broker"
	"owlistic-notes/notes/database"
	"owlistic-notes/notes/models"
)

func actionFor(state changeState) broker.Action {
	switch state {
	case stateInserted:
		return broker.Created
	case stateDeleted:
		return broker.Deleted
	default:
		return broker.Updated
	}
}

// changeSetLocked turns the pending changes into a ChangeSet, ordered by
// insertion so the flush is deterministic, with one journal event per
// entity.
func (c *DataContext) changeSetLocked() (database.ChangeSet, error) {
	var cs database.ChangeSet

	categories := make([]pendingCategory, 0, len(c.categoryChanges))
	for _, p := range c.categoryChanges {
		categories = append(categories, p)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].category.Seq < categories[j].category.Seq
	})

	notes := make([]pendingNote, 0, len(c.noteChanges))
	for _, p := range c.noteChanges {
		notes = append(notes, p)
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].note.Seq < notes[j].note.Seq
	})

	for _, p := range categories {
		if p.state == stateDeleted {
			cs.DeletedCategories = append(cs.DeletedCategories, p.category.ID)
		} else {
			cs.Categories = append(cs.Categories, p.category.Record())
		}

		event, err := models.NewEvent(
			string(broker.EventTypeFor(models.CategoryEntity, actionFor(p.state))),
			models.CategoryEntity,
			p.category.ID,
			map[string]interface{}{
				"category_id": p.category.ID.String(),
				"name":        p.category.Name,
			},
		)
		if err != nil {
			return database.ChangeSet{}, err
		}
		cs.Events = append(cs.Events, event)
	}

	for _, p := range notes {
		if p.state == stateDeleted {
			cs.DeletedNotes = append(cs.DeletedNotes, p.note.ID)
		} else {
			cs.Notes = append(cs.Notes, p.note.Record())
		}

		data := map[string]interface{}{
			"note_id":    p.note.ID.String(),
			"title":      p.note.Title,
			"updated_at": p.note.UpdatedAt,
		}
		if p.note.CategoryID != nil {
			data["category_id"] = p.note.CategoryID.String()
		}
		event, err := models.NewEvent(
			string(broker.EventTypeFor(models.NoteEntity, actionFor(p.state))),
			models.NoteEntity,
			p.note.ID,
			data,
		)
		if err != nil {
			return database.ChangeSet{}, err
		}
		cs.Events = append(cs.Events, event)
	}

	return cs, nil
}
