package query

import (
	"owlistic-notes/notes/models"

	"github.com/google/uuid"
)

// Diff computes the changes turning prev into next. touched holds the ids of
// entities whose contents changed; they are reported as Updated unless they
// are inserted or moved.
//
// Deletes come first, highest index first. Inserts and moves follow in
// target order, and only survivors outside the longest run that already has
// the right relative order are moved. Updates come last, at final positions.
func Diff[T models.Entity](prev, next []T, touched map[uuid.UUID]bool) []Change[T] {
	nextIndex := make(map[uuid.UUID]int, len(next))
	for i, e := range next {
		nextIndex[e.EntityID()] = i
	}
	inPrev := make(map[uuid.UUID]bool, len(prev))
	for _, e := range prev {
		inPrev[e.EntityID()] = true
	}

	var changes []Change[T]

	for i := len(prev) - 1; i >= 0; i-- {
		if _, ok := nextIndex[prev[i].EntityID()]; !ok {
			changes = append(changes, Change[T]{Type: Deleted, Entity: prev[i], Index: i})
		}
	}

	work := make([]uuid.UUID, 0, len(next))
	order := make([]int, 0, len(prev))
	for _, e := range prev {
		if i, ok := nextIndex[e.EntityID()]; ok {
			work = append(work, e.EntityID())
			order = append(order, i)
		}
	}

	stable := make(map[uuid.UUID]bool, len(order))
	for _, k := range longestIncreasing(order) {
		stable[work[k]] = true
	}

	moved := make(map[uuid.UUID]bool)
	for i, e := range next {
		id := e.EntityID()
		if stable[id] {
			continue
		}

		if !inPrev[id] {
			at := slotAfter(work, next, i)
			work = insertAt(work, at, id)
			changes = append(changes, Change[T]{Type: Inserted, Entity: e, Index: at})
			continue
		}

		from := indexOf(work, id)
		work = append(work[:from], work[from+1:]...)
		to := slotAfter(work, next, i)
		work = insertAt(work, to, id)
		if from != to {
			moved[id] = true
			changes = append(changes, Change[T]{Type: Moved, Entity: e, Index: from, NewIndex: to})
		}
	}

	for i, e := range next {
		id := e.EntityID()
		if touched[id] && inPrev[id] && !moved[id] {
			changes = append(changes, Change[T]{Type: Updated, Entity: e, Index: i})
		}
	}

	return changes
}

// slotAfter is the position directly after next[i-1] in work.
func slotAfter[T models.Entity](work []uuid.UUID, next []T, i int) int {
	if i == 0 {
		return 0
	}
	return indexOf(work, next[i-1].EntityID()) + 1
}

func indexOf(ids []uuid.UUID, id uuid.UUID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// longestIncreasing returns the positions in seq of one longest strictly
// increasing subsequence.
func longestIncreasing(seq []int) []int {
	if len(seq) == 0 {
		return nil
	}

	tails := make([]int, 0, len(seq))
	prev := make([]int, len(seq))
	for i, v := range seq {
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	out := make([]int, len(tails))
	for i, k := len(tails)-1, tails[len(tails)-1]; i >= 0; i-- {
		out[i] = k
		k = prev[k]
	}
	return out
}
