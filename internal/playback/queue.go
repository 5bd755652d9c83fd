package playback

import (
	"slices"

	"github.com/samber/lo"
)

// queue holds the items and the cursor. Navigation walks order, which is the
// identity permutation unless shuffle is on.
type queue struct {
	items    []QueueItem
	order    []int
	pos      int // index into order, -1 if nothing selected
	shuffled bool
}

func newQueue() *queue {
	return &queue{pos: -1}
}

// set replaces the items and selects start; an out-of-range start clears
// the cursor.
func (q *queue) set(items []QueueItem, start int) {
	q.items = make([]QueueItem, len(items))
	for i := range items {
		q.items[i] = *items[i].clone()
	}
	q.order = lo.Range(len(items))
	q.pos = -1
	if start >= 0 && start < len(items) {
		q.pos = start
	}
	if q.shuffled {
		q.reshuffle()
	}
}

func (q *queue) len() int { return len(q.items) }

// index returns the item index under the cursor, or -1.
func (q *queue) index() int {
	if q.pos < 0 || q.pos >= len(q.order) {
		return -1
	}
	return q.order[q.pos]
}

// item returns a copy of item i.
func (q *queue) item(i int) (QueueItem, bool) {
	if i < 0 || i >= len(q.items) {
		return QueueItem{}, false
	}
	return *q.items[i].clone(), true
}

// jumpTo moves the cursor to item i.
func (q *queue) jumpTo(i int) bool {
	if i < 0 || i >= len(q.items) {
		return false
	}
	q.pos = slices.Index(q.order, i)
	return true
}

// next moves the cursor forward. At the end it wraps for RepeatAll and
// otherwise stays put and reports false. With no cursor it starts at the
// first item.
func (q *queue) next(mode RepeatMode) (int, bool) {
	if len(q.items) == 0 {
		return -1, false
	}
	switch {
	case q.pos < 0:
		q.pos = 0
	case q.pos+1 < len(q.order):
		q.pos++
	case mode == RepeatAll:
		q.pos = 0
	default:
		return q.index(), false
	}
	return q.index(), true
}

// previous mirrors next. With no cursor it starts at the last item.
func (q *queue) previous(mode RepeatMode) (int, bool) {
	if len(q.items) == 0 {
		return -1, false
	}
	switch {
	case q.pos < 0:
		q.pos = len(q.order) - 1
	case q.pos > 0:
		q.pos--
	case mode == RepeatAll:
		q.pos = len(q.order) - 1
	default:
		return q.index(), false
	}
	return q.index(), true
}

// setShuffle switches the play order. The current item stays current and,
// when shuffling, plays first.
func (q *queue) setShuffle(on bool) {
	q.shuffled = on
	if on {
		q.reshuffle()
		return
	}
	cur := q.index()
	q.order = lo.Range(len(q.items))
	q.pos = cur
}

func (q *queue) reshuffle() {
	cur := q.index()
	rest := lo.Without(lo.Range(len(q.items)), cur)
	rest = lo.Shuffle(rest)
	if cur < 0 {
		q.order = rest
		return
	}
	q.order = append([]int{cur}, rest...)
	q.pos = 0
}
