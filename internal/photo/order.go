package photo

import (
	"cmp"
	"slices"
	"time"

	"github.com/starford/aquatrack/internal/models"
)

// TimeParser reads an instant out of a document field.
type TimeParser interface {
	Parse(v models.Field) (time.Time, bool)
}

// Entry is a photo together with its position in the document.
type Entry struct {
	Index int
	Photo models.Photo
}

// Order returns photos newest first. Photos with a parseable takenAt sort by
// that instant in epoch milliseconds. The rest take index-len as their key,
// so undated photos count as older than any dated one and keep their
// relative document order. Ties prefer the later document index.
func Order(photos []models.Photo, p TimeParser) []Entry {
	type keyed struct {
		Entry
		key int64
	}
	n := len(photos)
	items := make([]keyed, n)
	for i, ph := range photos {
		key := int64(i - n)
		if ph.TakenAt.Truthy {
			if t, ok := p.Parse(ph.TakenAt); ok {
				key = t.UnixMilli()
			}
		}
		items[i] = keyed{Entry: Entry{Index: i, Photo: ph}, key: key}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		if c := cmp.Compare(b.key, a.key); c != 0 {
			return c
		}
		return cmp.Compare(b.Index, a.Index)
	})

	out := make([]Entry, n)
	for i, it := range items {
		out[i] = it.Entry
	}
	return out
}

// Recent returns at most limit entries from the front of an ordered list.
func Recent(ordered []Entry, limit int) []Entry {
	if limit < 0 {
		limit = 0
	}
	if len(ordered) < limit {
		limit = len(ordered)
	}
	return ordered[:limit]
}
