package render

// Bookmarks holds the per-card bookmark flags of one result list. Flags are
// keyed by card id (see CardIDs) and belong to a list generation: once the session replaces
// its results, every flag reads false again. Nothing here is persisted.
type Bookmarks struct {
	generation uint64
	marked     map[string]bool
}

func NewBookmarks() *Bookmarks {
	return &Bookmarks{marked: make(map[string]bool)}
}

// Toggle flips the flag of id within generation and returns the new value.
func (b *Bookmarks) Toggle(generation uint64, id string) bool {
	if b.generation != generation || b.marked == nil {
		b.generation = generation
		b.marked = make(map[string]bool)
	}
	b.marked[id] = !b.marked[id]
	return b.marked[id]
}

func (b *Bookmarks) IsMarked(generation uint64, id string) bool {
	if b == nil || b.generation != generation {
		return false
	}
	return b.marked[id]
}

func (b *Bookmarks) Count(generation uint64) int {
	if b == nil || b.generation != generation {
		return 0
	}
	count := 0
	for _, marked := range b.marked {
		if marked {
			count++
		}
	}
	return count
}
