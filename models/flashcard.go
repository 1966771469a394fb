package models

// Term is one term/definition pair inside a group. Image holds either a data URI
// or an external URL and is omitted from storage when empty.
type Term struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Image      string `json:"image,omitempty"`
}

type FlashcardGroup struct {
	Group       string `json:"group"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	Terms       []Term `json:"terms"`
}

// Collection is the ordered list of groups. It is the only unit of persistence.
type Collection []FlashcardGroup

// Clone returns a deep copy so callers can render or mutate without touching the original.
func (c Collection) Clone() Collection {
	if c == nil {
		return Collection{}
	}
	out := make(Collection, len(c))
	for i, g := range c {
		out[i] = g.Clone()
	}
	return out
}

// IndexOf returns the position of the first group named name, or -1.
func (c Collection) IndexOf(name string) int {
	for i, g := range c {
		if g.Group == name {
			return i
		}
	}
	return -1
}

func (g FlashcardGroup) Clone() FlashcardGroup {
	cp := g
	if g.Terms != nil {
		cp.Terms = make([]Term, len(g.Terms))
		copy(cp.Terms, g.Terms)
	} else {
		cp.Terms = []Term{}
	}
	return cp
}

const (
	DefaultStorageKey = "flashcards"
	ExportFileName    = "flashcards.pdf"
)
