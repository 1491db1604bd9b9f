package consent

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/user/consent-crawler/internal/entity"
)

// categoryHeaderPrefix is the identifier prefix OneTrust puts on the
// preference-center category headers; the suffix is the category id.
const categoryHeaderPrefix = "ot-header-id-"

// ErrCategoryConflict means the same category id was bound to two different
// labels on one page. Extraction fails as a whole: silently resolving the
// conflict could misclassify a tracking category as necessary.
var ErrCategoryConflict = errors.New("consent category id bound to conflicting labels")

// Header is one raw element scanned from the page: its identifier attribute
// and rendered text. It is the explicit input payload for category
// extraction; no page state is consulted beyond it.
type Header struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ExtractCategories builds the category table from scanned header elements.
// Elements without the category-header prefix are ignored. A category id
// seen with two distinct labels fails the whole extraction, regardless of
// discovery order.
func ExtractCategories(headers []Header) ([]entity.ConsentCategory, error) {
	var categories []entity.ConsentCategory
	labels := make(map[string]string)

	for _, h := range headers {
		if !strings.HasPrefix(h.ID, categoryHeaderPrefix) {
			continue
		}
		id := strings.TrimPrefix(h.ID, categoryHeaderPrefix)
		if id == "" {
			continue
		}
		label := strings.TrimSpace(h.Text)

		if seen, ok := labels[id]; ok {
			if seen != label {
				return nil, fmt.Errorf("%w: id %q has labels %q and %q", ErrCategoryConflict, id, seen, label)
			}
			continue
		}
		labels[id] = label
		categories = append(categories, entity.ConsentCategory{ID: id, Label: label})
	}
	return categories, nil
}

// Corpus holds the label vocabulary that marks a category as tracking.
// Keywords match as substrings; ExactWords match whole words only, which
// keeps short terms like "ad" from firing on words that merely contain them.
type Corpus struct {
	Keywords   []string
	ExactWords []string
}

// DefaultCorpus returns the stock tracking vocabulary.
func DefaultCorpus() Corpus {
	return Corpus{
		Keywords:   []string{"track", "target", "advert"},
		ExactWords: []string{"ad", "ads"},
	}
}

// IsTracking reports whether a category label indicates a tracking purpose.
func (c Corpus) IsTracking(label string) bool {
	lower := strings.ToLower(label)

	for _, kw := range c.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		for _, exact := range c.ExactWords {
			if w == exact {
				return true
			}
		}
	}
	return false
}

// Mode selects which decision a forged consent state expresses.
type Mode string

const (
	// ModeAcceptAll enables every category.
	ModeAcceptAll Mode = "accept-all"
	// ModeRejectTracking disables tracking categories and enables the rest.
	ModeRejectTracking Mode = "reject-tracking"
	// ModeRejectAll disables every category.
	ModeRejectAll Mode = "reject-all"
)

// IsValid returns true if this is a known mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeAcceptAll, ModeRejectTracking, ModeRejectAll:
		return true
	default:
		return false
	}
}

// BuildDecision maps every discovered category to its consent flag under
// the given mode. Every category id gets an entry.
func BuildDecision(categories []entity.ConsentCategory, corpus Corpus, mode Mode) entity.ConsentDecision {
	decision := make(entity.ConsentDecision, len(categories))
	for _, cat := range categories {
		switch mode {
		case ModeAcceptAll:
			decision[cat.ID] = 1
		case ModeRejectAll:
			decision[cat.ID] = 0
		default:
			if corpus.IsTracking(cat.Label) {
				decision[cat.ID] = 0
			} else {
				decision[cat.ID] = 1
			}
		}
	}
	return decision
}
