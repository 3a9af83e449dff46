// Package faq provides keyword-based FAQ lookup and automatic FAQ creation
// from repeated user questions.
package faq

import (
	"sort"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/coldflow/supportbot/internal/domain"
	"github.com/coldflow/supportbot/internal/logger"
	"github.com/coldflow/supportbot/internal/matching"
)

// IndexMatch is one FAQ candidate produced by an index lookup.
type IndexMatch struct {
	FAQ             *domain.FAQ
	UniqueMatches   int      // Unique keywords matched
	Coverage        float64  // UniqueMatches / TotalKeywords
	MatchedKeywords []string // Which keywords matched (for debugging/testing)
}

// Index holds an Aho-Corasick automaton over every active FAQ's keywords, so
// one pass through the user message finds every candidate regardless of how
// many FAQs are loaded.
type Index struct {
	mu        sync.RWMutex
	matcher   *ahocorasick.Matcher
	faqs      []*domain.FAQ
	keywords  []string
	kwToFAQs  map[string][]*keywordMapping
	logger    logger.Logger
}

type keywordMapping struct {
	faq          *domain.FAQ
	keywordIndex int
}

const estimatedKeywordsPerFAQ = 8

// NewIndex builds the automaton from the given FAQs. Inactive entries and
// entries without keywords are skipped.
func NewIndex(faqs []*domain.FAQ, log logger.Logger) *Index {
	if log == nil {
		log = logger.NewNop()
	}

	idx := &Index{
		kwToFAQs: make(map[string][]*keywordMapping),
		logger:   log,
	}
	idx.replace(faqs)

	return idx
}

// Reload hot-swaps the FAQ catalog without restart. Thread-safe: the
// automaton is rebuilt under the write lock so lookups never see a partial
// index.
func (i *Index) Reload(faqs []*domain.FAQ) {
	i.replace(faqs)

	i.logger.Info("faq index reloaded",
		logger.Int("faqs", i.FAQCount()),
		logger.Int("keywords", i.KeywordCount()))
}

func (i *Index) replace(faqs []*domain.FAQ) {
	active := make([]*domain.FAQ, 0, len(faqs))
	for _, f := range faqs {
		if f.Active && len(f.Keywords) > 0 {
			active = append(active, f)
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.faqs = active
	i.keywords = make([]string, 0, len(active)*estimatedKeywordsPerFAQ)
	i.kwToFAQs = make(map[string][]*keywordMapping)

	for _, f := range active {
		for idx, kw := range f.Keywords {
			normalized := matching.Normalize(kw)
			if normalized == "" {
				continue
			}
			// Pad with spaces so the automaton only hits on whole words;
			// "ice" must not match inside "service".
			padded := " " + normalized + " "
			i.keywords = append(i.keywords, padded)
			i.kwToFAQs[padded] = append(i.kwToFAQs[padded], &keywordMapping{
				faq:          f,
				keywordIndex: idx,
			})
		}
	}

	if len(i.keywords) > 0 {
		i.matcher = ahocorasick.NewStringMatcher(i.keywords)
	} else {
		i.matcher = nil
	}
}

// Match finds every FAQ with at least one keyword hit in the message, sorted
// by unique keyword matches, then coverage, then view count.
func (i *Index) Match(message string) []IndexMatch {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.matcher == nil {
		return nil
	}

	normalized := matching.Normalize(message)
	if normalized == "" {
		return nil
	}
	text := " " + normalized + " "

	hits := i.matcher.Match([]byte(text))

	type accumulator struct {
		faq             *domain.FAQ
		matchedKeywords map[int]bool
		keywordTexts    []string
	}
	accum := make(map[int64]*accumulator)

	for _, hitIndex := range hits {
		if hitIndex >= len(i.keywords) {
			continue
		}
		keyword := i.keywords[hitIndex]

		for _, m := range i.kwToFAQs[keyword] {
			acc, exists := accum[m.faq.ID]
			if !exists {
				acc = &accumulator{
					faq:             m.faq,
					matchedKeywords: make(map[int]bool),
				}
				accum[m.faq.ID] = acc
			}
			if !acc.matchedKeywords[m.keywordIndex] {
				acc.matchedKeywords[m.keywordIndex] = true
				acc.keywordTexts = append(acc.keywordTexts, m.faq.Keywords[m.keywordIndex])
			}
		}
	}

	results := make([]IndexMatch, 0, len(accum))
	for _, acc := range accum {
		totalKeywords := len(acc.faq.Keywords)
		if totalKeywords == 0 {
			continue
		}

		unique := len(acc.matchedKeywords)
		sort.Strings(acc.keywordTexts)
		results = append(results, IndexMatch{
			FAQ:             acc.faq,
			UniqueMatches:   unique,
			Coverage:        float64(unique) / float64(totalKeywords),
			MatchedKeywords: acc.keywordTexts,
		})
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].UniqueMatches != results[b].UniqueMatches {
			return results[a].UniqueMatches > results[b].UniqueMatches
		}
		if results[a].Coverage != results[b].Coverage {
			return results[a].Coverage > results[b].Coverage
		}
		return results[a].FAQ.ViewCount > results[b].FAQ.ViewCount
	})

	return results
}

// FAQCount returns the number of indexed FAQs.
func (i *Index) FAQCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.faqs)
}

// KeywordCount returns the total keywords across all indexed FAQs.
func (i *Index) KeywordCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.keywords)
}
