// Package search provides a small, deterministic, concurrency-safe in-memory
// index over short catalog documents (shop item names and descriptions).
// It lets chat clients resolve free text such as "buy 2 carrots" to an item.
//
//   - No logging in the library (callers decide how/what to log)
//   - Functional options for stop words, prefix matching, and caps
//   - Unicode-aware tokenization
//   - Immutable after construction (safe for concurrent use)
//   - Deterministic scoring and sorting (stable order for ties)
//
// Scoring uses Jaccard similarity between the query token set and each
// document's token set: score = |Q ∩ D| / |Q ∪ D|. Tokens matching the
// document's title (its first field) count double.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Doc is one indexable record. Title is weighted above Body.
type Doc struct {
	ID    int64
	Title string
	Body  string
}

// Result is a ranked document id with its similarity score.
type Result struct {
	ID    int64
	Title string
	Score float64
}

// Index is the minimal interface implemented by all search indices.
type Index interface {
	TopK(query string, k int) []Result
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	stopwords   map[string]struct{}
	prefixRunes int
	maxDocs     int
}

func defaultConfig() config {
	return config{
		stopwords:   nil,
		prefixRunes: 0,
		maxDocs:     0,
	}
}

// WithStopwords drops the given words from both documents and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithPrefixMatch treats two tokens as equal when the shorter one, at least
// n runes long, is a prefix of the other ("carrot" matches "carrots").
func WithPrefixMatch(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.prefixRunes = n
		}
	}
}

// WithMaxDocs caps how many documents are indexed.
func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type doc struct {
	id     int64
	title  string
	tokens map[string]struct{}
	titled map[string]struct{}
}

type index struct {
	cfg  config
	docs []doc
}

// NewIndex builds an Index over docs. Documents without any token are
// skipped.
func NewIndex(docs []Doc, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	out := make([]doc, 0, len(docs))
	for _, d := range docs {
		title := strings.TrimSpace(normalizeWhitespace(d.Title))
		titled := tokenize(title, cfg.stopwords)
		toks := tokenize(title+" "+normalizeWhitespace(d.Body), cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		out = append(out, doc{id: d.ID, title: title, tokens: toks, titled: titled})
		if cfg.maxDocs > 0 && len(out) >= cfg.maxDocs {
			break
		}
	}
	return &index{cfg: cfg, docs: out}
}

// TopK returns up to k best-matching documents.
func (i *index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 {
		return nil
	}
	if strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	type scored struct {
		id       int64
		title    string
		score    float64
		lenRunes int
	}

	buf := make([]scored, 0, min(k*4, len(i.docs)))
	for _, d := range i.docs {
		over := i.overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + len(d.tokens) - over)
		if union <= 0 {
			continue
		}
		score := float64(over) / union
		if hits := i.overlap(qTokens, d.titled); hits > 0 {
			score += float64(hits) / float64(qLen+len(d.titled))
		}
		if score > 1 {
			score = 1
		}
		buf = append(buf, scored{
			id:       d.id,
			title:    d.title,
			score:    score,
			lenRunes: utf8.RuneCountInString(d.title),
		})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].lenRunes != buf[b].lenRunes {
			return buf[a].lenRunes < buf[b].lenRunes
		}
		return buf[a].id < buf[b].id
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for n := 0; n < k; n++ {
		out[n] = Result{ID: buf[n].id, Title: buf[n].title, Score: buf[n].score}
	}
	return out
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	s = strings.ToLower(s)
	words := wordRE.FindAllString(s, -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

// overlap counts query tokens found in d, exactly or by prefix.
func (i *index) overlap(q, d map[string]struct{}) int {
	if len(q) == 0 || len(d) == 0 {
		return 0
	}
	n := 0
	for t := range q {
		if _, ok := d[t]; ok {
			n++
			continue
		}
		if i.cfg.prefixRunes > 0 && prefixHit(t, d, i.cfg.prefixRunes) {
			n++
		}
	}
	return n
}

func prefixHit(t string, d map[string]struct{}, minRunes int) bool {
	for w := range d {
		short, long := t, w
		if len(short) > len(long) {
			short, long = long, short
		}
		if utf8.RuneCountInString(short) >= minRunes && strings.HasPrefix(long, short) {
			return true
		}
	}
	return false
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
