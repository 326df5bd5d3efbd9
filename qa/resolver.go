// Package qa resolves frequently-asked questions and greetings without
// touching a language model: keyword overlap against a curated entry set,
// with an explicit confidence so the pipeline can abstain.
package qa

import (
	"log/slog"
	"sort"
	"strings"
)

// Entry is one curated question/answer pair for a language.
type Entry struct {
	ID              string   `yaml:"id" json:"id"`
	Question        string   `yaml:"question" json:"question"`
	Answer          string   `yaml:"answer" json:"answer"`
	Keywords        []string `yaml:"keywords" json:"keywords"`
	Language        string   `yaml:"language" json:"language"`
	ImportanceLevel int      `yaml:"importance_level" json:"importance_level"`
	Order           int      `yaml:"order" json:"order"`
	Followup        string   `yaml:"followup,omitempty" json:"followup,omitempty"`
}

// Candidate is a resolved answer with the score that produced it.
type Candidate struct {
	Intent     string
	Confidence float64
	Answer     string
	Followup   string
	Language   string
}

const (
	IntentGreeting = "greeting"
	IntentFAQ      = "faq"
)

// DefaultMinConfidence is the score below which the resolver abstains.
const DefaultMinConfidence = 0.3

// DefaultGreetings are the built-in greeting phrases per canonical language.
func DefaultGreetings() map[string][]string {
	return map[string][]string{
		"cze": {"ahoj", "dobrý den", "zdravím", "čau"},
		"eng": {"hello", "hi", "hey", "good morning"},
	}
}

// Options tune a Resolver. Zero values fall back to the defaults.
type Options struct {
	// Greetings maps canonical language to greeting phrases. Nil uses
	// DefaultGreetings.
	Greetings map[string][]string

	// MinConfidence is the abstain threshold. Zero uses DefaultMinConfidence.
	MinConfidence float64

	// DefaultLanguage is used when a query's language has no entries.
	DefaultLanguage string

	Logger *slog.Logger
}

// Resolver matches queries against greetings and FAQ entries.
type Resolver struct {
	entries       map[string][]Entry
	greetings     map[string][]string
	minConfidence float64
	defaultLang   string
	logger        *slog.Logger
}

// NewResolver builds a resolver over the given entries, grouped by their
// Language field. Entries are ordered by importance (descending) then by
// their declared order, which fixes tie-breaking up front.
func NewResolver(entries []Entry, opts Options) *Resolver {
	if opts.Greetings == nil {
		opts.Greetings = DefaultGreetings()
	}
	if opts.MinConfidence == 0 {
		opts.MinConfidence = DefaultMinConfidence
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "eng"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	byLang := make(map[string][]Entry)
	for _, e := range entries {
		byLang[e.Language] = append(byLang[e.Language], e)
	}
	for lang := range byLang {
		group := byLang[lang]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].ImportanceLevel != group[j].ImportanceLevel {
				return group[i].ImportanceLevel > group[j].ImportanceLevel
			}
			return group[i].Order < group[j].Order
		})
	}

	return &Resolver{
		entries:       byLang,
		greetings:     opts.Greetings,
		minConfidence: opts.MinConfidence,
		defaultLang:   opts.DefaultLanguage,
		logger:        opts.Logger,
	}
}

// Resolve matches a query in the given canonical language. Greetings win
// outright; otherwise the best-scoring FAQ entry is returned. It reports
// false when nothing clears the confidence threshold.
func (r *Resolver) Resolve(query, language string) (*Candidate, bool) {
	normalized := normalize(query)
	if normalized == "" {
		return nil, false
	}

	if r.isGreeting(normalized, language) {
		return &Candidate{
			Intent:     IntentGreeting,
			Confidence: 1.0,
			Language:   language,
		}, true
	}

	entries, lang := r.entriesFor(language)
	if len(entries) == 0 {
		return nil, false
	}

	var best *Entry
	bestScore := 0.0
	for i := range entries {
		score := scoreEntry(normalized, entries[i])
		// The sort order already encodes tie-breaks: only a strictly
		// better score displaces the current best.
		if score > bestScore {
			bestScore = score
			best = &entries[i]
		}
	}

	if best == nil || bestScore < r.minConfidence {
		return nil, false
	}

	r.logger.Debug("faq entry matched",
		"entry_id", best.ID,
		"score", bestScore,
		"language", lang,
	)
	return &Candidate{
		Intent:     IntentFAQ,
		Confidence: bestScore,
		Answer:     best.Answer,
		Followup:   best.Followup,
		Language:   lang,
	}, true
}

func (r *Resolver) entriesFor(language string) ([]Entry, string) {
	if entries, ok := r.entries[language]; ok {
		return entries, language
	}
	return r.entries[r.defaultLang], r.defaultLang
}

func (r *Resolver) isGreeting(normalized, language string) bool {
	phrases, ok := r.greetings[language]
	if !ok {
		phrases = r.greetings[r.defaultLang]
	}
	for _, phrase := range phrases {
		p := normalize(phrase)
		if normalized == p || strings.HasPrefix(normalized, p+" ") {
			return true
		}
	}
	return false
}

// scoreEntry is the fraction of the entry's keywords found in the query.
// An entry without keywords falls back to whole-question containment.
func scoreEntry(normalized string, e Entry) float64 {
	if len(e.Keywords) == 0 {
		if q := normalize(e.Question); q != "" && strings.Contains(normalized, q) {
			return 1.0
		}
		return 0
	}

	hits := 0
	for _, kw := range e.Keywords {
		if containsWord(normalized, normalize(kw)) {
			hits++
		}
	}
	return float64(hits) / float64(len(e.Keywords))
}

// containsWord reports whether needle occurs in haystack on word boundaries,
// so "den" does not match inside "denně".
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		startOK := start == 0 || haystack[start-1] == ' '
		endOK := end == len(haystack) || haystack[end] == ' '
		if startOK && endOK {
			return true
		}
		idx = start + 1
	}
}

var punctuationReplacer = strings.NewReplacer(
	"?", " ", "!", " ", ".", " ", ",", " ", ";", " ", ":", " ",
)

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctuationReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
