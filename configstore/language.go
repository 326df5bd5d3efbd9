package configstore

import "strings"

// Stored QA data historically used both two-letter ("cs", "en") and
// three-letter ("cze", "eng") language tags. The canonical set is the
// three-letter form by default; aliases are normalized at the boundary.
var DefaultLanguageAliases = map[string]string{
	"cs": "cze",
	"en": "eng",
}

// DefaultLanguage is the canonical tag used when a request carries no
// usable language.
const DefaultLanguage = "eng"

// LanguageSet normalizes language tags to one canonical set.
type LanguageSet struct {
	aliases map[string]string
	def     string
}

// NewLanguageSet creates a language set. Empty arguments fall back to the
// package defaults.
func NewLanguageSet(defaultLanguage string, aliases map[string]string) *LanguageSet {
	if defaultLanguage == "" {
		defaultLanguage = DefaultLanguage
	}
	if aliases == nil {
		aliases = DefaultLanguageAliases
	}
	return &LanguageSet{aliases: aliases, def: defaultLanguage}
}

// Canonical maps a tag to its canonical form. Unknown tags pass through
// lowercased; empty tags become the default language.
func (s *LanguageSet) Canonical(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return s.def
	}
	if canonical, ok := s.aliases[tag]; ok {
		return canonical
	}
	return tag
}

// Default returns the default canonical language.
func (s *LanguageSet) Default() string {
	return s.def
}
