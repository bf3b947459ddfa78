package normalizer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

const (
	maxModelTokens    = 3
	maxFallbackWords  = 5
	maxPasses         = 4
	boundaryPrefix    = `(^|[^a-z0-9])`
	boundarySuffix    = `($|[^a-z0-9])`
	placeholderString = " "
)

// DefaultAliases maps brand spelling variants to canonical brand tokens.
var DefaultAliases = map[string]string{
	"snap on":          "snap-on",
	"snapon":           "snap-on",
	"de walt":          "dewalt",
	"black and decker": "black+decker",
	"black & decker":   "black+decker",
	"black decker":     "black+decker",
	"porter cable":     "porter-cable",
	"mac tool":         "mac tools",
}

var (
	fluffRegexp    = regexp.MustCompile(boundaryPrefix + `(tool only|bare tool|no batter(?:y|ies)(?:\s*(?:or|and|/|&)\s*charger)?|no charger|tested|works|working|free shipping)` + boundarySuffix)
	clauseRegexp   = regexp.MustCompile(`(?:^|\s)(?:with(?:\s|$)|w/).*$`)
	capacityRegexp = regexp.MustCompile(`\b\d+(?:\.\d+)?\s*ah\b`)
	punctRegexp    = regexp.MustCompile(`[^a-z0-9]+`)

	// modelPatterns are applied in order, span matched by a pattern is not matched again.
	modelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{3,5} \d{2,3}\b`),
		regexp.MustCompile(`\b[a-z]{2,5}\d{2,5}[a-z0-9]{0,4}\b`),
		regexp.MustCompile(`\b\d{3,}\b`),
	}
)

// Normalizer reduces listing titles to short brand+model queries.
// It is safe for concurrent use.
type Normalizer struct {
	aliases *regexp.Regexp
	canon   map[string]string
	brands  *regexp.Regexp
}

// New returns Normalizer recognizing provided brands.
// Brand variants found in aliases are rewritten to their canonical form first.
func New(brands []string, aliases map[string]string) *Normalizer {
	canon := make(map[string]string, len(aliases))
	for variant, canonical := range aliases {
		canon[clean(variant)] = clean(canonical)
	}

	canonical := lo.Uniq(lo.FilterMap(brands, func(brand string, _ int) (string, bool) {
		brand = clean(brand)
		if c, ok := canon[brand]; ok {
			brand = c
		}
		return brand, brand != ""
	}))

	return &Normalizer{
		aliases: wordsRegexp(lo.Keys(canon)),
		canon:   canon,
		brands:  wordsRegexp(canonical),
	}
}

// Normalize returns lookup query for title. Result is never empty for non-blank title.
// Normalizing returned query gives the same query.
func (n *Normalizer) Normalize(title string) string {
	query := n.normalize(title)
	// joined tokens may form a longer model number, e.g. "1234 567".
	for i := 0; i < maxPasses; i++ {
		next := n.normalize(query)
		if next == query {
			break
		}
		query = next
	}
	return query
}

func (n *Normalizer) normalize(title string) string {
	text := clean(title)
	if text == "" {
		return ""
	}

	text = n.canonicalize(text)
	brand := n.detectBrand(text)

	cleaned := replaceAll(fluffRegexp, text, "$1$3")
	cleaned = clauseRegexp.ReplaceAllString(cleaned, "")
	cleaned = capacityRegexp.ReplaceAllString(cleaned, placeholderString)
	cleaned = strings.TrimSpace(punctRegexp.ReplaceAllString(cleaned, placeholderString))

	tokens := extractModels(cleaned)
	if len(tokens) > maxModelTokens {
		tokens = tokens[:maxModelTokens]
	}

	switch {
	case brand != "" && len(tokens) > 0:
		return brand + " " + strings.Join(tokens, " ")
	case brand != "":
		return brand
	case len(tokens) > 0:
		return strings.Join(tokens, " ")
	}

	if words := strings.Fields(cleaned); len(words) > 0 {
		if len(words) > maxFallbackWords {
			words = words[:maxFallbackWords]
		}
		return strings.Join(words, " ")
	}

	return text
}

// Key returns cache key for query.
func Key(query string) string {
	return clean(query)
}

func (n *Normalizer) canonicalize(text string) string {
	if n.aliases == nil {
		return text
	}
	return n.aliases.ReplaceAllStringFunc(text, func(match string) string {
		parts := n.aliases.FindStringSubmatch(match)
		return parts[1] + n.canon[parts[2]] + parts[3]
	})
}

func (n *Normalizer) detectBrand(text string) string {
	if n.brands == nil {
		return ""
	}
	match := n.brands.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[2]
}

// replaceAll repeats replacement until nothing matches, adjacent matches share boundary characters.
func replaceAll(re *regexp.Regexp, s, repl string) string {
	for {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return s
		}
		s = next
	}
}

// extractModels returns model tokens in order of appearance.
func extractModels(text string) []string {
	type token struct {
		pos  int
		text string
	}

	tokens := []token{}
	remaining := text
	for _, pattern := range modelPatterns {
		for _, loc := range pattern.FindAllStringIndex(remaining, -1) {
			tokens = append(tokens, token{pos: loc[0], text: remaining[loc[0]:loc[1]]})
		}
		remaining = pattern.ReplaceAllStringFunc(remaining, func(match string) string {
			return strings.Repeat(placeholderString, len(match))
		})
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].pos < tokens[j].pos
	})

	return lo.Uniq(lo.Map(tokens, func(t token, _ int) string {
		return t.text
	}))
}

// wordsRegexp matches any of words surrounded by non-alphanumeric characters, longest word first.
func wordsRegexp(words []string) *regexp.Regexp {
	quoted := lo.FilterMap(words, func(w string, _ int) (string, bool) {
		return regexp.QuoteMeta(w), w != ""
	})
	if len(quoted) == 0 {
		return nil
	}
	sort.SliceStable(quoted, func(i, j int) bool {
		if len(quoted[i]) != len(quoted[j]) {
			return len(quoted[i]) > len(quoted[j])
		}
		return quoted[i] < quoted[j]
	})
	return regexp.MustCompile(boundaryPrefix + `(` + strings.Join(quoted, "|") + `)` + boundarySuffix)
}

func clean(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
