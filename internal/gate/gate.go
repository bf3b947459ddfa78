package gate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Rule names in evaluation order.
const (
	RuleJunkTerm            = "junk-term"
	RuleAccessoryTerm       = "accessory-term"
	RuleThirdPartyAccessory = "third-party-accessory"
	RuleAftermarketBattery  = "aftermarket-battery"
	RuleLiquidationLot      = "liquidation-lot"
	RuleBrandWhitelist      = "brand-whitelist"
)

var (
	capacityRegexp   = regexp.MustCompile(`(?:^|[^a-z0-9.])\d+(?:\.\d+)?\s*ah(?:$|[^a-z0-9])`)
	multiPackRegexp  = regexp.MustCompile(`(?:^|[^a-z0-9])(?:\d+\s*-?\s*(?:pack|pk|pcs)|\d+\s*x)(?:$|[^a-z0-9])`)
	batteryRegexp    = regexp.MustCompile(`(?:^|[^a-z0-9])batter(?:y|ies)(?:$|[^a-z0-9])`)
	liquidationRegex = regexp.MustCompile(`(?:^|[^a-z0-9])parts\s*ai\s*\d+`)
)

// Rule is named quality check.
// Check receives lower-cased title and returns rejection reason when title should be rejected.
type Rule struct {
	Name  string
	Check func(title string) (reason string, rejected bool)
}

// Verdict is quality gate classification of a title.
type Verdict struct {
	Accepted bool
	Rule     string
	Reason   string
}

// Gate classifies listing titles as resalable or not.
// It is safe for concurrent use.
type Gate struct {
	rules []Rule
}

// NewGate returns new Gate using provided term lists.
// Empty lists are replaced with defaults.
func NewGate(terms Terms) *Gate {
	applyDefaults(&terms)

	return &Gate{
		rules: Rules(terms),
	}
}

// Evaluate classifies title. First matching rule rejects title, title is accepted otherwise.
func (g *Gate) Evaluate(title string) Verdict {
	t := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	for _, rule := range g.rules {
		if reason, rejected := rule.Check(t); rejected {
			return Verdict{
				Rule:   rule.Name,
				Reason: reason,
			}
		}
	}
	return Verdict{Accepted: true}
}

// Rules returns ordered quality rules built from terms.
func Rules(terms Terms) []Rule {
	junk := inflectedMatcher(terms.JunkTerms)
	accessories := inflectedMatcher(terms.AccessoryTerms)
	accessoryNouns := inflectedMatcher(terms.AccessoryNouns)
	oem := termMatcher(terms.OEMIndicators)
	brands := termMatcher(terms.Brands)
	forBrand := forBrandMatcher(terms.Brands)

	return []Rule{
		{
			Name: RuleJunkTerm,
			Check: func(title string) (string, bool) {
				if term, ok := junk.find(title); ok {
					return fmt.Sprintf("contains junk term %q", term), true
				}
				return "", false
			},
		},
		{
			Name: RuleAccessoryTerm,
			Check: func(title string) (string, bool) {
				if term, ok := accessories.find(title); ok {
					return fmt.Sprintf("contains accessory term %q", term), true
				}
				return "", false
			},
		},
		{
			Name: RuleThirdPartyAccessory,
			Check: func(title string) (string, bool) {
				brand, ok := forBrand.find(title)
				if !ok {
					return "", false
				}
				if noun, ok := accessoryNouns.find(title); ok {
					return fmt.Sprintf("accessory %q made for %q", noun, brand), true
				}
				return "", false
			},
		},
		{
			Name: RuleAftermarketBattery,
			Check: func(title string) (string, bool) {
				if !batteryRegexp.MatchString(title) {
					return "", false
				}
				if !capacityRegexp.MatchString(title) && !multiPackRegexp.MatchString(title) {
					return "", false
				}
				brand, ok := forBrand.find(title)
				if !ok {
					return "", false
				}
				if _, genuine := oem.find(title); genuine {
					return "", false
				}
				return fmt.Sprintf("aftermarket battery made for %q", brand), true
			},
		},
		{
			Name: RuleLiquidationLot,
			Check: func(title string) (string, bool) {
				if liquidationRegex.MatchString(title) {
					return "liquidation lot shorthand", true
				}
				return "", false
			},
		},
		{
			Name: RuleBrandWhitelist,
			Check: func(title string) (string, bool) {
				if _, ok := brands.find(title); ok {
					return "", false
				}
				return "no whitelisted brand", true
			},
		},
	}
}

// matcher finds occurrences of any of its terms starting at word boundary.
type matcher struct {
	re *regexp.Regexp
}

func (m matcher) find(s string) (string, bool) {
	if m.re == nil {
		return "", false
	}
	match := m.re.FindStringSubmatch(s)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func termMatcher(terms []string) matcher {
	alternation := alternate(terms)
	if alternation == "" {
		return matcher{}
	}
	return matcher{re: regexp.MustCompile(`(?:^|[^a-z0-9])(` + alternation + `)(?:$|[^a-z0-9])`)}
}

// inflectedMatcher also matches plural and inflected forms, e.g. stickers, bags or repaired.
func inflectedMatcher(terms []string) matcher {
	alternation := alternate(terms)
	if alternation == "" {
		return matcher{}
	}
	return matcher{re: regexp.MustCompile(`(?:^|[^a-z0-9])(` + alternation + `)(?:s|es|ed|ing)?(?:$|[^a-z0-9])`)}
}

func forBrandMatcher(brands []string) matcher {
	alternation := alternate(brands)
	if alternation == "" {
		return matcher{}
	}
	return matcher{re: regexp.MustCompile(`(?:^|[^a-z0-9])for\s+(` + alternation + `)(?:$|[^a-z0-9])`)}
}

// alternate builds regexp alternation of quoted terms, longest first.
func alternate(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(term))
	}
	sort.SliceStable(quoted, func(i, j int) bool {
		return len(quoted[i]) > len(quoted[j])
	})
	return strings.Join(quoted, "|")
}
