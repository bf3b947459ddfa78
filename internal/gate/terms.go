package gate

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Terms holds term lists used by quality gate rules.
type Terms struct {
	Brands         []string `yaml:"brands"`
	JunkTerms      []string `yaml:"junk_terms"`
	AccessoryTerms []string `yaml:"accessory_terms"`
	AccessoryNouns []string `yaml:"accessory_nouns"`
	OEMIndicators  []string `yaml:"oem_indicators"`
}

// DefaultTerms returns built-in term lists.
func DefaultTerms() Terms {
	return Terms{
		Brands: []string{
			"milwaukee", "dewalt", "makita", "ryobi", "bosch", "snap-on", "snap on", "snapon",
			"craftsman", "klein", "fluke", "leatherman", "ridgid", "hilti", "festool", "metabo",
			"hikoki", "hitachi", "kobalt", "porter-cable", "porter cable", "stanley", "knipex",
			"wera", "wiha", "matco", "mac tools", "black+decker", "black and decker", "greenworks",
			"husqvarna", "stihl", "hart", "skil", "rockwell", "worx", "toughbuilt",
		},
		JunkTerms: []string{
			"for parts", "parts only", "as-is", "as is", "not working", "doesn't work", "does not work",
			"broken", "defective", "faulty", "no power", "untested", "shell", "housing", "sticker",
			"skin", "decal", "wrap", "vinyl", "case only", "bag only", "cover only", "faceplate",
			"bezel", "repair", "spares", "scrap", "junk", "damaged",
		},
		AccessoryTerms: []string{
			"case", "bag", "holster", "mount", "adapter", "organizer", "replacement housing",
			"belt clip", "tool holder",
		},
		AccessoryNouns: []string{
			"case", "cover", "adapter", "holder", "mount", "strap", "sticker", "skin", "decal",
			"wrap", "organizer", "tray", "insert",
		},
		OEMIndicators: []string{"oem", "genuine", "original", "authentic", "factory"},
	}
}

// LoadTerms loads term lists from YAML file at path.
// Lists missing in the file are taken from DefaultTerms.
func LoadTerms(path string) (Terms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Terms{}, fmt.Errorf("can't read rules file %s: %w", path, err)
	}

	return ParseTerms(data)
}

// ParseTerms parses YAML data into Terms.
func ParseTerms(data []byte) (Terms, error) {
	var terms Terms
	if err := yaml.Unmarshal(data, &terms); err != nil {
		return Terms{}, fmt.Errorf("can't parse rules YAML: %w", err)
	}

	applyDefaults(&terms)

	return terms, nil
}

// WithBrands returns copy of terms with additional brands appended to the whitelist.
func (t Terms) WithBrands(brands ...string) Terms {
	t.Brands = cleanList(append(append([]string{}, t.Brands...), brands...))
	return t
}

func applyDefaults(t *Terms) {
	defaults := DefaultTerms()

	if len(t.Brands) == 0 {
		t.Brands = defaults.Brands
	}
	if len(t.JunkTerms) == 0 {
		t.JunkTerms = defaults.JunkTerms
	}
	if len(t.AccessoryTerms) == 0 {
		t.AccessoryTerms = defaults.AccessoryTerms
	}
	if len(t.AccessoryNouns) == 0 {
		t.AccessoryNouns = defaults.AccessoryNouns
	}
	if len(t.OEMIndicators) == 0 {
		t.OEMIndicators = defaults.OEMIndicators
	}

	t.Brands = cleanList(t.Brands)
	t.JunkTerms = cleanList(t.JunkTerms)
	t.AccessoryTerms = cleanList(t.AccessoryTerms)
	t.AccessoryNouns = cleanList(t.AccessoryNouns)
	t.OEMIndicators = cleanList(t.OEMIndicators)
}

// cleanList lower-cases, trims and deduplicates terms, dropping empty ones.
func cleanList(terms []string) []string {
	cleaned := lo.FilterMap(terms, func(term string, _ int) (string, bool) {
		term = strings.Join(strings.Fields(strings.ToLower(term)), " ")
		return term, term != ""
	})
	return lo.Uniq(cleaned)
}
