package normalizer_test

import (
	"testing"

	"github.com/MichalMitros/marketguard/internal/gate"
	"github.com/MichalMitros/marketguard/internal/normalizer"
	"github.com/stretchr/testify/assert"
)

func newNormalizer() *normalizer.Normalizer {
	return normalizer.New(gate.DefaultTerms().Brands, normalizer.DefaultAliases)
}

func TestUnitNormalize(t *testing.T) {
	n := newNormalizer()

	tests := map[string]struct {
		title string
		want  string
	}{
		"brand with hyphenated part number": {
			title: "Milwaukee M18 Fuel Drill 2801-20 Tool Only",
			want:  "milwaukee 2801 20",
		},
		"brand with letter prefixed code": {
			title: "DeWalt DCF887B 20V MAX XR Impact Driver - Bare Tool",
			want:  "dewalt dcf887b",
		},
		"alias canonicalized": {
			title: "Snap On 3/8 Ratchet FHNF100",
			want:  "snap-on fhnf100",
		},
		"alias without space canonicalized": {
			title: "SNAPON ratchet",
			want:  "snap-on",
		},
		"capacity stripped": {
			title: "Makita BL1850B 5.0Ah Battery TESTED works",
			want:  "makita bl1850b",
		},
		"trailing with clause stripped": {
			title: "Ryobi PCL235 Drill with 2 batteries and charger 1234",
			want:  "ryobi pcl235",
		},
		"trailing w/ clause stripped": {
			title: "Bosch GSR12V-300 drill w/ case 9999",
			want:  "bosch gsr12v 300",
		},
		"bare number model": {
			title: "Fluke 117 Multimeter",
			want:  "fluke 117",
		},
		"at most three model tokens": {
			title: "Milwaukee 2801-20 2853-20 2767-20 2962-20 combo",
			want:  "milwaukee 2801 20 2853 20 2767 20",
		},
		"duplicate model tokens removed": {
			title: "Makita XFD131 drill XFD131",
			want:  "makita xfd131",
		},
		"model tokens keep title order": {
			title: "Makita 1234 XFD131 567",
			want:  "makita 1234 xfd131 567",
		},
		"joined numbers form part number": {
			title: "Milwaukee 123 drill 456-78",
			want:  "milwaukee 123 456",
		},
		"brand only": {
			title: "Klein Tools Lineman Pliers",
			want:  "klein",
		},
		"model only": {
			title: "Impact driver DCF887 no battery",
			want:  "dcf887",
		},
		"first words fallback": {
			title: "Very nice cordless drill set in great shape",
			want:  "very nice cordless drill set",
		},
		"everything stripped falls back to title": {
			title: "With   Case",
			want:  "with case",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.title), "should return correct query")
		})
	}
}

func TestUnitNormalizeNeverEmpty(t *testing.T) {
	n := newNormalizer()

	for _, title := range []string{"a", "-", "tool only", "w/", "5.0Ah", "  x  "} {
		assert.NotEmpty(t, n.Normalize(title), "should return non-empty query for %q", title)
	}
	assert.Empty(t, n.Normalize("   "), "should return empty query for blank title")
}

func TestUnitNormalizeIdempotent(t *testing.T) {
	n := newNormalizer()

	for _, title := range []string{
		"Milwaukee M18 Fuel Drill 2801-20 Tool Only",
		"Snap On 3/8 Ratchet FHNF100",
		"Black & Decker LDX120C drill",
		"Porter Cable PCC640 impact",
		"Klein Tools Lineman Pliers",
		"Very nice cordless drill set in great shape",
		"Makita 1234 XFD131 567",
		"Milwaukee 123 drill 456-78",
		"DeWalt 20V 5.0Ah 2-pack 3456 DCB205 789",
	} {
		once := n.Normalize(title)
		assert.Equal(t, once, n.Normalize(once), "should be idempotent for %q", title)
	}
}

func TestUnitKey(t *testing.T) {
	assert.Equal(t, "milwaukee 2801 20", normalizer.Key("  Milwaukee  2801\t20 "), "should lower-case and collapse whitespace")
	assert.Equal(t, normalizer.Key("DeWalt DCF887"), normalizer.Key("dewalt   dcf887"), "should share key for same query")
}
