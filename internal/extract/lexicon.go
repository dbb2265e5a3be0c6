package extract

import (
	"strings"
	"unicode"

	"github.com/talgya/ljpw-field/internal/coord"
)

// The four built-in lexicons. Fixed at build time, mutually disjoint —
// a word votes for exactly one axis. Profiles may add words but never
// remove these.
var builtinLexicons = map[coord.Axis][]string{
	coord.AxisLove: {
		"love", "care", "caring", "compassion", "kindness", "kind",
		"empathy", "connection", "together", "harmony", "support",
		"trust", "gratitude", "forgiveness", "warmth", "friendship",
		"devotion", "unity", "affection", "gentle", "nurture",
		"belonging", "mercy", "tenderness", "embrace", "heal",
		"comfort", "cherish",
	},
	coord.AxisJustice: {
		"justice", "fair", "fairness", "equality", "equal", "rights",
		"law", "lawful", "truth", "honest", "honesty", "integrity",
		"accountability", "accountable", "ethics", "ethical", "duty",
		"impartial", "equity", "just", "legitimate", "balance",
		"principle", "virtue", "moral", "oath", "verdict",
		"restitution",
	},
	coord.AxisPower: {
		"power", "strength", "strong", "energy", "force", "control",
		"authority", "capable", "capacity", "drive", "dominance",
		"influence", "action", "will", "command", "vigor", "momentum",
		"achieve", "achievement", "execute", "build", "create",
		"effort", "determination", "courage", "bold", "conquer",
		"ambition",
	},
	coord.AxisWisdom: {
		"wisdom", "wise", "knowledge", "know", "understanding",
		"understand", "insight", "learn", "learning", "reason",
		"judgment", "experience", "reflection", "prudence", "clarity",
		"discernment", "awareness", "thought", "thoughtful",
		"foresight", "study", "contemplate", "perceive", "discover",
		"curiosity", "intellect", "mindful", "teach",
	},
}

// builtinLookup maps each lexicon word to its axis.
var builtinLookup = buildLookup(nil)

func buildLookup(extra map[string][]string) map[string]coord.Axis {
	lookup := make(map[string]coord.Axis, 128)
	for _, a := range coord.Axes {
		for _, w := range builtinLexicons[a] {
			lookup[w] = a
		}
	}
	for name, words := range extra {
		a, err := coord.ParseAxis(name)
		if err != nil {
			continue // rejected at profile validation; skip defensively
		}
		for _, w := range words {
			lookup[strings.ToLower(w)] = a
		}
	}
	return lookup
}

// tokenize splits text into lowercase letter-run tokens.
// Every token counts toward the denominator, matching or not.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
