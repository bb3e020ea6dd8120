package pattern

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/Veraticus/underbudget/internal/model"
)

// maxSuggestDistance is the largest edit distance still offered as a suggestion.
const maxSuggestDistance = 3

// Suggest returns the candidate closest to input, if any is within a few edits.
func Suggest(input string, candidates []string) (string, bool) {
	normalized := normalize(input)
	if normalized == "" {
		return "", false
	}

	best := ""
	bestDist := maxSuggestDistance + 1
	for _, candidate := range candidates {
		dist := levenshtein.ComputeDistance(normalized, candidate)
		if dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	return best, best != ""
}

// SuggestField returns the recognized field closest to a misspelled one.
func SuggestField(input string) (model.Field, bool) {
	names := make([]string, 0, len(model.Fields()))
	for _, f := range model.Fields() {
		names = append(names, string(f))
	}
	s, ok := Suggest(input, names)
	return model.Field(s), ok
}

// SuggestOperator returns the recognized operator closest to a misspelled one.
func SuggestOperator(input string) (model.Operator, bool) {
	names := make([]string, 0, len(model.Operators()))
	for _, o := range model.Operators() {
		names = append(names, string(o))
	}
	s, ok := Suggest(input, names)
	return model.Operator(s), ok
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "-", " ", "-").Replace(s)
}
