package calculator

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mmynk/eventsplit/internal/models"
)

// maxSuggestionRatio is the largest edit distance, relative to the longer
// name, that still counts as a plausible match.
const maxSuggestionRatio = 0.5

// DanglingName is a name used by expenses that is not on the current roster.
type DanglingName struct {
	Name string

	// ExpenseIDs lists the expenses that reference the name as a participant.
	ExpenseIDs []string

	// AsPayer is true when at least one expense was paid by the name.
	AsPayer bool

	// Suggestion is the closest roster name, empty when none is close enough.
	Suggestion string
}

// Reconcile lists participant and payer names that are not on the roster.
// Payers that never participate are typically guests; they are reported with
// AsPayer set so callers can tell the two apart. Nothing is modified.
func Reconcile(expenses []models.Expense, roster []string) []DanglingName {
	onRoster := make(map[string]bool, len(roster))
	for _, name := range roster {
		onRoster[name] = true
	}

	found := make(map[string]*DanglingName)
	var order []string
	get := func(name string) *DanglingName {
		d, ok := found[name]
		if !ok {
			d = &DanglingName{Name: name, Suggestion: closestName(name, roster)}
			found[name] = d
			order = append(order, name)
		}
		return d
	}

	for _, e := range expenses {
		if e.Payer != "" && !onRoster[e.Payer] {
			get(e.Payer).AsPayer = true
		}
		for _, p := range e.Participants {
			if onRoster[p] {
				continue
			}
			d := get(p)
			if n := len(d.ExpenseIDs); n == 0 || d.ExpenseIDs[n-1] != e.ID {
				d.ExpenseIDs = append(d.ExpenseIDs, e.ID)
			}
		}
	}

	result := make([]DanglingName, 0, len(order))
	for _, name := range order {
		result = append(result, *found[name])
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func closestName(name string, roster []string) string {
	best := ""
	bestRatio := maxSuggestionRatio
	needle := strings.ToLower(name)
	for _, candidate := range roster {
		longest := len([]rune(name))
		if n := len([]rune(candidate)); n > longest {
			longest = n
		}
		if longest == 0 {
			continue
		}
		dist := levenshtein.ComputeDistance(needle, strings.ToLower(candidate))
		ratio := float64(dist) / float64(longest)
		if ratio < bestRatio {
			best = candidate
			bestRatio = ratio
		}
	}
	return best
}
