// File: services/command/matcher.go
package command

import (
	"regexp"
	"sort"
	"strings"
)

// Matcher scoring weights and acceptance thresholds. Label similarity
// dominates; time-of-day and parent-name keyword overlap are bonuses.
const (
	labelWeight   = 0.70
	timeWeight    = 0.15
	keywordWeight = 0.15

	acceptThreshold = 0.65
	acceptMargin    = 0.10
	maxCandidates   = 5

	minNgramTokens = 1
	maxNgramTokens = 5
)

// Match outcome kinds.
const (
	MatchNone     = "none"
	MatchSingle   = "single"
	MatchMultiple = "multiple"
)

// MatchEntity is the snapshot of a domain entity the matcher scores against.
// Everything needed for scoring is fetched before the call; scoring itself
// is pure and performs no storage access.
type MatchEntity struct {
	Kind       string
	ID         int64
	Label      string
	TimeOfDay  string // HH:MM, empty when the entity has no schedule
	ParentName string // parent route/path name, empty at the top level
}

// MatchCandidate is one scored entity.
type MatchCandidate struct {
	Entity MatchEntity
	Score  float64
}

// MatchResult is the matcher's verdict over a candidate label.
type MatchResult struct {
	Type       string
	Best       MatchCandidate
	Candidates []MatchCandidate
}

var matchTimeRe = regexp.MustCompile(`\b([01]?\d|2[0-3]):[0-5]\d\b`)

// Match scores free text against the known entities and applies the
// threshold/margin acceptance rule: a single match needs a clear winner.
func Match(query string, entities []MatchEntity) MatchResult {
	query = strings.TrimSpace(query)
	if query == "" || len(entities) == 0 {
		return MatchResult{Type: MatchNone}
	}

	scored := make([]MatchCandidate, 0, len(entities))
	for _, e := range entities {
		if s := Score(query, e); s > 0 {
			scored = append(scored, MatchCandidate{Entity: e, Score: s})
		}
	}
	if len(scored) == 0 {
		return MatchResult{Type: MatchNone}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > maxCandidates {
		scored = scored[:maxCandidates]
	}

	best := scored[0]
	if best.Score >= acceptThreshold {
		if len(scored) == 1 || best.Score-scored[1].Score >= acceptMargin {
			return MatchResult{Type: MatchSingle, Best: best, Candidates: scored}
		}
	}
	if best.Score >= acceptThreshold/2 {
		return MatchResult{Type: MatchMultiple, Best: best, Candidates: scored}
	}
	return MatchResult{Type: MatchNone}
}

// MatchFromText runs Match over every sliding n-gram of OCR-extracted text
// and keeps the best verdict. OCR output is noisy free text, so the entity
// label can be buried anywhere inside it.
func MatchFromText(text string, entities []MatchEntity) MatchResult {
	best := MatchResult{Type: MatchNone}
	for _, gram := range NGrams(text, minNgramTokens, maxNgramTokens) {
		res := Match(gram, entities)
		if res.Type == MatchNone {
			continue
		}
		if best.Type == MatchNone || res.Best.Score > best.Best.Score {
			best = res
		}
	}
	return best
}

// NGrams returns all token windows of length min..max over the text.
func NGrams(text string, min, max int) []string {
	tokens := strings.Fields(text)
	var grams []string
	for n := min; n <= max; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// Score computes the weighted multi-factor score in [0,1]. An exact
// canonical-label match scores a full 1.0 regardless of bonuses.
func Score(query string, e MatchEntity) float64 {
	qn := normalizeLabel(query)
	ln := normalizeLabel(e.Label)
	if qn == "" || ln == "" {
		return 0
	}
	if qn == ln {
		return 1.0
	}

	score := labelWeight * labelSimilarity(qn, ln)

	if e.TimeOfDay != "" {
		for _, tok := range matchTimeRe.FindAllString(query, -1) {
			if normalizeTime(tok) == normalizeTime(e.TimeOfDay) {
				score += timeWeight
				break
			}
		}
	}

	if e.ParentName != "" {
		score += keywordWeight * keywordOverlap(qn, normalizeLabel(e.ParentName))
	}

	if score > 1 {
		score = 1
	}
	return score
}

func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func normalizeTime(s string) string {
	if len(s) == 4 { // 9:30 -> 09:30
		return "0" + s
	}
	return s
}

// labelSimilarity blends containment and edit distance so both
// "morning express" ~ "Morning Express 07:30" and small typos score well.
func labelSimilarity(a, b string) float64 {
	if strings.Contains(b, a) || strings.Contains(a, b) {
		shorter, longer := len(a), len(b)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		contain := float64(shorter) / float64(longer)
		if contain < 0.5 {
			contain = 0.5
		}
		return contain
	}

	dist := levenshtein(a, b)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	sim := 1.0 - float64(dist)/float64(longest)
	if sim < 0 {
		sim = 0
	}
	return sim
}

// keywordOverlap is the fraction of parent-name tokens present in the query.
func keywordOverlap(query, parent string) float64 {
	parentTokens := strings.Fields(parent)
	if len(parentTokens) == 0 {
		return 0
	}
	queryTokens := map[string]bool{}
	for _, t := range strings.Fields(query) {
		queryTokens[t] = true
	}
	hits := 0
	for _, t := range parentTokens {
		if queryTokens[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(parentTokens))
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
