// File: services/intelligence/local.go
package intelligence

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"transitops/models"
)

// LocalProvider is a keyword-matching interpreter used in development and as
// a degraded-mode fallback when no Gemini key is configured. It produces the
// same JSON shape as the remote providers so the adapter path is identical.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider { return &LocalProvider{} }

func (p *LocalProvider) Name() string { return "local" }

var (
	timeTokenRe = regexp.MustCompile(`\b([01]?\d|2[0-3]):[0-5]\d\b`)
	idTokenRe   = regexp.MustCompile(`\b(?:trip|route|path|stop|#)\s*(\d+)\b`)
)

func (p *LocalProvider) Interpret(ctx context.Context, text string, hints models.ContextHints) (string, error) {
	lower := strings.ToLower(text)

	var action models.Action
	confidence := 0.6
	switch {
	case strings.Contains(lower, "cancel") && strings.Contains(lower, "trip"):
		action = models.ActionCancelTrip
	case strings.Contains(lower, "remove") && strings.Contains(lower, "vehicle"):
		action = models.ActionRemoveVehicle
	case strings.Contains(lower, "remove") && strings.Contains(lower, "driver"):
		action = models.ActionRemoveDriver
	case strings.Contains(lower, "assign") && strings.Contains(lower, "vehicle"):
		action = models.ActionAssignVehicle
	case strings.Contains(lower, "assign") && strings.Contains(lower, "driver"):
		action = models.ActionAssignDriver
	case strings.Contains(lower, "reschedule") || (strings.Contains(lower, "change") && strings.Contains(lower, "time")):
		action = models.ActionChangeTripTime
	case strings.Contains(lower, "rename") && strings.Contains(lower, "route"):
		action = models.ActionRenameRoute
	case strings.Contains(lower, "rename"):
		action = models.ActionRenameTrip
	case strings.Contains(lower, "create") && strings.Contains(lower, "trip"):
		action = models.ActionCreateTrip
	case strings.Contains(lower, "create") && strings.Contains(lower, "route"):
		action = models.ActionCreateRoute
	case strings.Contains(lower, "create") && strings.Contains(lower, "path"):
		action = models.ActionCreatePath
	case strings.Contains(lower, "create") || strings.Contains(lower, "add"):
		action = models.ActionCreateStop
	case strings.Contains(lower, "booking"):
		action = models.ActionShowBookings
	case strings.Contains(lower, "list") && strings.Contains(lower, "route"):
		action = models.ActionListRoutes
	case strings.Contains(lower, "list") && strings.Contains(lower, "vehicle"):
		action = models.ActionListVehicles
	case strings.Contains(lower, "list") && strings.Contains(lower, "driver"):
		action = models.ActionListDrivers
	case strings.Contains(lower, "list") || strings.Contains(lower, "show all"):
		action = models.ActionListTrips
	case strings.Contains(lower, "show") || strings.Contains(lower, "detail"):
		action = models.ActionShowTrip
	default:
		action = models.ActionUnknown
		confidence = 0
	}

	intent := models.Intent{
		Action:     action,
		Confidence: confidence,
		Ambiguous:  action == models.ActionUnknown,
		Parameters: map[string]string{},
		Rationale:  "keyword match",
	}

	if m := timeTokenRe.FindString(text); m != "" {
		if action == models.ActionChangeTripTime {
			intent.Parameters["new_time"] = m
		} else {
			intent.TargetTime = m
		}
	}
	if m := idTokenRe.FindStringSubmatch(lower); m != nil {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			intent.TargetID = id
		}
	}
	if intent.TargetID == 0 && intent.TargetTime == "" {
		intent.TargetLabel = guessLabel(text)
	}

	b, err := json.Marshal(intent)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// guessLabel strips the leading verb phrase and returns the remainder as the
// likely target label.
func guessLabel(text string) string {
	words := strings.Fields(text)
	skip := map[string]bool{
		"cancel": true, "remove": true, "assign": true, "rename": true,
		"show": true, "list": true, "the": true, "trip": true, "route": true,
		"please": true, "now": true, "change": true, "reschedule": true,
	}
	var kept []string
	for _, w := range words {
		if skip[strings.ToLower(strings.Trim(w, ".,!?"))] {
			continue
		}
		kept = append(kept, strings.Trim(w, ".,!?"))
	}
	return strings.Join(kept, " ")
}
