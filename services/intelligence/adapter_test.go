package intelligence

import (
	"context"
	"errors"
	"testing"
	"time"

	"transitops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns a canned response or error.
type scriptedProvider struct {
	response string
	err      error
	delay    time.Duration
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Interpret(ctx context.Context, text string, hints models.ContextHints) (string, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return p.response, p.err
}

func parse(t *testing.T, response string) *models.Intent {
	t.Helper()
	adapter := NewDefaultIntentAdapter(&scriptedProvider{response: response}, time.Second)
	return adapter.Parse(context.Background(), "whatever", models.ContextHints{})
}

func TestParseWellFormedResponse(t *testing.T) {
	intent := parse(t, `{"action":"cancel_trip","target_label":"Morning Express","confidence":0.91}`)
	assert.Equal(t, models.ActionCancelTrip, intent.Action)
	assert.Equal(t, "Morning Express", intent.TargetLabel)
	assert.InDelta(t, 0.91, intent.Confidence, 0.0001)
	assert.NotNil(t, intent.Parameters)
}

func TestParseMarkdownWrappedResponse(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"action\":\"list_routes\",\"confidence\":0.8}\n```"
	intent := parse(t, raw)
	assert.Equal(t, models.ActionListRoutes, intent.Action)
}

func TestParseTruncatedResponseRepaired(t *testing.T) {
	// Cut mid-string: the truncated field survives, the object closes.
	raw := `{"action":"cancel_trip","confidence":0.8,"rationale":"operator asked to canc`
	intent := parse(t, raw)
	assert.Equal(t, models.ActionCancelTrip, intent.Action)
	assert.InDelta(t, 0.8, intent.Confidence, 0.0001)
}

func TestParseTruncatedAfterColonRepaired(t *testing.T) {
	raw := `{"action":"list_trips","confidence":0.7,"target_label":`
	intent := parse(t, raw)
	assert.Equal(t, models.ActionListTrips, intent.Action)
	assert.Empty(t, intent.TargetLabel)
}

func TestParseUnknownActionTagNormalized(t *testing.T) {
	intent := parse(t, `{"action":"launch_rocket","confidence":0.99}`)
	assert.Equal(t, models.ActionUnknown, intent.Action)
	assert.Equal(t, 0.0, intent.Confidence)
}

func TestParseConfidenceClamped(t *testing.T) {
	intent := parse(t, `{"action":"list_trips","confidence":3.5}`)
	assert.Equal(t, 1.0, intent.Confidence)

	intent = parse(t, `{"action":"list_trips","confidence":-2}`)
	assert.Equal(t, 0.0, intent.Confidence)
}

func TestParseGarbageFallsBackToUnknown(t *testing.T) {
	intent := parse(t, "I am sorry, I cannot help with that.")
	assert.Equal(t, models.ActionUnknown, intent.Action)
	assert.True(t, intent.Ambiguous)
}

func TestParseProviderErrorFallsBackToUnknown(t *testing.T) {
	adapter := NewDefaultIntentAdapter(&scriptedProvider{err: errors.New("backend down")}, time.Second)
	intent := adapter.Parse(context.Background(), "cancel the trip", models.ContextHints{})
	assert.Equal(t, models.ActionUnknown, intent.Action)
}

func TestParseTimeoutFallsBackToUnknown(t *testing.T) {
	adapter := NewDefaultIntentAdapter(&scriptedProvider{
		response: `{"action":"list_trips","confidence":0.9}`,
		delay:    200 * time.Millisecond,
	}, 10*time.Millisecond)
	intent := adapter.Parse(context.Background(), "list trips", models.ContextHints{})
	assert.Equal(t, models.ActionUnknown, intent.Action)
}

func TestExtractJSONBalanced(t *testing.T) {
	out, err := extractJSON(`prefix {"a":{"b":[1,2]}} suffix`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"b":[1,2]}}`, out)
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := extractJSON("no braces here")
	assert.Error(t, err)
}

func TestExtractJSONTruncatedArray(t *testing.T) {
	out, err := extractJSON(`{"clarification_options":["a","b"`)
	require.NoError(t, err)
	assert.Equal(t, `{"clarification_options":["a","b"]}`, out)
}

func TestLocalProviderRecognizesCoreCommands(t *testing.T) {
	p := NewLocalProvider()
	adapter := NewDefaultIntentAdapter(p, time.Second)

	intent := adapter.Parse(context.Background(), "cancel the 9:30 trip", models.ContextHints{})
	assert.Equal(t, models.ActionCancelTrip, intent.Action)
	assert.Equal(t, "9:30", intent.TargetTime)

	intent = adapter.Parse(context.Background(), "list routes", models.ContextHints{})
	assert.Equal(t, models.ActionListRoutes, intent.Action)
}
