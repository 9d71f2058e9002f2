// File: services/intelligence/interface.go
package intelligence

import (
	"context"
	"encoding/json"
	"time"

	"transitops/models"
	"transitops/utils"

	"go.uber.org/zap"
)

// Provider is the abstract interpreter capability: free text plus context
// hints in, a raw structured guess (JSON text) out. One implementation per
// backend; the rest of the pipeline never sees which one is configured.
type Provider interface {
	Name() string
	Interpret(ctx context.Context, text string, hints models.ContextHints) (string, error)
}

// IntentAdapter turns untrusted interpreter output into a schema-validated
// Intent. Its contract never raises past its own boundary: every failure
// mode (timeout, malformed output, unknown tag) degrades into an explicit
// unknown/ambiguous Intent instead of an error.
type IntentAdapter interface {
	Parse(ctx context.Context, text string, hints models.ContextHints) *models.Intent
}

// DefaultIntentAdapter implements IntentAdapter over a Provider.
type DefaultIntentAdapter struct {
	Provider Provider
	Timeout  time.Duration
}

func NewDefaultIntentAdapter(provider Provider, timeout time.Duration) *DefaultIntentAdapter {
	return &DefaultIntentAdapter{Provider: provider, Timeout: timeout}
}

// Parse calls the provider under a bounded timeout and validates the result.
func (a *DefaultIntentAdapter) Parse(ctx context.Context, text string, hints models.ContextHints) *models.Intent {
	logger := utils.GetLogger()

	callCtx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	raw, err := a.Provider.Interpret(callCtx, text, hints)
	if err != nil {
		logger.Warn("interpreter call failed, falling back to unknown",
			zap.String("provider", a.Provider.Name()), zap.Error(err))
		return models.UnknownIntent("interpreter unavailable")
	}

	intent, err := decodeIntent(raw)
	if err != nil {
		logger.Warn("interpreter output rejected",
			zap.String("provider", a.Provider.Name()), zap.Error(err))
		return models.UnknownIntent("interpreter output could not be parsed")
	}
	return intent
}

// decodeIntent extracts, repairs and schema-checks the provider's JSON.
func decodeIntent(raw string) (*models.Intent, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var intent models.Intent
	if err := json.Unmarshal([]byte(jsonStr), &intent); err != nil {
		return nil, err
	}

	// Normalize out-of-schema values rather than trusting them.
	if !models.KnownAction(intent.Action) {
		return models.UnknownIntent("interpreter proposed an unknown action tag"), nil
	}
	if intent.Confidence < 0 {
		intent.Confidence = 0
	}
	if intent.Confidence > 1 {
		intent.Confidence = 1
	}
	if intent.Parameters == nil {
		intent.Parameters = map[string]string{}
	}
	return &intent, nil
}
