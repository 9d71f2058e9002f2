package models

// Input origins.
const (
	OriginTyped = "typed"
	OriginImage = "image"
)

// ContextHints carries UI state the client sends along with a command.
// The resolver treats a pre-selected entity as its highest-priority strategy;
// it is still subject to an existence check like every other candidate.
type ContextHints struct {
	CurrentPage      string `json:"currentPage,omitempty"`
	SelectedKind     string `json:"selectedKind,omitempty"`
	SelectedEntityID int64  `json:"selectedEntityId,omitempty"`
}

// Command is the unit of work flowing through the pipeline. Each stage fills
// in its own fields; the struct is discarded once a terminal response is
// produced, or serialized into a ConfirmationSession for the follow-up turn.
type Command struct {
	OperatorID string       `json:"operatorId"`
	RawText    string       `json:"rawText"`
	Origin     string       `json:"origin"`
	OCRConf    float64      `json:"ocrConfidence,omitempty"`
	Hints      ContextHints `json:"hints,omitempty"`

	// Filled by the intent adapter.
	Intent *Intent `json:"intent,omitempty"`

	// Filled by the entity resolver.
	Target *ResolvedTarget `json:"target,omitempty"`

	// Filled by the consequence analyzer.
	Consequence *Consequence `json:"consequence,omitempty"`
}

// ClarificationOption is one concrete candidate offered back to the operator.
type ClarificationOption struct {
	Kind       string  `json:"kind"`
	ID         int64   `json:"id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// CommandResult is the terminal outcome of an executed command.
type CommandResult struct {
	OK      bool           `json:"ok"`
	Message string         `json:"message"`
	Detail  map[string]any `json:"detail,omitempty"`
}

// CommandResponse is what the submit endpoint returns: exactly one of the
// branches is populated.
type CommandResponse struct {
	// Terminal result (safe action executed, rejection, or plain reply).
	Result *CommandResult `json:"result,omitempty"`

	// Clarification request with concrete options.
	NeedsClarification bool                  `json:"needsClarification,omitempty"`
	Clarification      string                `json:"clarification,omitempty"`
	Options            []ClarificationOption `json:"options,omitempty"`

	// Awaiting-confirmation branch.
	AwaitingConfirmation bool         `json:"awaitingConfirmation,omitempty"`
	SessionID            string       `json:"sessionId,omitempty"`
	Warning              string       `json:"warning,omitempty"`
	Consequence          *Consequence `json:"consequence,omitempty"`

	// Wizard turn (question for the next slot, or summary).
	WizardPrompt  string   `json:"wizardPrompt,omitempty"`
	WizardOptions []string `json:"wizardOptions,omitempty"`
	WizardActive  bool     `json:"wizardActive,omitempty"`
}
