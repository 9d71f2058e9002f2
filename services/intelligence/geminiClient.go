// File: services/intelligence/gemini_client.go
package intelligence

import (
	"context"
	"fmt"
	"strings"

	"transitops/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider interprets commands with Gemini.
type GeminiProvider struct {
	model *genai.GenerativeModel
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		panic(fmt.Sprintf("failed to create Gemini client: %v", err))
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiProvider{model: model}
}

func (g *GeminiProvider) Name() string { return "gemini" }

func (g *GeminiProvider) Interpret(ctx context.Context, text string, hints models.ContextHints) (string, error) {
	prompt := buildPrompt(text, hints)
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

func buildPrompt(text string, hints models.ContextHints) string {
	var sb strings.Builder
	sb.WriteString("You translate a transit dispatcher's instruction into one JSON object.\n")
	sb.WriteString("Respond with JSON only, no markdown, matching this schema:\n")
	sb.WriteString(`{"action": "<tag>", "target_label": "<string|omit>", "target_time": "<HH:MM|omit>", "target_id": <number|omit>, "parameters": {"<key>": "<value>"}, "confidence": <0..1>, "ambiguous": <bool>, "clarification_options": ["<string>"], "rationale": "<short reason>"}` + "\n")
	sb.WriteString("Valid action tags: show_trip, list_trips, list_routes, list_vehicles, list_drivers, show_bookings, rename_route, rename_trip, cancel_trip, change_trip_time, assign_vehicle, remove_vehicle, assign_driver, remove_driver, create_trip, create_route, create_path, create_stop, unknown.\n")
	sb.WriteString("Use \"unknown\" when the instruction does not fit any tag. Set ambiguous=true and fill clarification_options when multiple readings are plausible.\n")
	sb.WriteString("Known parameter keys: new_time (HH:MM), new_name, vehicle_id, driver_id, name, date (YYYY-MM-DD), time (HH:MM).\n")
	if hints.CurrentPage != "" {
		fmt.Fprintf(&sb, "The dispatcher is currently viewing the %q page.\n", hints.CurrentPage)
	}
	if hints.SelectedEntityID != 0 {
		fmt.Fprintf(&sb, "A %s with id %d is pre-selected in the UI.\n", hints.SelectedKind, hints.SelectedEntityID)
	}
	fmt.Fprintf(&sb, "Instruction: %q\n", text)
	return sb.String()
}
