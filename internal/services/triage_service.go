package services

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/rentline/rental-service/internal/models"
)

// triageResult mirrors the expected JSON from the model.
type triageResult struct {
	Priority string `json:"priority"`
	Reason   string `json:"reason,omitempty"`
}

// TriageService suggests a priority for incoming maintenance requests.
// If client is nil, triage is disabled and the default priority wins.
type TriageService struct {
	client *openai.Client
}

// NewTriageService creates the service. Pass an empty apiKey to disable calls.
func NewTriageService(apiKey string) *TriageService {
	if apiKey == "" {
		return &TriageService{client: nil}
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &TriageService{client: &c}
}

// SuggestPriority classifies a request into low/medium/high/emergency.
// Callers fall back to medium on any error.
func (s *TriageService) SuggestPriority(
	ctx context.Context,
	title string,
	description string,
) (models.MaintenancePriority, error) {

	// Feature disabled; default priority.
	if s.client == nil {
		return models.PriorityMedium, nil
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"priority": map[string]any{
				"type": "string",
				"enum": []string{"low", "medium", "high", "emergency"},
			},
			"reason": map[string]string{"type": "string"},
		},
		"required":             []string{"priority", "reason"},
		"additionalProperties": false,
	}

	fn := shared.FunctionDefinitionParam{
		Name:        "triage_maintenance_request",
		Description: openai.String("Classify the urgency of a residential maintenance request."),
		Strict:      openai.Bool(true),
		Parameters:  schema,
	}

	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(fmt.Sprintf(`Classify this maintenance request.

Return JSON by calling triage_maintenance_request(strict).
Rules:
1. emergency = immediate danger or major damage in progress (gas leak, flooding, live wires, no power to the whole unit).
2. high = serious loss of function needing attention within days (no water, broken external door lock, fridge dead).
3. medium = inconvenient but liveable (single faulty socket, dripping tap, broken wardrobe).
4. low = cosmetic (peeling paint, squeaky hinge).

Title: %q
Description: %q`, title, description)),
				},
			},
		}},
		Tools: []openai.ChatCompletionToolParam{{
			Function: fn,
		}},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{
					Name: "triage_maintenance_request",
				},
			},
		},
	}

	resp, err := s.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return "", fmt.Errorf("openai: no function call returned")
	}

	var out triageResult
	if err := json.Unmarshal(
		[]byte(resp.Choices[0].Message.ToolCalls[0].Function.Arguments),
		&out,
	); err != nil {
		return "", fmt.Errorf("unmarshal triage result: %w", err)
	}

	priority := models.ParseMaintenancePriority(out.Priority)
	if priority == "" {
		return "", fmt.Errorf("openai returned unknown priority %q", out.Priority)
	}
	return priority, nil
}
