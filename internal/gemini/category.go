package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gitlab.com/yelinaung/invoicekit/internal/logger"
	"gitlab.com/yelinaung/invoicekit/internal/models"
	"google.golang.org/genai"
)

// MaxDescriptionLength is the maximum description length sent to Gemini.
const MaxDescriptionLength = 200

const suggestCategoryTimeout = 10 * time.Second

// CategorySuggestion is a category proposed for an expense description.
type CategorySuggestion struct {
	Category   models.ExpenseCategory `json:"category"`
	Confidence float64                `json:"confidence"`
	Reasoning  string                 `json:"reasoning"`
}

// SuggestCategory asks Gemini which expense category fits description.
func (c *Client) SuggestCategory(ctx context.Context, description string) (*CategorySuggestion, error) {
	descHash := logger.HashID(description)

	if c.generator == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("description is required")
	}

	prompt := buildCategoryPrompt(SanitizeForPrompt(description, MaxDescriptionLength))

	timeoutCtx, cancel := context.WithTimeout(ctx, suggestCategoryTimeout)
	defer cancel()

	temp := float32(0.3)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(500),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a JSON API. You MUST respond with ONLY valid JSON, no preamble or explanation. Output a single JSON object."},
			},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"category": {
					Type:        genai.TypeString,
					Enum:        categoryValues(),
					Description: "The most appropriate category from the provided list",
				},
				"confidence": {
					Type:        genai.TypeNumber,
					Description: "Confidence score between 0 and 1",
				},
				"reasoning": {
					Type:        genai.TypeString,
					Description: "Brief explanation for the categorization",
				},
			},
			Required: []string{"category", "confidence", "reasoning"},
		},
	}

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}, config)
	if err != nil {
		logger.Log.Error().Err(err).
			Str("description_hash", descHash).
			Msg("SuggestCategory: Gemini API call failed")
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	jsonText := extractJSON(text)
	if jsonText == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var suggestion CategorySuggestion
	if err := json.Unmarshal([]byte(jsonText), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	category := models.ExpenseCategory(strings.ToLower(strings.TrimSpace(string(suggestion.Category))))
	if !category.Valid() {
		logger.Log.Warn().
			Str("description_hash", descHash).
			Str("suggested_category", string(suggestion.Category)).
			Msg("SuggestCategory: suggested category not recognised")
		return nil, fmt.Errorf("suggested category %q is not a known category", suggestion.Category)
	}
	suggestion.Category = category

	if suggestion.Confidence < 0.0 || suggestion.Confidence > 1.0 {
		return nil, fmt.Errorf("confidence out of range: %f", suggestion.Confidence)
	}

	suggestion.Reasoning = sanitizeReasoning(suggestion.Reasoning)

	logger.Log.Debug().
		Str("description_hash", descHash).
		Str("category", string(suggestion.Category)).
		Float64("confidence", suggestion.Confidence).
		Msg("SuggestCategory: matched category")

	return &suggestion, nil
}

func buildCategoryPrompt(description string) string {
	lines := make([]string, 0, len(models.ExpenseCategories))
	for _, ec := range models.ExpenseCategories {
		lines = append(lines, fmt.Sprintf("%s (%s)", ec.Value, ec.Label))
	}

	return fmt.Sprintf(`Categorize this business expense: "%s"

Available categories:
- %s

Rules:
- Choose the MOST appropriate category from the list and answer with its identifier
- "meals" for restaurant, catering and client entertainment
- "travel" for flights, hotels, taxi, train and fuel on trips
- Higher confidence (0.8-1.0) for obvious categories, lower (0.5-0.7) for ambiguous ones

Return JSON only:
{"category": "category identifier", "confidence": 0.0-1.0, "reasoning": "brief explanation"}`,
		description, strings.Join(lines, "\n- "))
}

// SanitizeForPrompt strips characters that could break the prompt structure
// and truncates to maxLength bytes.
func SanitizeForPrompt(input string, maxLength int) string {
	input = strings.ReplaceAll(input, `"`, `'`)
	input = strings.ReplaceAll(input, "`", "'")
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.Join(strings.Fields(input), " ")

	if len(input) > maxLength {
		input = strings.TrimSpace(input[:maxLength])
	}

	return input
}

func sanitizeReasoning(reasoning string) string {
	reasoning = strings.Join(strings.Fields(reasoning), " ")

	const maxReasoningLength = 500
	if len(reasoning) > maxReasoningLength {
		reasoning = strings.TrimSpace(reasoning[:maxReasoningLength])
	}

	return reasoning
}
