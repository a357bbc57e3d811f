package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/invoicekit/internal/logger"
	"gitlab.com/yelinaung/invoicekit/internal/models"
	"google.golang.org/genai"
)

// ExtractReceiptTimeout bounds a single receipt OCR call.
const ExtractReceiptTimeout = 30 * time.Second

// ErrParseTimeout indicates the Gemini API call timed out.
var ErrParseTimeout = errors.New("receipt parsing timed out")

// ErrNoData indicates no usable data could be extracted from the receipt.
var ErrNoData = errors.New("no usable data extracted from receipt")

// ReceiptData is what Gemini read off a receipt image.
type ReceiptData struct {
	Merchant   string
	Date       time.Time
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	Category   models.ExpenseCategory
	Confidence float64
}

// HasTotal returns true if the total was extracted.
func (r *ReceiptData) HasTotal() bool {
	return !r.Total.IsZero()
}

// HasMerchant returns true if the merchant was extracted.
func (r *ReceiptData) HasMerchant() bool {
	return r.Merchant != ""
}

// IsPartial returns true if only one of total and merchant was extracted.
func (r *ReceiptData) IsPartial() bool {
	return r.HasTotal() != r.HasMerchant()
}

// IsEmpty returns true if no usable data was extracted.
func (r *ReceiptData) IsEmpty() bool {
	return !r.HasTotal() && !r.HasMerchant()
}

// ExpenseInput maps the receipt onto an expense draft. A missing date falls back to
// today in now's location and an unknown category to other.
func (r *ReceiptData) ExpenseInput(now time.Time) models.Expense {
	date := now
	if !r.Date.IsZero() {
		date = r.Date
	}
	category := r.Category
	if !category.Valid() {
		category = models.CategoryOther
	}
	return models.Expense{
		Date:     date.Format(models.DateLayout),
		Merchant: r.Merchant,
		Category: category,
		Subtotal: r.Subtotal,
		Tax:      r.Tax,
		Total:    r.Total,
	}
}

type receiptResponse struct {
	Merchant   string  `json:"merchant"`
	Date       string  `json:"date"`
	Subtotal   string  `json:"subtotal"`
	Tax        string  `json:"tax"`
	Total      string  `json:"total"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// ExtractReceipt reads expense data from a receipt image.
func (c *Client) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*ReceiptData, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("image data is required")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, ExtractReceiptTimeout)
	defer cancel()

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, []*genai.Content{
		{
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
				{Text: buildReceiptPrompt()},
			},
		},
	}, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrParseTimeout
		}
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	data, err := parseReceiptResponse(text)
	if err != nil {
		return nil, err
	}
	if data.IsEmpty() {
		return nil, ErrNoData
	}

	logger.Log.Debug().
		Str("merchant", logger.SanitizeText(data.Merchant)).
		Str("category", string(data.Category)).
		Float64("confidence", data.Confidence).
		Msg("ExtractReceipt: parsed receipt")

	return data, nil
}

func categoryValues() []string {
	values := make([]string, 0, len(models.ExpenseCategories))
	for _, ec := range models.ExpenseCategories {
		values = append(values, string(ec.Value))
	}
	return values
}

func buildReceiptPrompt() string {
	return fmt.Sprintf(`Analyze this receipt image and extract the following information.
Return ONLY a JSON object with no additional text or markdown formatting.

Required fields:
- merchant: The merchant/store name
- date: The date of purchase in YYYY-MM-DD format
- subtotal: The amount before tax (numeric string, e.g., "50.00")
- tax: The tax amount (numeric string, e.g., "4.60")
- total: The total amount paid (numeric string, e.g., "54.60")
- category: One of these categories that best matches: %s
- confidence: Your confidence in the extraction accuracy (0.0 to 1.0)

If a field cannot be determined, use an empty string for text fields, "0" for amounts, or 0.0 for confidence.

Example response:
{"merchant": "Office Depot", "date": "2024-01-15", "subtotal": "50.00", "tax": "4.60", "total": "54.60", "category": "office_supplies", "confidence": 0.95}`,
		strings.Join(categoryValues(), ", "))
}

func parseReceiptResponse(response string) (*ReceiptData, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = extractJSON(response)
	if response == "" {
		return nil, fmt.Errorf("no JSON found in receipt response")
	}

	var rr receiptResponse
	if err := json.Unmarshal([]byte(response), &rr); err != nil {
		return nil, fmt.Errorf("failed to parse receipt response: %w", err)
	}

	data := &ReceiptData{
		Merchant:   strings.TrimSpace(rr.Merchant),
		Category:   matchCategory(rr.Category),
		Confidence: rr.Confidence,
	}

	amounts := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"subtotal", rr.Subtotal, &data.Subtotal},
		{"tax", rr.Tax, &data.Tax},
		{"total", rr.Total, &data.Total},
	}
	for _, a := range amounts {
		value := strings.TrimSpace(a.value)
		if value == "" {
			continue
		}
		amount, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s %q: %w", a.name, a.value, err)
		}
		*a.dst = amount
	}

	if data.Total.IsZero() && !data.Subtotal.IsZero() {
		data.Total = data.Subtotal.Add(data.Tax)
	}

	if rr.Date != "" {
		if date, err := time.Parse(models.DateLayout, strings.TrimSpace(rr.Date)); err == nil {
			data.Date = date
		}
	}

	return data, nil
}

// matchCategory maps Gemini's category onto the closed set, falling back to
// other.
func matchCategory(s string) models.ExpenseCategory {
	if c, ok := models.MatchExpenseCategory(s); ok {
		return c
	}
	return models.CategoryOther
}

// extractJSON extracts a JSON object from text that may contain preamble.
// Gemini sometimes wraps the object even when ResponseMIMEType is JSON.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(text, "}")
	if end == -1 || end <= start {
		return ""
	}

	return text[start : end+1]
}
