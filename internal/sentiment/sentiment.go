// Package sentiment scores the emotional tone of a reflection.
package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// NeutralLabel is the label of the fallback result.
const NeutralLabel = "Neutral"

// Result is a score in [-1, 1] (anxious to confident) with a short label.
type Result struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// Neutral is returned whenever analysis cannot produce a result.
func Neutral() Result {
	return Result{Score: 0, Label: NeutralLabel}
}

// Analyzer scores free text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Result, error)
}

var errEmptyPayload = errors.New("sentiment payload is empty")

// Parse decodes a {"score","label"} payload, tolerating markdown code fences around it.
func Parse(raw string) (Result, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return Result{}, errEmptyPayload
	}

	var out Result
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return Result{}, fmt.Errorf("decode sentiment payload: %w", err)
	}
	if math.IsNaN(out.Score) {
		out.Score = 0
	}
	out.Score = math.Max(-1, math.Min(1, out.Score))
	out.Label = strings.TrimSpace(out.Label)
	if out.Label == "" {
		out.Label = NeutralLabel
	}
	return out, nil
}

// Fallback tries primary and, when it fails, secondary.
type Fallback struct {
	Primary   Analyzer
	Secondary Analyzer
}

func (f Fallback) Analyze(ctx context.Context, text string) (Result, error) {
	if f.Primary != nil {
		res, err := f.Primary.Analyze(ctx, text)
		if err == nil {
			return res, nil
		}
		if f.Secondary == nil {
			return Result{}, err
		}
	}
	if f.Secondary == nil {
		return Neutral(), nil
	}
	return f.Secondary.Analyze(ctx, text)
}
