package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// wirePayload mirrors the JSON object the model is instructed to return.
// Pointer fields distinguish "absent" from zero values so nothing is
// silently coerced during parsing.
type wirePayload struct {
	Text       *string  `json:"text"`
	Confidence *float64 `json:"confidence"`
	Title      *string  `json:"title"`
}

// extractResult locates the first well-formed result object in the reply.
// Providers sometimes wrap the JSON in surrounding prose; scanning from each
// opening brace tolerates that without loosening the decode itself.
func extractResult(reply string) (Result, error) {
	for i := 0; i < len(reply); i++ {
		if reply[i] != '{' {
			continue
		}
		payload, ok := decodeAt(reply[i:])
		if !ok {
			continue
		}
		res, err := payload.toResult()
		if err != nil {
			continue
		}
		return res, nil
	}
	return Result{}, fmt.Errorf("%w: no result object in reply", ErrMalformedResponse)
}

func decodeAt(fragment string) (wirePayload, bool) {
	dec := json.NewDecoder(strings.NewReader(fragment))
	var payload wirePayload
	if err := dec.Decode(&payload); err != nil {
		return wirePayload{}, false
	}
	return payload, true
}

func (p wirePayload) toResult() (Result, error) {
	if p.Text == nil || strings.TrimSpace(*p.Text) == "" {
		return Result{}, fmt.Errorf("%w: missing text", ErrMalformedResponse)
	}
	if p.Confidence != nil && (*p.Confidence < 0 || *p.Confidence > 1) {
		return Result{}, fmt.Errorf("%w: confidence %v outside [0,1]", ErrMalformedResponse, *p.Confidence)
	}
	res := Result{Text: *p.Text, Confidence: p.Confidence}
	if p.Title != nil {
		res.Title = strings.TrimSpace(*p.Title)
	}
	return res, nil
}
