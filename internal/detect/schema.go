package detect

// BuildDetectionsJSONSchema returns a JSON-Schema (draft 2020-12 subset)
// for one image's OCR detection document, as a generic map. We validate
// locally before decoding so malformed OCR output is rejected up front.
func BuildDetectionsJSONSchema() map[string]any {
	box := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"left":   map[string]any{"type": "number", "minimum": 0.0},
			"top":    map[string]any{"type": "number", "minimum": 0.0},
			"width":  map[string]any{"type": "number", "minimum": 0.0},
			"height": map[string]any{"type": "number", "minimum": 0.0},
		},
		"required": []string{"left", "top", "width", "height"},
	}
	detection := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"text":       map[string]any{"type": "string", "minLength": 1},
			"box":        box,
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
		"required": []string{"text", "box"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"image_width":  map[string]any{"type": "number", "exclusiveMinimum": 0.0},
			"image_height": map[string]any{"type": "number", "exclusiveMinimum": 0.0},
			"detections":   map[string]any{"type": "array", "items": detection},
		},
		"required": []string{"image_width", "image_height", "detections"},
	}
}
