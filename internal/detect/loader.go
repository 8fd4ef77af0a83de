// Package detect loads and validates the OCR detection documents that
// accompany each chart image. The vision service itself is an external
// collaborator; its JSON output format is ours.
package detect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/seung-gu/factset-data-collector/internal/entity"
)

// Document is one image's OCR output: the image dimensions plus every
// recognized text region.
type Document struct {
	ImageWidth  float64        `json:"image_width"`
	ImageHeight float64        `json:"image_height"`
	Detections  []rawDetection `json:"detections"`
}

type rawDetection struct {
	Text string `json:"text"`
	Box  struct {
		Left   float64 `json:"left"`
		Top    float64 `json:"top"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"box"`
	Confidence float64 `json:"confidence"`
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// Decode validates and decodes one detection document.
func Decode(data []byte) (*Document, error) {
	if err := ValidateJSONAgainstSchema(BuildDetectionsJSONSchema(), data); err != nil {
		return nil, fmt.Errorf("validate detections: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode detections: %w", err)
	}
	return &doc, nil
}

// Load reads and decodes the detection document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read detections %s: %w", path, err)
	}
	return Decode(data)
}

// TextDetections converts the document into the core input type.
func (d *Document) TextDetections() []entity.TextDetection {
	out := make([]entity.TextDetection, 0, len(d.Detections))
	for _, r := range d.Detections {
		out = append(out, entity.TextDetection{
			Text:       r.Text,
			Box:        entity.BoxFromLTWH(r.Box.Left, r.Box.Top, r.Box.Width, r.Box.Height),
			Confidence: r.Confidence,
		})
	}
	return out
}
