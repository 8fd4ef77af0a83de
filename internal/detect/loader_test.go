package detect

import (
	"os"
	"path/filepath"
	"testing"
)

const validDoc = `{
  "image_width": 1200,
  "image_height": 800,
  "detections": [
    {"text": "Q1'14", "box": {"left": 100, "top": 760, "width": 40, "height": 20}, "confidence": 0.98},
    {"text": "27.85", "box": {"left": 102, "top": 300, "width": 38, "height": 18}, "confidence": 0.95}
  ]
}`

func TestDecode_Valid(t *testing.T) {
	doc, err := Decode([]byte(validDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.ImageWidth != 1200 || doc.ImageHeight != 800 {
		t.Fatalf("dimensions = %vx%v, want 1200x800", doc.ImageWidth, doc.ImageHeight)
	}

	dets := doc.TextDetections()
	if len(dets) != 2 {
		t.Fatalf("got %d detections, want 2", len(dets))
	}
	if dets[0].Text != "Q1'14" {
		t.Errorf("text = %q, want Q1'14", dets[0].Text)
	}
	// box arrives as left/top/width/height and is stored as corners
	b := dets[0].Box
	if b.X0 != 100 || b.Y0 != 760 || b.X1 != 140 || b.Y1 != 780 {
		t.Errorf("box = %+v, want corners (100,760)-(140,780)", b)
	}
}

func TestDecode_EmptyDetections(t *testing.T) {
	doc, err := Decode([]byte(`{"image_width": 1200, "image_height": 800, "detections": []}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.TextDetections()) != 0 {
		t.Fatalf("expected no detections")
	}
}

func TestDecode_Invalid(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing dimensions", `{"detections": []}`},
		{"missing detections", `{"image_width": 1200, "image_height": 800}`},
		{"detection without box", `{"image_width": 1200, "image_height": 800, "detections": [{"text": "Q1'14", "confidence": 0.9}]}`},
		{"box missing height", `{"image_width": 1200, "image_height": 800, "detections": [{"text": "Q1'14", "box": {"left": 1, "top": 2, "width": 3}, "confidence": 0.9}]}`},
		{"string dimension", `{"image_width": "1200", "image_height": 800, "detections": []}`},
		{"not json", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode([]byte(tc.data)); err == nil {
				t.Fatalf("Decode accepted %s", tc.name)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20140214.json")
	if err := os.WriteFile(path, []byte(validDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Detections) != 2 {
		t.Fatalf("got %d detections, want 2", len(doc.Detections))
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("Load of missing file succeeded")
	}
}
