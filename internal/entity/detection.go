package entity

// Box is an axis-aligned rectangle in image coordinates.
// Origin is the top-left corner of the source image; y grows downward.
type Box struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// BoxFromLTWH builds a Box from the left/top/width/height shape the
// OCR service reports.
func BoxFromLTWH(left, top, width, height float64) Box {
	return Box{X0: left, Y0: top, X1: left + width, Y1: top + height}
}

func (b Box) Width() float64  { return b.X1 - b.X0 }
func (b Box) Height() float64 { return b.Y1 - b.Y0 }

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return (b.X0 + b.X1) / 2 }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return (b.Y0 + b.Y1) / 2 }

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	u := b
	if o.X0 < u.X0 {
		u.X0 = o.X0
	}
	if o.Y0 < u.Y0 {
		u.Y0 = o.Y0
	}
	if o.X1 > u.X1 {
		u.X1 = o.X1
	}
	if o.Y1 > u.Y1 {
		u.Y1 = o.Y1
	}
	return u
}

// TextDetection is one OCR result: recognized text, its bounding box and
// the recognition confidence reported by the vision service.
type TextDetection struct {
	Text       string  `json:"text"`
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
}
