package render

import "math"

// Templates are laid out on a fixed logical canvas and scaled uniformly.
const (
	CanvasWidth  = 920
	CanvasHeight = 518

	PreviewScale = 0.3
	// MaxScale bounds every rendition; a PNG at MaxScale is 1840x1036.
	MaxScale = 2.0
)

// Fit returns the largest uniform scale at which the canvas fits inside the
// available area without cropping.
func Fit(availableWidth, availableHeight float64) float64 {
	s := math.Min(availableWidth/CanvasWidth, availableHeight/CanvasHeight)
	if s < 0 || math.IsNaN(s) {
		return 0
	}
	return s
}

// Size returns the pixel size of the canvas at scale s.
func Size(s float64) (int, int) {
	return int(math.Round(CanvasWidth * s)), int(math.Round(CanvasHeight * s))
}
