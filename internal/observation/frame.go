package observation

import "image"

// ColorFrame is a (height, width, 3) uint8 array in row-major order.
// Row 0 is the top scanline.
type ColorFrame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewColorFrame allocates a zero-filled frame.
func NewColorFrame(width, height int) *ColorFrame {
	return &ColorFrame{Width: width, Height: height, Pix: make([]uint8, width*height*ColorChannels)}
}

// Shape returns (height, width, channels).
func (f *ColorFrame) Shape() []int { return []int{f.Height, f.Width, ColorChannels} }

// At returns the value of channel ch at (row, col).
func (f *ColorFrame) At(row, col, ch int) uint8 {
	return f.Pix[(row*f.Width+col)*ColorChannels+ch]
}

// Row returns the slice backing one scanline.
func (f *ColorFrame) Row(row int) []uint8 {
	stride := f.Width * ColorChannels
	return f.Pix[row*stride : (row+1)*stride]
}

// RGBA copies the frame into an opaque image.RGBA.
func (f *ColorFrame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i < len(f.Pix); i, j = i+ColorChannels, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// DepthFrame is a (height, width, 1) float32 array in row-major order.
// Row 0 is the top scanline.
type DepthFrame struct {
	Width  int
	Height int
	Values []float32
}

// NewDepthFrame allocates a zero-filled frame.
func NewDepthFrame(width, height int) *DepthFrame {
	return &DepthFrame{Width: width, Height: height, Values: make([]float32, width*height)}
}

// Shape returns (height, width, 1).
func (f *DepthFrame) Shape() []int { return []int{f.Height, f.Width, 1} }

func (f *DepthFrame) At(row, col int) float32 {
	return f.Values[row*f.Width+col]
}

func (f *DepthFrame) Row(row int) []float32 {
	return f.Values[row*f.Width : (row+1)*f.Width]
}

// Observation is one decoded frame. Color is nil for pure-depth handlers
// and Depth is nil for color-only handlers. Matrices is set only when the
// decoder was asked to consume the camera-matrix tail.
type Observation struct {
	Config   Config
	Color    *ColorFrame
	Depth    *DepthFrame
	Matrices *CameraMatrices
}
