package ooxml

// EMUPerPixel is the number of EMUs (English Metric Units) per pixel at 96 DPI.
// 914400 EMU = 1 inch = 96 pixels.
const EMUPerPixel = 9525

// EMUToPixels converts a DrawingML extent to pixels at 96 DPI.
func EMUToPixels(emu int64) int {
	return int(emu / EMUPerPixel)
}
