package vision

import (
	"image"
	"math"
)

const blurRadius = 10

// MotionScore is a single-frame motion proxy: the standard deviation of a
// blurred grayscale rendering, normalized to [0,1]. It is not inter-frame
// optical flow.
func MotionScore(frame image.Image) float64 {
	bounds := frame.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return 0
	}

	gray := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := frame.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// 16-bit channels scaled back to 0-255 luminance.
			gray[y*width+x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
		}
	}

	blurred := boxBlur(gray, width, height, blurRadius)

	var sum, sumSq float64
	for _, v := range blurred {
		sum += v
		sumSq += v * v
	}
	n := float64(len(blurred))
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}

	score := math.Sqrt(variance) / 255.0
	if score > 1 {
		return 1
	}
	return score
}

// boxBlur applies a separable box filter, a cheap stand-in for the Gaussian
// smoothing the score definition assumes.
func boxBlur(src []float64, width, height, radius int) []float64 {
	horizontal := make([]float64, len(src))
	for y := 0; y < height; y++ {
		row := src[y*width : (y+1)*width]
		out := horizontal[y*width : (y+1)*width]
		blurLine(row, out, width, 1, radius)
	}

	vertical := make([]float64, len(src))
	for x := 0; x < width; x++ {
		blurLine(horizontal[x:], vertical[x:], height, width, radius)
	}
	return vertical
}

func blurLine(src, dst []float64, length, stride, radius int) {
	for i := 0; i < length; i++ {
		lo := i - radius
		if lo < 0 {
			lo = 0
		}
		hi := i + radius
		if hi >= length {
			hi = length - 1
		}

		var sum float64
		for j := lo; j <= hi; j++ {
			sum += src[j*stride]
		}
		dst[i*stride] = sum / float64(hi-lo+1)
	}
}
