package engine

// Frame is the fixed-size visible region of the canvas consumed by broadcast
// software, e.g. 1920x1080.
type Frame struct {
	Width  float64
	Height float64
}

// ClampPosition clamps a proposed position to the padded working area that
// surrounds the frame: x in [-padding, frameWidth+padding-width] and y in
// [-padding, frameHeight+padding-height]. Accounting for the object's own
// dimensions keeps every object reachable by a future drag while still
// allowing intentional off-frame parking.
func ClampPosition(x, y, width, height float64, frame Frame, padding float64) (float64, float64) {
	return clampAxis(x, width, frame.Width, padding), clampAxis(y, height, frame.Height, padding)
}

func clampAxis(value, size, frameSize, padding float64) float64 {
	min := -padding
	max := frameSize + padding - size
	if max < min {
		// Object larger than the whole working area; pin it to the near edge.
		max = min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
