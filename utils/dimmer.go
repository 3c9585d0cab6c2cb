package utils

// GetDimmerFadeValue returns the output level for one step of a fade
// towards target, sampling the ramp at the midpoint of the step.
func GetDimmerFadeValue(target, step, numSteps int) int {
	return int(float64(target) * (float64(step) + 0.5) / float64(numSteps))
}
