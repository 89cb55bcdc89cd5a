package motioncore

import "golang.org/x/exp/constraints"

// constrain clamps value to [min, max], matching tmc5160/helpers.go's
// generic of the same name.
func constrain[T constraints.Ordered](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
