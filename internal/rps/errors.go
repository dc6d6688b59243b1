package rps

import (
	"errors"
	"fmt"
)

// Domain errors for lattice construction and parameters.
var (
	// ErrInvalidDimensions indicates a non-positive grid width or height.
	ErrInvalidDimensions = errors.New("rps: grid dimensions must be positive")

	// ErrProbabilityBounds indicates a transition probability outside [0,1].
	ErrProbabilityBounds = errors.New("rps: probability outside [0,1]")

	// ErrDensityBounds indicates a seeding density outside [0,1].
	ErrDensityBounds = errors.New("rps: density outside [0,1]")

	// ErrGridMismatch indicates two grids with different dimensions.
	ErrGridMismatch = errors.New("rps: grid dimensions do not match")
)

// ParamError names the parameter that violated its constraint.
type ParamError struct {
	Param string
	Value float64
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%v: %s=%v", e.Err, e.Param, e.Value)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

func checkUnit(param string, v float64, sentinel error) error {
	// written as a negated range so NaN is rejected too
	if !(v >= 0 && v <= 1) {
		return &ParamError{Param: param, Value: v, Err: sentinel}
	}
	return nil
}

// ValidateDensity checks a seeding density.
func ValidateDensity(density float64) error {
	return checkUnit("density", density, ErrDensityBounds)
}
