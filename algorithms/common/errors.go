package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for framing contract violations
var (
	ErrFrameIndicesNotSorted = errors.New("`indices` must be sorted in ascending order")
	ErrZeroFrameWidth        = errors.New("frame width must be greater than zero")
	ErrZeroStepSize          = errors.New("step size must be greater than zero")
)

// FrameIndexOutOfBoundsError reports a frame start index outside the sample buffer
type FrameIndexOutOfBoundsError struct {
	Index int
}

func (e *FrameIndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("index `%d` is out of bounds", e.Index)
}

// DuplicateFrameIndicesError reports two adjacent equal frame indices together
// with their positions in the index sequence
type DuplicateFrameIndicesError struct {
	Index int
	Pos1  int
	Pos2  int
}

func (e *DuplicateFrameIndicesError) Error() string {
	return fmt.Sprintf("duplicate index `%d` at positions %d and %d in `indices`", e.Index, e.Pos1, e.Pos2)
}
