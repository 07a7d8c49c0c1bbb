package core

import (
	"errors"

	"lensflare-camera/internal/inference"
	"lensflare-camera/internal/tensor"
)

var (
	ErrZeroSizeFrame        = errors.New("zero-size frame")
	ErrInvalidFrame         = errors.New("invalid frame")
	ErrUnexpectedProcessing = errors.New("unexpected processing error")
)

// FailureKind names the class of a per-frame failure for logs and metrics.
type FailureKind string

const (
	FailureNone           FailureKind = ""
	FailureZeroSize       FailureKind = "zero_size_frame"
	FailureModel          FailureKind = "model_unavailable"
	FailureInferenceShape FailureKind = "inference_shape"
	FailureBufferSize     FailureKind = "buffer_size_mismatch"
	FailureUnexpected     FailureKind = "unexpected"
)

// FailureKinds lists every non-empty kind.
func FailureKinds() []FailureKind {
	return []FailureKind{FailureZeroSize, FailureModel, FailureInferenceShape, FailureBufferSize, FailureUnexpected}
}

// Classify maps err onto the failure taxonomy. Anything unrecognised is unexpected.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrZeroSizeFrame):
		return FailureZeroSize
	case errors.Is(err, inference.ErrModelUnavailable):
		return FailureModel
	case errors.Is(err, inference.ErrInferenceShape):
		return FailureInferenceShape
	case errors.Is(err, tensor.ErrBufferSizeMismatch):
		return FailureBufferSize
	default:
		return FailureUnexpected
	}
}
