//go:build !cgo || (!ORT && !ALL)

package inference

import "errors"

func NewORTBackend(_, _ string, _ int) (Backend, error) {
	return nil, errors.New("ORT is not enabled")
}
