// Filter mode and parameters shared between the UI and the frame worker
package config

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Mode selects what the pipeline does with a frame.
type Mode int

const (
	ModeDisabled Mode = iota
	ModeLearned
	ModeGaussian
	ModeSaltPepper
	ModeImpulse
)

var modeNames = map[Mode]string{
	ModeDisabled:   "disabled",
	ModeLearned:    "learned",
	ModeGaussian:   "gaussian",
	ModeSaltPepper: "salt_pepper",
	ModeImpulse:    "impulse",
}

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModeDisabled, ModeLearned, ModeGaussian, ModeSaltPepper, ModeImpulse}
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Classical reports whether the mode is served by the classical filter engine.
func (m Mode) Classical() bool {
	return m == ModeGaussian || m == ModeSaltPepper || m == ModeImpulse
}

// ParseMode accepts the canonical names plus a few aliases used on the command line.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "median", "saltpepper", "salt-pepper":
		return ModeSaltPepper, nil
	case "model", "specular":
		return ModeLearned, nil
	case "off", "none":
		return ModeDisabled, nil
	}
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return ModeDisabled, fmt.Errorf("unknown filter mode: %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

const (
	DefaultKernelSize = 3
	DefaultSigma      = 1.0
	MinKernelSize     = 3
)

// FilterParameters is an immutable snapshot of the filter configuration.
type FilterParameters struct {
	Mode       Mode
	KernelSize int
	Sigma      float64
}

// DefaultParameters mirrors the settings the app starts with.
func DefaultParameters() FilterParameters {
	return FilterParameters{Mode: ModeGaussian, KernelSize: DefaultKernelSize, Sigma: DefaultSigma}
}

// ValidKernelSize reports whether k is an odd size of at least MinKernelSize.
func ValidKernelSize(k int) bool {
	return k >= MinKernelSize && k%2 == 1
}

func (p FilterParameters) Validate() error {
	if _, ok := modeNames[p.Mode]; !ok {
		return fmt.Errorf("invalid mode: %d", int(p.Mode))
	}
	if !ValidKernelSize(p.KernelSize) {
		return fmt.Errorf("kernel size must be odd and >= %d, got %d", MinKernelSize, p.KernelSize)
	}
	if p.Sigma < 0 {
		return fmt.Errorf("sigma must be non-negative, got %g", p.Sigma)
	}
	return nil
}

// Store holds the current FilterParameters. Writers replace the whole
// snapshot, so a reader never observes a mix of old and new fields.
type Store struct {
	current atomic.Pointer[FilterParameters]
}

// NewStore returns a store seeded with initial, falling back to the
// defaults for any invalid field.
func NewStore(initial FilterParameters) *Store {
	def := DefaultParameters()
	if _, ok := modeNames[initial.Mode]; !ok {
		initial.Mode = def.Mode
	}
	if !ValidKernelSize(initial.KernelSize) {
		initial.KernelSize = def.KernelSize
	}
	if initial.Sigma < 0 {
		initial.Sigma = def.Sigma
	}

	s := &Store{}
	s.current.Store(&initial)
	return s
}

// Snapshot returns the parameters in effect right now.
func (s *Store) Snapshot() FilterParameters {
	return *s.current.Load()
}

func (s *Store) update(fn func(p *FilterParameters)) {
	for {
		old := s.current.Load()
		next := *old
		fn(&next)
		if s.current.CompareAndSwap(old, &next) {
			return
		}
	}
}

func (s *Store) SetMode(m Mode) bool {
	if _, ok := modeNames[m]; !ok {
		return false
	}
	s.update(func(p *FilterParameters) {
		p.Mode = m
	})
	return true
}

// SetKernelSize applies k only when it is odd and >= 3; otherwise the
// previous size stays active and false is returned.
func (s *Store) SetKernelSize(k int) bool {
	if !ValidKernelSize(k) {
		return false
	}
	s.update(func(p *FilterParameters) {
		p.KernelSize = k
	})
	return true
}

// SetSigma ignores negative values.
func (s *Store) SetSigma(sigma float64) bool {
	if sigma < 0 || sigma != sigma {
		return false
	}
	s.update(func(p *FilterParameters) {
		p.Sigma = sigma
	})
	return true
}
