package exodus

import "fmt"

const defaultMaxNameLength = 32

type settings struct {
	maxNameLength int
	clobber       bool
}

// Option configures Create.
type Option func(*settings) error

// WithMaxNameLength sets the longest name accepted by the name tables, and
// the maximum_name_length attribute. The default is 32, the most the
// 33-character tables hold.
func WithMaxNameLength(n int) Option {
	return func(s *settings) error {
		if n < 1 || n > lenName-1 {
			return fmt.Errorf("maximum name length %d not in 1..%d: %w", n, lenName-1, ErrConfig)
		}
		s.maxNameLength = n
		return nil
	}
}

// WithClobber controls whether Create may overwrite an existing file. It
// may by default.
func WithClobber(clobber bool) Option {
	return func(s *settings) error {
		s.clobber = clobber
		return nil
	}
}

func newSettings(opts []Option) (settings, error) {
	s := settings{maxNameLength: defaultMaxNameLength, clobber: true}
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return s, err
		}
	}
	return s, nil
}
