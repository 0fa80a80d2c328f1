package exodus

import (
	"errors"
	"fmt"

	"github.com/batchatco/go-native-exodus/netcdf/api"
)

var (
	// ErrConfig reports invalid mesh cardinalities or options.
	ErrConfig = errors.New("configuration error")
	// ErrUsage reports calls out of dependency order, redefinitions and
	// data whose length does not match the declared dimensions.
	ErrUsage = errors.New("usage error")
	// ErrRange reports an ordinal or index outside the declared count.
	ErrRange = errors.New("range error")
	// ErrState reports a call on a closed file.
	ErrState = errors.New("file is closed")
	// ErrStorage wraps failures of the underlying container.
	ErrStorage = errors.New("storage error")
)

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrUsage)
}

func rangeErrorf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrRange)
}

// storageError wraps a container error, keeping the original in the chain.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrClosed) {
		return fmt.Errorf("%s: %w: %w", op, ErrState, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
