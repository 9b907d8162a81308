package transcript

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

var _ contractx.Archiver = Multi(nil)

// Multi hands a history to every archiver and joins their errors.
type Multi []contractx.Archiver

func (m Multi) Archive(ctx context.Context, sessionID string, history []contractx.Message) error {
	var errs []error
	for i, a := range m {
		if a == nil {
			continue
		}
		if err := a.Archive(ctx, sessionID, history); err != nil {
			errs = append(errs, fmt.Errorf("archiver %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
