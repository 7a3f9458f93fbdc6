package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Extra154/spectra-data-server/internal/common"
)

// storeErr prefixes err with op and classifies anything that is not a known
// sentinel as ErrorStoreUnavailable.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorInvalidInput),
		errors.Is(err, common.ErrorAlreadyExists),
		errors.Is(err, common.ErrorExpired),
		errors.Is(err, common.ErrorStoreUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, common.ErrorStoreUnavailable, err)
	}
}
