package services

import (
	"errors"
	"fmt"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

var (
	ErrNoDateSelected         = errors.New("no diary date selected")
	ErrUnparseableDescription = errors.New("food description has no nutrition data")
	ErrEmptyQuery             = errors.New("search query cannot be empty")
	ErrInvalidDateRange       = errors.New("invalid date range")
	ErrSearchUnavailable      = errors.New("food search is not configured")
)

// passthrough errors keep their meaning when they come back from a store.
var passthrough = []error{
	domain.ErrMealConflict,
	domain.ErrMealNotFound,
	domain.ErrFoodNotFound,
	domain.ErrWeightEntryNotFound,
	domain.ErrWeightEntryConflict,
	domain.ErrUserNotFound,
	domain.ErrEmailAlreadyExists,
}

// storeErr marks a failed round trip as a remote failure, except for
// errors the caller is expected to branch on.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrRemoteFailure) {
		return err
	}
	for _, known := range passthrough {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrRemoteFailure, op, err)
}
