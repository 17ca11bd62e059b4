package services

import (
	"fmt"

	"planify/internal/status"
	"planify/models"
)

// bookingTransitions is the full set of allowed booking status changes.
// pending -> confirmed happens automatically once the advance is covered or
// explicitly via vendor approve; in_progress and completed are vendor-driven
// and strictly sequential; cancelled is reachable from pending and confirmed
// only.
var bookingTransitions = map[string][]string{
	models.BookingPending:    {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed:  {models.BookingInProgress, models.BookingCancelled},
	models.BookingInProgress: {models.BookingCompleted},
	models.BookingCompleted:  {},
	models.BookingCancelled:  {},
}

// ValidateTransition rejects any booking status change the lifecycle does
// not allow. The booking is left untouched on rejection.
func ValidateTransition(from, to string) error {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", status.ErrInvalidTransition, from, to)
}
