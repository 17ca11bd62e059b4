package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"planify/internal/status"
	"planify/models"
)

func TestValidateTransition(t *testing.T) {
	allowed := [][2]string{
		{models.BookingPending, models.BookingConfirmed},
		{models.BookingPending, models.BookingCancelled},
		{models.BookingConfirmed, models.BookingInProgress},
		{models.BookingConfirmed, models.BookingCancelled},
		{models.BookingInProgress, models.BookingCompleted},
	}
	for _, tc := range allowed {
		assert.NoError(t, ValidateTransition(tc[0], tc[1]), "%s -> %s should be allowed", tc[0], tc[1])
	}

	rejected := [][2]string{
		{models.BookingPending, models.BookingInProgress},
		{models.BookingPending, models.BookingCompleted},
		{models.BookingConfirmed, models.BookingCompleted},
		{models.BookingInProgress, models.BookingCancelled},
		{models.BookingCompleted, models.BookingPending},
		{models.BookingCompleted, models.BookingCancelled},
		{models.BookingCancelled, models.BookingConfirmed},
		{models.BookingConfirmed, models.BookingPending},
	}
	for _, tc := range rejected {
		err := ValidateTransition(tc[0], tc[1])
		assert.ErrorIs(t, err, status.ErrInvalidTransition, "%s -> %s should be rejected", tc[0], tc[1])
	}
}

func TestValidateTransition_UnknownStatus(t *testing.T) {
	err := ValidateTransition("draft", models.BookingConfirmed)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}
