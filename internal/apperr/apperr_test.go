package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vasiliy-maslov/garage-platform/internal/apperr"
)

var errPartNotFound = errors.New("part not found")

func TestNotFound_NamesResourceAndKeepsSentinel(t *testing.T) {
	err := apperr.NotFound(errPartNotFound, "P1")

	assert.Equal(t, "part not found: P1", err.Error())
	assert.ErrorIs(t, err, errPartNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestKindOf_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("service: create order: %w", apperr.Invalid(errors.New("items cannot be empty"), "items"))

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "items cannot be empty", apperr.Message(err, "fallback"))
}

func TestMessage_FallbackForUnclassified(t *testing.T) {
	err := errors.New("connection reset by peer")

	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, "Failed to create order", apperr.Message(err, "Failed to create order"))
}
