package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("min_year", "cannot be greater than max_year")
	assert.Equal(t, "invalid min_year: cannot be greater than max_year", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
