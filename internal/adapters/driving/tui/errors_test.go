package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	assert.EqualError(t, ErrMissingAskService, "tui: ask service is required")
	assert.EqualError(t, ErrMissingDocumentID, "tui: document id is required")
	assert.False(t, errors.Is(ErrMissingAskService, ErrMissingDocumentID))
}
