package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestErrorOccurred_Error(t *testing.T) {
	msg := ErrorOccurred{Err: errors.New("store closed")}

	assert.Equal(t, "store closed", msg.Error())
}

func TestErrorOccurred_NilError(t *testing.T) {
	msg := ErrorOccurred{}

	assert.Equal(t, "", msg.Error())
	assert.NoError(t, msg.Unwrap())
}

func TestErrorOccurred_Unwrap(t *testing.T) {
	msg := ErrorOccurred{Err: domain.ErrNotFound}

	assert.ErrorIs(t, msg, domain.ErrNotFound)
}

func TestAnswerReceived_Fields(t *testing.T) {
	msg := AnswerReceived{
		Question: "What is osmosis?",
		Answer:   &domain.Answer{Answer: "Diffusion of water [#1].", Method: domain.AnswerMethodRAG},
	}

	assert.Equal(t, "What is osmosis?", msg.Question)
	assert.Equal(t, domain.AnswerMethodRAG, msg.Answer.Method)
	assert.NoError(t, msg.Err)
}
