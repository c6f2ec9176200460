// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// DocumentLoaded carries the chat document and its chunk count.
type DocumentLoaded struct {
	Document *domain.Document
	Chunks   int
	Err      error
}

// AskRequested is sent when the user submits a question.
type AskRequested struct {
	Question string
}

// AnswerReceived carries an answer (or the error) back to the model.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Elapsed  time.Duration
	Err      error
}

// WarmUpCompleted is sent once the generation model has been loaded.
type WarmUpCompleted struct {
	Err error
}

// ErrorOccurred is sent when an error occurs outside a question.
type ErrorOccurred struct {
	Err error
}

// Error implements the error interface for ErrorOccurred.
func (e ErrorOccurred) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e ErrorOccurred) Unwrap() error {
	return e.Err
}
