package tui

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("tui: ask service is required")

// ErrMissingDocumentID is returned when no document is selected for the chat.
var ErrMissingDocumentID = errors.New("tui: document id is required")
