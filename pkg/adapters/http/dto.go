package http

import (
	"github.com/go-playground/validator/v10"

	"github.com/aretw0/quest/pkg/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// StartRequest is the body of POST /sessions.
type StartRequest struct {
	Key         string `json:"key" validate:"omitempty,max=128,excludesall=/\\"`
	DisplayName string `json:"display_name" validate:"omitempty,max=64"`
}

// ActionRequest is the body of POST /sessions/{key}/actions.
type ActionRequest struct {
	Input string `json:"input" validate:"required"`
}

// TextResponse carries narration for a key.
type TextResponse struct {
	Key       string `json:"key"`
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// ActionResponse is TextResponse plus what the input resolved to.
type ActionResponse struct {
	TextResponse
	Matched   bool        `json:"matched"`
	Recovered bool        `json:"recovered,omitempty"`
	Action    string      `json:"action,omitempty"`
	Tier      domain.Tier `json:"tier,omitempty"`
}

// SessionList is the body of GET /sessions.
type SessionList struct {
	Sessions []string `json:"sessions"`
}

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	Error string `json:"error"`
}
