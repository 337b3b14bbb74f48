package server

import (
	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/session"
)

// RunRequest is the payload for POST /api/sessions.
type RunRequest struct {
	Name        string              `json:"name"`
	Concepts    []string            `json:"concepts"`
	Patterns    []string            `json:"patterns"`
	Practices   []string            `json:"practices"`
	Mode        string              `json:"mode" validate:"omitempty,mode"`
	Objectives  []string            `json:"objectives"`
	Constraints session.Constraints `json:"constraints"`
	Context     string              `json:"context"`
}

// DiveRequest is the payload for POST /api/sessions/{id}/dives.
type DiveRequest struct {
	NodeIDs  []string `json:"nodeIds" validate:"required,min=1,dive,required"`
	Level    string   `json:"level" validate:"omitempty,oneof=secondary tertiary"`
	Question string   `json:"question"`
}

// RunResponse is returned after a completed pipeline run.
type RunResponse struct {
	Session *session.Session   `json:"session"`
	Usage   effects.TokenUsage `json:"usage"`
}

// InfoResponse describes the running server.
type InfoResponse struct {
	Version  string         `json:"version"`
	Provider string         `json:"provider,omitempty"`
	ReadOnly bool           `json:"readOnly"`
	Modes    []session.Mode `json:"modes"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
