package apitypes

import (
	"fmt"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// StateResponse is the final combined controller state.
type StateResponse struct {
	Frame    uint64   `json:"frame"`
	Buttons  uint32   `json:"buttons"`
	Axes     [6]int16 `json:"axes"`
	PrevAxes [6]int16 `json:"prevAxes"`
	// ActionFlags are the agent control flags of the last frame.
	ActionFlags uint32 `json:"actionFlags"`
	// NextResendMs is the current resend period; 0 means a send is pending.
	NextResendMs int64 `json:"nextResendMs"`
}

type Device struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

type DevicesListResponse struct {
	Devices []Device `json:"devices"`
}

// Channel describes an input channel. Channel is "NONE" when unmapped.
type Channel struct {
	Channel string `json:"channel"`
	Remote  string `json:"remote"`
	Type    string `json:"type"`
}

type FlycamResponse struct {
	Actions []string  `json:"actions"`
	Inputs  []float32 `json:"inputs"`
}

type FlagsResponse struct {
	SendToServer          bool   `json:"sendToServer"`
	ControlAgent          bool   `json:"controlAgent"`
	TranslateAgentActions bool   `json:"translateAgentActions"`
	AgentControlMode      string `json:"agentControlMode"`
}

// FlagsUpdateRequest changes only the fields that are set.
type FlagsUpdateRequest struct {
	SendToServer          *bool   `json:"sendToServer,omitempty"`
	ControlAgent          *bool   `json:"controlAgent,omitempty"`
	TranslateAgentActions *bool   `json:"translateAgentActions,omitempty"`
	AgentControlMode      *string `json:"agentControlMode,omitempty"`
}

type MappingsResponse struct {
	Analog string `json:"analog"`
	Binary string `json:"binary"`
	Flycam string `json:"flycam"`
}

type ActionResponse struct {
	Action  string  `json:"action"`
	Type    string  `json:"type"`
	Channel Channel `json:"channel"`
}

type ExternalInputRequest struct {
	ActionFlags uint32 `json:"actionFlags"`
	Buttons     uint32 `json:"buttons"`
}

// ExternalInputResponse is the synthetic state built from external input.
type ExternalInputResponse struct {
	Buttons uint32   `json:"buttons"`
	Axes    [6]int16 `json:"axes"`
}

type FocusResponse struct {
	Focus bool `json:"focus"`
}
