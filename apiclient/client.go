package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	apitypes "github.com/Alia5/gamecontrol/apitypes"
)

// Client provides a high-level interface to the control API, handling request
// formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// NewWithPassword constructs a client for a password protected server.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing or when advanced transport configuration is needed.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

func do[T any](ctx context.Context, c *Client, path string, payload any, pathParams map[string]string) (*T, error) {
	raw, err := c.transport.DoCtx(ctx, path, payload, pathParams)
	if err != nil {
		return nil, err
	}
	return parse[T](raw)
}

// Ping returns the version and identity of the server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	return do[apitypes.PingResponse](ctx, c, "ping", nil, nil)
}

// State returns the final combined controller state.
func (c *Client) State() (*apitypes.StateResponse, error) {
	return c.StateCtx(context.Background())
}

func (c *Client) StateCtx(ctx context.Context) (*apitypes.StateResponse, error) {
	return do[apitypes.StateResponse](ctx, c, "state", nil, nil)
}

// Devices lists the connected controllers.
func (c *Client) Devices() (*apitypes.DevicesListResponse, error) {
	return c.DevicesCtx(context.Background())
}

func (c *Client) DevicesCtx(ctx context.Context) (*apitypes.DevicesListResponse, error) {
	return do[apitypes.DevicesListResponse](ctx, c, "devices", nil, nil)
}

// ActiveChannel returns the button or axis currently held, or "NONE".
func (c *Client) ActiveChannel() (*apitypes.Channel, error) {
	return c.ActiveChannelCtx(context.Background())
}

func (c *Client) ActiveChannelCtx(ctx context.Context) (*apitypes.Channel, error) {
	return do[apitypes.Channel](ctx, c, "channel/active", nil, nil)
}

// Flycam returns the normalized flycam inputs.
func (c *Client) Flycam() (*apitypes.FlycamResponse, error) {
	return c.FlycamCtx(context.Background())
}

func (c *Client) FlycamCtx(ctx context.Context) (*apitypes.FlycamResponse, error) {
	return do[apitypes.FlycamResponse](ctx, c, "flycam", nil, nil)
}

// Flags returns the user flags.
func (c *Client) Flags() (*apitypes.FlagsResponse, error) {
	return c.FlagsCtx(context.Background())
}

func (c *Client) FlagsCtx(ctx context.Context) (*apitypes.FlagsResponse, error) {
	return do[apitypes.FlagsResponse](ctx, c, "flags", nil, nil)
}

// SetFlags changes the flags set in req and returns all flags.
func (c *Client) SetFlags(req apitypes.FlagsUpdateRequest) (*apitypes.FlagsResponse, error) {
	return c.SetFlagsCtx(context.Background(), req)
}

func (c *Client) SetFlagsCtx(ctx context.Context, req apitypes.FlagsUpdateRequest) (*apitypes.FlagsResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal flags request: %w", err)
	}
	return do[apitypes.FlagsResponse](ctx, c, "flags/set", string(payload), nil)
}

// Mappings returns the analog, binary and flycam mapping strings.
func (c *Client) Mappings() (*apitypes.MappingsResponse, error) {
	return c.MappingsCtx(context.Background())
}

func (c *Client) MappingsCtx(ctx context.Context) (*apitypes.MappingsResponse, error) {
	return do[apitypes.MappingsResponse](ctx, c, "mappings", nil, nil)
}

// SetMappings replaces the mapping string of group ("analog", "binary" or
// "flycam").
func (c *Client) SetMappings(group, mappings string) (*apitypes.MappingsResponse, error) {
	return c.SetMappingsCtx(context.Background(), group, mappings)
}

func (c *Client) SetMappingsCtx(ctx context.Context, group, mappings string) (*apitypes.MappingsResponse, error) {
	pathParams := map[string]string{"group": group}
	return do[apitypes.MappingsResponse](ctx, c, "mappings/{group}/set", mappings, pathParams)
}

// ResetMappings restores the default mappings.
func (c *Client) ResetMappings() (*apitypes.MappingsResponse, error) {
	return c.ResetMappingsCtx(context.Background())
}

func (c *Client) ResetMappingsCtx(ctx context.Context) (*apitypes.MappingsResponse, error) {
	return do[apitypes.MappingsResponse](ctx, c, "mappings/reset", nil, nil)
}

// Action returns the type and mapped channel of an action.
func (c *Client) Action(name string) (*apitypes.ActionResponse, error) {
	return c.ActionCtx(context.Background(), name)
}

func (c *Client) ActionCtx(ctx context.Context, name string) (*apitypes.ActionResponse, error) {
	return do[apitypes.ActionResponse](ctx, c, "action/{name}", nil, map[string]string{"name": name})
}

// SetAction maps an action to a channel name such as "AXIS_1-" or
// "BUTTON_4". "NONE" unmaps it.
func (c *Client) SetAction(name, channel string) (*apitypes.ActionResponse, error) {
	return c.SetActionCtx(context.Background(), name, channel)
}

func (c *Client) SetActionCtx(ctx context.Context, name, channel string) (*apitypes.ActionResponse, error) {
	return do[apitypes.ActionResponse](ctx, c, "action/{name}/set", channel, map[string]string{"name": name})
}

// SetExternalInput feeds agent flags and buttons from outside the controllers.
func (c *Client) SetExternalInput(actionFlags, buttons uint32) (*apitypes.ExternalInputResponse, error) {
	return c.SetExternalInputCtx(context.Background(), actionFlags, buttons)
}

func (c *Client) SetExternalInputCtx(ctx context.Context, actionFlags, buttons uint32) (*apitypes.ExternalInputResponse, error) {
	req := apitypes.ExternalInputRequest{ActionFlags: actionFlags, Buttons: buttons}
	return do[apitypes.ExternalInputResponse](ctx, c, "input/external", req, nil)
}

// Focus reports whether device input is consumed.
func (c *Client) Focus() (*apitypes.FocusResponse, error) {
	return c.FocusCtx(context.Background())
}

func (c *Client) FocusCtx(ctx context.Context) (*apitypes.FocusResponse, error) {
	return do[apitypes.FocusResponse](ctx, c, "focus", nil, nil)
}

// SetFocus gives or takes the input focus.
func (c *Client) SetFocus(focus bool) (*apitypes.FocusResponse, error) {
	return c.SetFocusCtx(context.Background(), focus)
}

func (c *Client) SetFocusCtx(ctx context.Context, focus bool) (*apitypes.FocusResponse, error) {
	return do[apitypes.FocusResponse](ctx, c, "focus", strconv.FormatBool(focus), nil)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
