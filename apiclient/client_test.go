package apiclient_test

import (
	"context"
	"errors"
	"testing"

	apiclient "github.com/Alia5/gamecontrol/apiclient"
	apitypes "github.com/Alia5/gamecontrol/apitypes"

	"github.com/stretchr/testify/assert"
)

// testClient constructs a client backed by a simple in-memory responder.
// responses maps path patterns (before path param substitution) to raw JSON payloads.
// If err is non-nil, every request returns that error, simulating dial failures.
func testClient(responses map[string]string, err error) *apiclient.Client {
	return apiclient.WithTransport(apiclient.NewMockTransport(func(path string, _ any, _ map[string]string) (string, error) {
		if err != nil {
			return "", err
		}
		if out, ok := responses[path]; ok {
			return out, nil
		}
		return "", nil
	}))
}

func TestHighLevelClient(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(responses map[string]string) (err error)
		call       func(c *apiclient.Client) (any, error)
		wantErr    string
		assertFunc func(t *testing.T, got any)
	}{
		{
			name: "ping",
			setup: func(responses map[string]string) error {
				responses["ping"] = `{"server":"gamecontrol","version":"dev"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Ping() },
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, "gamecontrol", got.(*apitypes.PingResponse).Server)
			},
		},
		{
			name: "state",
			setup: func(responses map[string]string) error {
				responses["state"] = `{"frame":3,"buttons":1,"axes":[0,1,2,3,4,5],"prevAxes":[0,0,0,0,0,0],"actionFlags":0,"nextResendMs":100}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.State() },
			assertFunc: func(t *testing.T, got any) {
				s := got.(*apitypes.StateResponse)
				assert.Equal(t, [6]int16{0, 1, 2, 3, 4, 5}, s.Axes)
				assert.Equal(t, int64(100), s.NextResendMs)
			},
		},
		{
			name: "action error structured",
			setup: func(responses map[string]string) error {
				responses["action/{name}"] = `{"status":404,"title":"Not Found","detail":"unknown action: fly"}`
				return nil
			},
			call:    func(c *apiclient.Client) (any, error) { return c.Action("fly") },
			wantErr: "404 Not Found: unknown action: fly",
		},
		{
			name: "set action",
			setup: func(responses map[string]string) error {
				responses["action/{name}/set"] = `{"action":"stop","type":"binary","channel":{"channel":"BUTTON_5","remote":"GAME_CONTROL_BUTTON_GUIDE","type":"button"}}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.SetAction("stop", "BUTTON_5") },
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, "BUTTON_5", got.(*apitypes.ActionResponse).Channel.Channel)
			},
		},
		{
			name: "devices empty",
			setup: func(responses map[string]string) error {
				responses["devices"] = `{"devices":[]}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Devices() },
			assertFunc: func(t *testing.T, got any) {
				assert.Len(t, got.(*apitypes.DevicesListResponse).Devices, 0)
			},
		},
		{
			name:    "transport failure",
			setup:   func(responses map[string]string) error { return errors.New("dial fail") },
			call:    func(c *apiclient.Client) (any, error) { return c.Flags() },
			wantErr: "dial fail",
		},
		{
			name:    "blank response error",
			setup:   func(responses map[string]string) error { return nil },
			call:    func(c *apiclient.Client) (any, error) { return c.Mappings() },
			wantErr: "empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := map[string]string{}
			errInject := error(nil)
			if tt.setup != nil {
				if e := tt.setup(responses); e != nil {
					errInject = e
				}
			}
			c := testClient(responses, errInject)
			got, err := tt.call(c)
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
			if tt.assertFunc != nil {
				tt.assertFunc(t, got)
			}
		})
	}
}

func TestContextCancellation(t *testing.T) {
	c := apiclient.WithTransport(apiclient.NewTransport("127.0.0.1:9")) // address irrelevant due to early cancel
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FlagsCtx(ctx)
	assert.Error(t, err)
}

func TestStrictJSONDecode(t *testing.T) {
	responses := map[string]string{}
	responses["focus"] = `{"focus":true,"extra":true}`
	c := testClient(responses, nil)
	_, err := c.Focus()
	assert.Error(t, err)
}
