package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/log"
	"github.com/Alia5/gamecontrol/internal/settings"
	gcTesting "github.com/Alia5/gamecontrol/internal/testing"
	"github.com/Alia5/gamecontrol/internal/transport"
)

func TestWriteChannels(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeChannels(&out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1+2*gamecontrol.NumAxes+gamecontrol.NumButtons)
	assert.Equal(t, []string{"CHANNEL", "NAME"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"AXIS_0+", "GAME_CONTROL_AXIS_LEFTX"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"AXIS_0-", "GAME_CONTROL_AXIS_LEFTX"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"BUTTON_0", "GAME_CONTROL_BUTTON_A"}, strings.Fields(lines[1+2*gamecontrol.NumAxes]))
	// no protocol name
	assert.Equal(t, []string{"BUTTON_31"}, strings.Fields(lines[len(lines)-1]))
}

func TestSetMapping(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		channel string
		want    string
		wantErr string
	}{
		{name: "analog", action: "push", channel: "AXIS_3-", want: "AXIS_3-"},
		{name: "analog half", action: "turn-", channel: "AXIS_0+", want: "AXIS_0+"},
		{name: "binary lower case", action: "toggle_fly", channel: "button_2", want: "BUTTON_2"},
		{name: "flycam", action: "yaw", channel: "AXIS_5-", want: "AXIS_5-"},
		{name: "flycam on button", action: "yaw", channel: "BUTTON_4", wantErr: "cannot map flycam action"},
		{name: "unmap", action: "stop", channel: "NONE", want: "NONE"},
		{name: "binary on axis", action: "stop", channel: "AXIS_0+", wantErr: "cannot map binary action"},
		{name: "analog on button", action: "push", channel: "BUTTON_1", wantErr: "cannot map analog action"},
		{name: "unknown action", action: "bogus", channel: "BUTTON_1", wantErr: "unknown action"},
		{name: "invalid channel", action: "push", channel: "AXIS_9", wantErr: "invalid channel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gamecontrol.New(gamecontrol.Options{})
			before := g.AnalogMappings() + g.BinaryMappings() + g.FlycamMappings()

			err := setMapping(g, tt.action, tt.channel)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, before, g.AnalogMappings()+g.BinaryMappings()+g.FlycamMappings())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.ChannelByAction(tt.action).LocalName())
		})
	}
}

func TestMappingsSetAndReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	set := &MappingsSet{SettingsFile: SettingsFile{Settings: path}, Action: "push", Channel: "AXIS_3-"}
	require.NoError(t, set.Run(logger))

	store, err := settings.Open(path)
	require.NoError(t, err)
	assert.Contains(t, store.LoadString(gamecontrol.SettingAnalogMappings), "push:AXIS_3-")

	bad := &MappingsSet{SettingsFile: SettingsFile{Settings: path}, Action: "stop", Channel: "AXIS_1+"}
	require.Error(t, bad.Run(logger))

	reset := &MappingsReset{SettingsFile: SettingsFile{Settings: path}}
	require.NoError(t, reset.Run(logger))

	store, err = settings.Open(path)
	require.NoError(t, err)
	assert.Contains(t, store.LoadString(gamecontrol.SettingAnalogMappings), "push:AXIS_1+")
	assert.Contains(t, store.LoadString(gamecontrol.SettingBinaryMappings), "stop:BUTTON_7")
}

func TestWriteMappings(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeMappings(&out, gamecontrol.New(gamecontrol.Options{})))
	assert.Contains(t, out.String(), "analog: push:AXIS_1+")
	assert.Contains(t, out.String(), "binary: toggle_run:BUTTON_9")
	assert.Contains(t, out.String(), "flycam: advance:AXIS_1+")
}

func TestWriteCandidate(t *testing.T) {
	g := gamecontrol.New(gamecontrol.Options{})

	var out bytes.Buffer
	require.NoError(t, writeCandidate(&out, g, "stop", "button_3"))
	assert.Contains(t, out.String(), "stop:BUTTON_3")
	assert.Contains(t, out.String(), "push:AXIS_1+")
	assert.Equal(t, "BUTTON_7", g.ChannelByAction("stop").LocalName(), "dry run must not touch the map")

	out.Reset()
	require.NoError(t, writeCandidate(&out, g, "zoom", "AXIS_4+"))
	assert.Contains(t, out.String(), "zoom:AXIS_4+")
}

func TestLogUpdate(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: log.LevelTrace}))

	logUpdate(logger, transport.Update{
		Peer:       "127.0.0.1:5000",
		Packet:     &transport.Packet{Seq: 1},
		Pressed:    []gamecontrol.InputChannel{gamecontrol.ButtonChannel(gamecontrol.ButtonA)},
		Released:   []gamecontrol.InputChannel{gamecontrol.ButtonChannel(gamecontrol.ButtonB)},
		Axes:       []transport.AxisChange{{Index: gamecontrol.AxisRightX, Value: 1000}},
		NewSession: true,
	})
	s := out.String()
	assert.Contains(t, s, "Button down")
	assert.Contains(t, s, "GAME_CONTROL_BUTTON_A")
	assert.Contains(t, s, "Button up")
	assert.Contains(t, s, "GAME_CONTROL_BUTTON_B")
	assert.Contains(t, s, "GAME_CONTROL_AXIS_RIGHTX")

	out.Reset()
	logUpdate(logger, transport.Update{Peer: "p", Packet: &transport.Packet{Seq: 2}, Resend: true})
	assert.Contains(t, out.String(), "Resend")
	assert.NotContains(t, out.String(), "Button")
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "run.json")

	c := &ConfigInit{Command: "run", Format: "json", Output: dest}
	require.NoError(t, c.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var root map[string]any
	require.NoError(t, json.Unmarshal(data, &root))

	assert.Equal(t, "16ms", root["interval"])
	assert.Contains(t, root, "db")
	assert.Contains(t, root, "settings")
	send, ok := root["send"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1:13000", send["addr"])
	apiCfg, ok := root["api"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "localhost:3243", apiCfg["addr"])
	assert.Equal(t, "5s", apiCfg["connectionTimeout"])

	require.Error(t, c.Run(), "existing file without --force")
	c.Force = true
	require.NoError(t, c.Run())

	listen := &ConfigInit{Command: "listen", Format: "yaml", Output: filepath.Join(dir, "listen.yaml")}
	require.NoError(t, listen.Run())
	data, err = os.ReadFile(listen.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), ":13000")
	assert.Contains(t, string(data), "maxSessions: 16")
}

func TestConfigInitSettings(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "settings.toml")
	c := &ConfigInit{Command: "settings", Format: "toml", Output: dest}
	require.NoError(t, c.Run())

	store, err := settings.Open(dest)
	require.NoError(t, err)
	assert.Contains(t, store.LoadString(gamecontrol.SettingAnalogMappings), "push:AXIS_1+")
	assert.NotEmpty(t, store.LoadString(gamecontrol.SettingBinaryMappings))
	assert.NotEmpty(t, store.LoadString(gamecontrol.SettingFlycamMappings))

	require.NoError(t, os.WriteFile(dest, []byte("not = [toml"), 0o644))
	require.Error(t, c.Run(), "existing file without --force")
	c.Force = true
	require.NoError(t, c.Run(), "force replaces even an unreadable file")
	_, err = settings.Open(dest)
	require.NoError(t, err)
}

func TestStartLoopSavesOnShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	src := gcTesting.NewMockSource()
	r := &Run{
		SettingsFile: SettingsFile{Settings: path},
		Interval:     time.Millisecond,
	}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, r.StartLoop(ctx, logger, log.NewRaw(nil), src))

	assert.True(t, src.IsClosed())
	store, err := settings.Open(path)
	require.NoError(t, err)
	assert.Contains(t, store.LoadString(gamecontrol.SettingAnalogMappings), "push:AXIS_1+")
}

func TestLoadAPIPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", keyFileName)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	pwd, err := loadAPIPassword(path, logger)
	require.NoError(t, err)
	assert.Len(t, pwd, 16)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pwd, string(data))

	again, err := loadAPIPassword(path, logger)
	require.NoError(t, err)
	assert.Equal(t, pwd, again, "existing key file is reused")

	require.NoError(t, os.WriteFile(path, []byte("  hunter2\n"), 0o600))
	edited, err := loadAPIPassword(path, logger)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", edited)
}

func TestStartLoopAnnouncesSenderOnce(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))
	r := &Run{
		SettingsFile: SettingsFile{Settings: filepath.Join(t.TempDir(), "settings.json")},
		Interval:     time.Millisecond,
		SendConfig:   transport.SenderConfig{Addr: "127.0.0.1:13999"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.NoError(t, r.StartLoop(ctx, logger, log.NewRaw(nil), gcTesting.NewMockSource()))

	assert.Equal(t, 1, strings.Count(out.String(), "Sending controller state"))
}
