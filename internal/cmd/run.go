package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/configpaths"
	"github.com/Alia5/gamecontrol/internal/frame"
	"github.com/Alia5/gamecontrol/internal/log"
	"github.com/Alia5/gamecontrol/internal/monitor"
	"github.com/Alia5/gamecontrol/internal/sdl2"
	"github.com/Alia5/gamecontrol/internal/server/api"
	"github.com/Alia5/gamecontrol/internal/server/api/auth"
	"github.com/Alia5/gamecontrol/internal/server/api/handler"
	"github.com/Alia5/gamecontrol/internal/transport"
	"github.com/Alia5/gamecontrol/internal/util"
)

// Version is overridden at link time.
var Version = "dev"

// keyFileName holds the API password inside the config directory.
const keyFileName = "gamecontrol.key.txt"

type Run struct {
	SettingsFile `embed:""`

	MappingDB       string                 `name:"db" help:"SDL game controller mapping database (gamecontrollerdb.txt)" type:"path" env:"GAMECONTROL_MAPPING_DB"`
	Interval        time.Duration          `help:"Frame interval" default:"16ms" env:"GAMECONTROL_INTERVAL"`
	SendConfig      transport.SenderConfig `embed:"" prefix:"send."`
	ApiServerConfig api.ServerConfig       `embed:"" prefix:"api."`
	MonitorConfig   monitor.Config         `embed:"" prefix:"monitor."`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.StartLoop(ctx, logger, rawLogger, sdl2.New(logger))
}

// StartLoop blocks in the frame loop until ctx is done. Call it from the
// main goroutine; SDL event polling is bound to the thread that
// initialised it.
func (r *Run) StartLoop(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, source gamecontrol.Source) error {
	store, err := r.SettingsFile.open()
	if err != nil {
		return err
	}
	logger.Info("Starting gamecontrol", "version", Version, "settings", store.Path())

	var sender frame.Sender
	if r.SendConfig.Addr != "" {
		s, err := transport.NewSender(r.SendConfig, logger, rawLogger)
		if err != nil {
			return fmt.Errorf("failed to create sender: %w", err)
		}
		defer s.Close()
		sender = s
	} else {
		logger.Warn("No send address configured, controller state stays local")
	}

	gc := gamecontrol.New(gamecontrol.Options{
		MappingDBPath: r.MappingDB,
		Source:        source,
		Settings:      store,
		Logger:        logger,
	})

	opts := frame.Options{
		GameControl: gc,
		Sender:      sender,
		Interval:    r.Interval,
		Logger:      logger,
		Flush:       store.Flush,
	}

	var hub *monitor.Hub
	var broadcaster *monitor.Broadcaster
	if r.MonitorConfig.Addr != "" {
		hub = monitor.NewHub(logger)
		broadcaster = monitor.NewBroadcaster(hub)
		opts.Publish = broadcaster.Publish
	}

	loop := frame.New(opts)

	if r.ApiServerConfig.Addr != "" {
		if r.ApiServerConfig.Password == "" {
			dir, err := configpaths.DefaultConfigDir()
			if err != nil {
				gc.Shutdown()
				return fmt.Errorf("failed to resolve key file path: %w", err)
			}
			pwd, err := loadAPIPassword(filepath.Join(dir, keyFileName), logger)
			if err != nil {
				gc.Shutdown()
				return err
			}
			r.ApiServerConfig.Password = pwd
		}
		apiSrv, err := api.New(r.ApiServerConfig.Addr, r.ApiServerConfig, logger)
		if err != nil {
			gc.Shutdown()
			return err
		}
		handler.Register(apiSrv.Router(), loop, Version)
		if err := apiSrv.Start(); err != nil {
			logger.Error("failed to start API server", "error", err)
			gc.Shutdown()
			if util.IsRunFromGUI() {
				fmt.Println("Press any key to exit...")
				var b []byte = make([]byte, 1)
				_, _ = os.Stdin.Read(b)
			}
			return err
		}
		defer apiSrv.Close()
	}

	if hub != nil {
		mon := monitor.New(hub, broadcaster, loop, logger)
		if err := mon.Listen(r.MonitorConfig.Addr); err != nil {
			gc.Shutdown()
			return err
		}
		go hub.Run(ctx)
		go broadcaster.Run(ctx)
		go func() {
			if err := mon.Serve(); err != nil {
				logger.Error("monitor server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = mon.Shutdown(shutdownCtx)
		}()
	}

	if util.IsRunFromGUI() {
		go (func() {
			time.Sleep(250 * time.Millisecond)
			util.HideConsoleWindow()
		})()
	}

	return loop.Run(ctx)
}

// loadAPIPassword reads the API password from path, generating and storing
// a new one when the file does not exist yet.
func loadAPIPassword(path string, logger *slog.Logger) (string, error) {
	if data, err := os.ReadFile(path); err == nil {
		if pwd := strings.TrimSpace(string(data)); pwd != "" {
			return pwd, nil
		}
		logger.Warn("API key file is empty, generating a new password", "path", path)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read API key file: %w", err)
	}

	pwd, err := auth.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate API password: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(path, []byte(pwd), 0o600); err != nil {
		return "", fmt.Errorf("failed to write API key file: %w", err)
	}
	logger.Info("Generated API password", "path", path)
	logger.Info("API clients must send this password: " + pwd)
	logger.Info("Edit the key file to change it")
	return pwd, nil
}
