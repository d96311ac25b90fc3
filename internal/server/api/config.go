package api

import "time"

// ServerConfig represents the API part of the run command configuration.
type ServerConfig struct {
	Addr              string        `help:"API server listen address (disabled when empty)" default:"localhost:3243" env:"GAMECONTROL_API_ADDR"`
	ConnectionTimeout time.Duration `help:"Time a client has to send its request and read the response" default:"5s" env:"GAMECONTROL_API_CONNECTION_TIMEOUT"`
	Password          string        `help:"API password; read from or generated into the key file in the config directory when empty" env:"GAMECONTROL_API_PASSWORD"`
}
