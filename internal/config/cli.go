package config

import "github.com/Alia5/gamecontrol/internal/cmd"

// LogConfig holds the global logging flags.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"GAMECONTROL_LOG_LEVEL"`
	File    string `help:"Also write the log to this file" type:"path" env:"GAMECONTROL_LOG_FILE"`
	RawFile string `help:"Write raw datagrams to this file" type:"path" env:"GAMECONTROL_LOG_RAW_FILE"`
}

// CLI is the root command.
type CLI struct {
	ConfigFile string    `name:"config" help:"Configuration file (.json, .yaml or .toml)" type:"path" env:"GAMECONTROL_CONFIG"`
	Log        LogConfig `embed:"" prefix:"log."`

	Run       cmd.Run           `cmd:"" help:"Read game controllers and send their state"`
	Listen    cmd.Listen        `cmd:"" help:"Receive controller state and log the changes"`
	Channels  cmd.Channels      `cmd:"" help:"List input channel names"`
	Mappings  cmd.Mappings      `cmd:"" help:"Show or edit the stored action mappings"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
}
