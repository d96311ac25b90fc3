package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/configpaths"
	"github.com/Alia5/gamecontrol/internal/settings"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit writes a starter file: the flags of the run or listen command
// with their defaults, or a settings file holding the default flags and
// action mappings.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Template to generate: run, listen or settings" enum:"run,listen,settings"`
	Format  string `help:"Output format; the settings template follows the output extension" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to <command>.<format> in the current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// commandFlags are the kong commands whose flags can be templated.
var commandFlags = map[string]reflect.Type{
	"run":    reflect.TypeOf(Run{}),
	"listen": reflect.TypeOf(Listen{}),
}

var durationType = reflect.TypeOf(time.Duration(0))

func (c *ConfigInit) Run() error {
	format := strings.ToLower(c.Format)
	if format == "yml" {
		format = "yaml"
	}
	dest := c.Output
	if dest == "" {
		dest = c.Command + "." + configpaths.Ext(format)
	}
	if _, err := os.Stat(dest); err == nil {
		if !c.Force {
			return fmt.Errorf("%s exists; use --force to overwrite", dest)
		}
		if err := os.Remove(dest); err != nil {
			return err
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	if c.Command == "settings" {
		return writeSettingsTemplate(dest)
	}
	t, ok := commandFlags[c.Command]
	if !ok {
		return fmt.Errorf("unknown command %q", c.Command)
	}
	data, err := encodeTemplate(format, flagTree(t))
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// writeSettingsTemplate stores the default flags and mappings at dest, in
// the same layout the run command reads and writes.
func writeSettingsTemplate(dest string) error {
	store, err := settings.Open(dest)
	if err != nil {
		return err
	}
	g := gamecontrol.New(gamecontrol.Options{Settings: store})
	g.SaveToSettings()
	return store.Flush()
}

func encodeTemplate(format string, tree map[string]any) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(tree, "", "  ")
	case "yaml":
		return yaml.Marshal(tree)
	case "toml":
		return toml.Marshal(tree)
	}
	return nil, errors.New("unsupported format: " + format)
}

// flagTree mirrors the flag layout kong derives from t. Embedded structs
// with a prefix nest under it; without one their flags are inlined.
func flagTree(t reflect.Type) map[string]any {
	out := map[string]any{}
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Tag.Get("kong") == "-" || len(f.Index) > 1 {
			continue
		}
		if _, embedded := f.Tag.Lookup("embed"); embedded {
			sub := flagTree(f.Type)
			prefix := strings.TrimSuffix(f.Tag.Get("prefix"), ".")
			if prefix != "" {
				out[prefix] = sub
				continue
			}
			for k, v := range sub {
				out[k] = v
			}
			continue
		}
		if v := flagDefault(f.Type, f.Tag.Get("default")); v != nil {
			out[flagKey(f)] = v
		}
	}
	return out
}

func flagKey(f reflect.StructField) string {
	if name := f.Tag.Get("name"); name != "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(f.Name)
	return string(unicode.ToLower(r)) + f.Name[size:]
}

// flagDefault converts a default tag to the value a config file would
// carry. Unparsable defaults become the zero value.
func flagDefault(t reflect.Type, def string) any {
	if t == durationType {
		if def == "" {
			return "0s"
		}
		return def
	}
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := strconv.ParseUint(def, 10, 64)
		return n
	case reflect.Float32, reflect.Float64:
		f, _ := strconv.ParseFloat(def, 64)
		return f
	case reflect.Struct:
		return flagTree(t)
	}
	return nil
}
