package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Command groups config-related subcommands.
type Command struct {
	Init Init `cmd:"" help:"Write a configuration template with the default values"`
}

// Init scaffolds a configuration file.
type Init struct {
	Format string `help:"Output format" enum:"json,yaml,toml" default:"yaml"`
	Output string `help:"Destination file path (defaults to ./kbshell.<format>)"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

// Run writes the template.
func (c *Init) Run() error {
	format := normalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	dest := c.Output
	if dest == "" {
		dest = appName + "." + format
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := EnsureDir(dest); err != nil {
		return err
	}

	data, err := Template(format)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// Template renders the default options in the given format.
func Template(format string) ([]byte, error) {
	root := buildMap(reflect.TypeOf(Shell{}))
	root["log"] = buildMap(reflect.TypeOf(Log{}))

	switch normalizeFormat(format) {
	case "json":
		return json.MarshalIndent(root, "", "  ")
	case "yaml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

// flagName converts a field name to kong's flag spelling (StepBudget -> step-budget).
func flagName(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func buildMap(t reflect.Type) map[string]any {
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		if v := defaultValue(f.Type, f.Tag.Get("default")); v != nil {
			out[flagName(f.Name)] = v
		}
	}
	return out
}

func defaultValue(t reflect.Type, def string) any {
	if t.PkgPath() == "time" && t.Name() == "Duration" {
		if def != "" {
			return def
		}
		return "0s"
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
		n, _ := strconv.ParseUint(def, 10, 63)
		return int64(n)
	default:
		return nil
	}
}
