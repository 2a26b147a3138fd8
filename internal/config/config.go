// Package config holds the command-line and config-file options.
//
// Options are parsed with kong; the same names are accepted from JSON, YAML
// and TOML config files found by ConfigCandidatePaths.
package config

import (
	"os"
	"strings"
	"time"
)

// EnvConfig names the environment variable holding a config file path.
const EnvConfig = "KBSHELL_CONFIG"

// Log configures the host logger.
type Log struct {
	Level string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error" env:"KBSHELL_LOG_LEVEL"`
	File  string `help:"Log file path; interactive backends log only here" env:"KBSHELL_LOG_FILE"`
}

// Shell configures the host runner and the console.
type Shell struct {
	Backend    string        `help:"Host backend: window, tty, screen or headless" default:"window" enum:"window,tty,screen,headless" env:"KBSHELL_BACKEND"`
	Hz         int           `help:"Tick rate of the host loop" default:"60" env:"KBSHELL_HZ"`
	Ticks      uint64        `help:"Stop after N host ticks (0 = run forever)" default:"0" env:"KBSHELL_TICKS"`
	Timeout    time.Duration `help:"Stop after this long (0 = run forever)" default:"0s" env:"KBSHELL_TIMEOUT"`
	StepBudget int           `help:"Kernel task steps per host tick" default:"64" env:"KBSHELL_STEP_BUDGET"`
	Prompt     string        `help:"Prompt printed after every line" default:"> " env:"KBSHELL_PROMPT"`
	Banner     string        `help:"Banner printed at startup" env:"KBSHELL_BANNER"`
}

// FindUserConfig returns the config file named by --config in args or by
// $KBSHELL_CONFIG.
func FindUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv(EnvConfig)
}
