// Command kbreplay feeds YAML key-event scripts through the console and
// prints what the console writes.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"kbshell/app"
	"kbshell/hal"
	"kbshell/internal/config"
	"kbshell/internal/log"
	"kbshell/internal/script"
	"kbshell/sys/kernel"
	"kbshell/sys/proto"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Scripts []string   `arg:"" type:"existingfile" help:"YAML event scripts"`
	Prompt  string     `help:"Prompt printed after every line" default:"> "`
	Banner  string     `help:"Banner printed before the first event"`
	Check   bool       `help:"Fail when the output differs from the script's expect field"`
	Quiet   bool       `short:"q" help:"Do not print the console output"`
	Log     config.Log `embed:"" prefix:"log."`

	out io.Writer
}

func (c *CLI) Run(logger *slog.Logger) error {
	w := c.out
	if w == nil {
		w = os.Stdout
	}

	failed := 0
	for _, path := range c.Scripts {
		s, err := script.LoadFile(path)
		if err != nil {
			return err
		}
		got, err := replay(s, app.Config{Prompt: c.Prompt, Banner: c.Banner}, logger)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if !c.Quiet {
			if len(c.Scripts) > 1 {
				fmt.Fprintf(w, "== %s\n", path)
			}
			fmt.Fprint(w, got)
			fmt.Fprintln(w)
		}
		if c.Check && s.Expect != nil && *s.Expect != got {
			logger.Error("output mismatch", "script", path, "want", *s.Expect, "got", got)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scripts did not match", failed, len(c.Scripts))
	}
	return nil
}

// feeder pushes stream records as fast as the console drains them.
type feeder struct {
	to      kernel.Capability
	records [][]byte
}

func (f *feeder) Step(ctx *kernel.Context) {
	for len(f.records) > 0 {
		res := ctx.SendToCapResult(f.to, uint16(proto.MsgKeyEvent), f.records[0])
		if res == kernel.SendErrQueueFull {
			return
		}
		f.records = f.records[1:]
	}
	ctx.BlockOnTick()
}

type bufferSerial struct{ bytes.Buffer }

func (s *bufferSerial) Read(p []byte) (int, error) { return 0, hal.ErrNotImplemented }

// replayHAL has no devices besides a logger and a serial console.
type replayHAL struct {
	log    hal.Logger
	serial *bufferSerial
}

func (h replayHAL) Logger() hal.Logger   { return h.log }
func (h replayHAL) Display() hal.Display { return nil }
func (h replayHAL) Input() hal.Input     { return nil }
func (h replayHAL) Serial() hal.Serial   { return h.serial }
func (h replayHAL) Time() hal.Time       { return nil }

// replay runs the script on a fresh system and returns the console output.
func replay(s *script.Script, cfg app.Config, logger *slog.Logger) (string, error) {
	records, err := s.Records()
	if err != nil {
		return "", err
	}

	h := replayHAL{log: hal.NewLogger(logger), serial: &bufferSerial{}}
	sys := app.Boot(h, cfg)
	f := &feeder{to: sys.StreamCap(), records: records}
	sys.AddTask(f)

	// Every frame drains at least one full mailbox; the extra frames flush
	// the tail of the output.
	frames := len(records) + 8
	for i := 0; i < frames; i++ {
		if err := sys.Step(); err != nil {
			return "", err
		}
	}
	if len(f.records) > 0 {
		return "", fmt.Errorf("%d records not delivered", len(f.records))
	}
	return h.serial.String(), nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("kbreplay"),
		kong.Description("Replay key-event scripts through the console"),
		kong.UsageOnError(),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File, log.Console{Err: os.Stderr})
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
