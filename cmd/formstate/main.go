package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zoobzio/capitan"

	"github.com/five82/formstate/internal/app"
)

// valueFlags collects repeated -set name=value flags.
type valueFlags []string

func (v *valueFlags) String() string { return strings.Join(*v, ",") }

func (v *valueFlags) Set(s string) error {
	*v = append(*v, s)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var values valueFlags
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	submit := flag.Bool("submit", false, "submit the form once and exit instead of starting the UI")
	logLines := flag.Int("logs", 0, "print the last N log lines and exit")
	flag.Var(&values, "set", "name=value override for -submit (repeatable)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: formstate [flags] [form.toml|form.yaml|form.json]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer capitan.Shutdown()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		FormPath:   flag.Arg(0),
		Submit:     *submit,
		Values:     values,
		Logs:       *logLines,
	}

	if err := app.Run(ctx, opts); err != nil {
		if errors.Is(err, app.ErrNoForm) {
			flag.Usage()
		}
		fmt.Fprintf(os.Stderr, "formstate: %v\n", err)
		return 1
	}
	return 0
}
