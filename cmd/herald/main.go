// Package main is an interactive terminal demo for the herald view
// engine. It wires the full pipeline onto a tcell host: configuration
// store, backend registry, and the popup, split, and virtualtext
// backends. Keys push messages through named views so routing,
// caching, and fallback behavior can be exercised by hand.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/notkaj/herald/internal/backend/popup"
	"github.com/notkaj/herald/internal/backend/split"
	"github.com/notkaj/herald/internal/backend/virtualtext"
	"github.com/notkaj/herald/internal/config"
	"github.com/notkaj/herald/internal/host/termhost"
	"github.com/notkaj/herald/internal/logging"
	"github.com/notkaj/herald/internal/message"
	"github.com/notkaj/herald/internal/registry"
	"github.com/notkaj/herald/internal/render"
	"github.com/notkaj/herald/internal/view"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

type cliOptions struct {
	configPath string
	logLevel   string
	watch      bool
}

func run() int {
	opts := parseFlags()

	if err := logging.Initialize(opts.logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		return 1
	}
	defer logging.Sync()

	store := config.NewStore()
	if opts.configPath != "" {
		if err := store.Load(opts.configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
			return 1
		}
	}
	store.Apply(config.LoadEnv())

	if opts.watch && opts.configPath != "" {
		watcher, err := config.Watch(store, opts.configPath, 200*time.Millisecond)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: watching config: %v\n", err)
			return 1
		}
		defer watcher.Close()
	}

	term, err := termhost.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := term.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer term.Shutdown()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		term.Shutdown()
		os.Exit(0)
	}()

	adapter := render.New()
	reg := registry.New(term, store)
	reg.Register("popup", popup.Factory(adapter))
	reg.Register("split", split.Factory(adapter))
	reg.Register("virtualtext", virtualtext.Factory(adapter))

	return eventLoop(term, reg)
}

func eventLoop(term *termhost.Term, reg *registry.Registry) int {
	counter := 0

	push := func(viewName string, level message.Level, text string) {
		counter++
		v := reg.GetView(viewName, nil)
		if v == nil {
			logging.Warn("no backend available for view")
			return
		}
		v.PushMessage(message.NewText(level, fmt.Sprintf("%s #%d", text, counter)), view.PushOpts{Format: true})
		v.Display()
	}

	dismissAll := func() {
		for _, name := range []string{"notify", "messages"} {
			if v := reg.GetView(name, nil); v != nil {
				v.Dismiss()
			}
		}
	}

	for {
		ev := term.Screen().PollEvent()
		switch e := ev.(type) {
		case *tcell.EventKey:
			switch {
			case e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC || e.Rune() == 'q':
				return 0
			case e.Rune() == 'i':
				push("notify", message.LevelInfo, "all quiet on the wire")
			case e.Rune() == 'w':
				push("notify", message.LevelWarn, "disk usage above threshold")
			case e.Rune() == 'e':
				push("notify", message.LevelError, "connection to upstream lost")
			case e.Rune() == 'm':
				push("messages", message.LevelInfo, "history line")
			case e.Rune() == 'd':
				dismissAll()
			}
		case *tcell.EventResize:
			term.Screen().Sync()
		case nil:
			// Screen finalized.
			return 0
		}
		term.Tick()
	}
}

func parseFlags() cliOptions {
	var opts cliOptions
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .lua, or .json)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.watch, "watch", false, "Reload the configuration file on change")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Herald - message view engine demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: herald [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  i/w/e  push an info/warn/error notification\n")
		fmt.Fprintf(os.Stderr, "  m      append to the messages split\n")
		fmt.Fprintf(os.Stderr, "  d      dismiss everything\n")
		fmt.Fprintf(os.Stderr, "  q      quit\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("herald %s (%s)\n", version, commit)
		os.Exit(0)
	}

	if opts.logLevel != "" {
		switch opts.logLevel {
		case "debug", "info", "warn", "error":
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", opts.logLevel)
			os.Exit(1)
		}
	}

	return opts
}
