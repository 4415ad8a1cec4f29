// Package cmd implements the winsize command line.
package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/drake/winsize/config"
	"github.com/drake/winsize/debug"
	"github.com/drake/winsize/internal/logging"
	"github.com/drake/winsize/platform"
	"github.com/drake/winsize/ratelimit"
	"github.com/drake/winsize/session"
	"github.com/drake/winsize/size"
	"github.com/drake/winsize/ui"
	"github.com/drake/winsize/ui/tui"
)

// Version info set by main package
var versionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

type rootOptions struct {
	configFile string
	once       bool
}

// NewRootCmd builds the winsize command tree. Each call uses its own viper
// instance so commands can be built repeatedly in tests.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Show the terminal size as it changes",
		Long: `winsize reports the terminal width and height and updates the display
as the terminal is resized, limiting updates with a throttle or debounce.

Lua scripts in ~/.config/winsize/init.lua and --script can react to resizes.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, v, opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/winsize/config.yaml)")
	flags.BoolVar(&opts.once, "once", false, "print the current size as WxH and exit")
	flags.String("policy", ratelimit.PolicyThrottle.String(), "rate limit policy: throttle or debounce")
	flags.Duration("interval", size.DefaultInterval, "rate limit interval")
	flags.String("ui", config.UITUI, "display mode: tui or console")
	flags.Bool("headless", false, "ignore the terminal and report 0x0")
	flags.Bool("debug", false, "debug logging and periodic stats")
	flags.StringSlice("script", nil, "Lua script to load after init.lua (repeatable)")

	// Bind flags to viper
	_ = v.BindPFlag("policy", flags.Lookup("policy"))
	_ = v.BindPFlag("interval", flags.Lookup("interval"))
	_ = v.BindPFlag("ui", flags.Lookup("ui"))
	_ = v.BindPFlag("headless", flags.Lookup("headless"))
	_ = v.BindPFlag("debug", flags.Lookup("debug"))
	_ = v.BindPFlag("scripts", flags.Lookup("script"))

	root.AddCommand(newVersionCmd())
	return root
}

func runRoot(cmd *cobra.Command, v *viper.Viper, opts *rootOptions) error {
	cfg, err := config.Load(v, opts.configFile)
	if err != nil {
		return err
	}
	cfg.Debug = cfg.Debug || debug.Enabled()

	if opts.once {
		return printOnce(cmd.OutOrStdout(), cfg)
	}

	interactive := isatty.IsTerminal(os.Stdout.Fd())

	var (
		display ui.UI
		logger  zerolog.Logger
	)
	if cfg.UI == config.UITUI && interactive && !cfg.Headless {
		l, f, err := logging.OpenFile(cfg.LogFile, cfg.Debug)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; logging disabled\n", err)
		} else {
			defer f.Close()
		}
		logger = l
		display = tui.NewBubbleTeaUI(caption(cfg))
	} else {
		logger = logging.New(cmd.ErrOrStderr(), cfg.Debug)
		display = ui.NewConsoleUI(cmd.OutOrStdout())
	}

	s := session.New(display, newPlatform(cfg, logger), session.Config{
		Policy:   cfg.RatePolicy(),
		Interval: cfg.Interval,
		InitFile: config.InitFile(),
		Scripts:  cfg.Scripts,
		Watch:    cfg.Watch,
	}, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		s.Quit()
	}()

	debug.NewMonitor(s, cfg.DebugInterval, cfg.Debug, logger).Start(ctx)

	logger.Debug().
		Str("policy", cfg.Policy).
		Dur("interval", cfg.Interval).
		Str("ui", cfg.UI).
		Bool("headless", cfg.Headless).
		Msg("starting")

	if err := s.Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

func newPlatform(cfg *config.Config, logger zerolog.Logger) session.PlatformFunc {
	return func(post platform.Poster) size.Platform {
		if cfg.Headless {
			return platform.Headless{}
		}
		return platform.NewTerminal(os.Stdout, post, logger)
	}
}

// printOnce activates an observer, prints its initial size and detaches.
func printOnce(w io.Writer, cfg *config.Config) error {
	p := newPlatform(cfg, zerolog.Nop())(func(func()) {})
	obs := size.NewObserver(p, size.SubscriberFunc(func(size.Dimensions) {}))
	obs.Activate()
	defer obs.Deactivate()

	_, err := fmt.Fprintln(w, obs.Size())
	return err
}

func caption(cfg *config.Config) string {
	return fmt.Sprintf("%s every %s", cfg.RatePolicy(), effectiveInterval(cfg.Interval))
}

func effectiveInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return size.DefaultInterval
	}
	return d
}
