package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"
	"github.com/mark3labs/notekit/internal/app"
	"github.com/mark3labs/notekit/internal/config"
	"github.com/mark3labs/notekit/internal/notes"
	"github.com/mark3labs/notekit/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	configFile string
	promptFlag string
	quietFlag  bool
)

// rootCmd represents the base command when called without any subcommands.
// Without a prompt it opens the note form in the terminal; with --prompt or
// piped stdin it sends a single note and prints the outcome.
var rootCmd = &cobra.Command{
	Use:   "notekit",
	Short: "Turn a prompt into a Notion note",
	Long: `notekit sends a free-form prompt to a note-creation service and shows
what happened: the service's result on success, or an error line on failure.

Examples:
  notekit
  notekit -p "Create a note summarizing today's design review"
  git log -1 --format=%B | notekit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNotekit(cmd.Context())
	},
}

// GetRootCommand returns the root command with the version set.
func GetRootCommand(v string) *cobra.Command {
	rootCmd.Version = v
	return rootCmd
}

// InitConfig registers defaults, the environment and the config file on the
// global viper instance. Called by cobra before command execution.
func InitConfig() {
	config.SetDefaults(viper.GetViper())
	if err := config.Init(viper.GetViper(), configFile); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is ./.notekit.yml or $HOME/.notekit.yml)")
	flags.StringP(config.KeyEndpoint, "u", config.DefaultEndpoint, "note-creation endpoint")
	flags.Duration(config.KeyTimeout, 0, "request timeout (0 for no limit)")
	flags.Bool(config.KeyDebug, false, "enable debug logging")
	flags.String(config.KeyLogFile, "", "write logs to this file")

	rootCmd.Flags().StringVarP(&promptFlag, "prompt", "p", "", "send a single prompt and print the outcome")
	rootCmd.Flags().BoolVar(&quietFlag, "quiet", false, "hide the progress spinner (only with --prompt or piped input)")

	// Bind flags to viper for config file support
	for _, k := range []string{config.KeyEndpoint, config.KeyTimeout, config.KeyDebug, config.KeyLogFile} {
		_ = viper.BindPFlag(k, flags.Lookup(k))
	}

	rootCmd.AddCommand(configCmd)
}

func runNotekit(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	oneShot := promptFlag != "" || !term.IsTerminal(int(os.Stdin.Fd()))
	if quietFlag && !oneShot {
		return fmt.Errorf("--quiet flag can only be used with --prompt/-p or piped input")
	}

	logger, closeLog, err := newLogger(cfg, oneShot)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := notes.NewClient(notes.ClientOptions{
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.Timeout,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	appInstance := app.New(app.Options{Creator: client, Logger: logger})
	defer appInstance.Close()

	logger.Debug("starting", "endpoint", client.Endpoint(), "config", cfg.Source, "one_shot", oneShot)

	if oneShot {
		failed, err := runOneShot(ctx, appInstance, oneShotIO{
			prompt: promptFlag,
			stdin:  os.Stdin,
			stdout: os.Stdout,
			stderr: os.Stderr,
			quiet:  quietFlag,
		})
		if err != nil {
			return err
		}
		if failed {
			appInstance.Close()
			closeLog()
			os.Exit(1)
		}
		return nil
	}

	return runInteractive(appInstance)
}

// oneShotIO holds the inputs and outputs of a one-shot run. An empty prompt
// is read from stdin.
type oneShotIO struct {
	prompt string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	quiet  bool
}

// runOneShot sends a prompt once and prints the outcome line to stdout. It
// reports whether the outcome was a failure; err is only set when nothing was
// sent or the request was interrupted.
func runOneShot(ctx context.Context, appInstance *app.App, sio oneShotIO) (bool, error) {
	prompt := sio.prompt
	if prompt == "" {
		data, err := io.ReadAll(sio.stdin)
		if err != nil {
			return false, fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		prompt = string(data)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var out app.Outcome
	run := func() error {
		var err error
		out, err = appInstance.RunOnce(ctx, prompt)
		return err
	}

	var err error
	if sio.quiet {
		err = run()
	} else {
		err = ui.ShowSpinner(sio.stderr, run)
	}
	if errors.Is(err, app.ErrEmptyPrompt) {
		return false, fmt.Errorf("nothing to send: %w", err)
	}
	if err != nil {
		return false, err
	}

	if err := ui.PrintOutcome(sio.stdout, out); err != nil {
		return false, err
	}
	return out.Failed, nil
}

// runInteractive starts the Bubble Tea form and blocks until the user quits.
func runInteractive(appInstance *app.App) error {
	// Determine terminal size; fall back gracefully.
	termWidth, termHeight, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth == 0 {
		termWidth = 80
		termHeight = 24
	}

	model := ui.NewAppModel(appInstance, ui.AppModelOptions{
		Width:  termWidth,
		Height: termHeight,
	})

	program := tea.NewProgram(model)
	_, runErr := program.Run()
	return runErr
}

// newLogger builds the process logger. Logs go to the configured file when
// there is one. Otherwise the TUI discards them, since the terminal belongs to
// the view, and one-shot mode writes debug logs to stderr.
func newLogger(cfg *config.Config, oneShot bool) (*log.Logger, func(), error) {
	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}

	var (
		w       io.Writer = io.Discard
		closeFn           = func() {}
	)
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case oneShot && cfg.Debug:
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "notekit",
	})
	return logger, closeFn, nil
}
