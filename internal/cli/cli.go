package cli

import (
	"errors"
	"io"
	"log/slog"

	"github.com/jessevdk/go-flags"
	"github.com/specialistvlad/heartbeat/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "heartbeat"
	parser.Usage = "[OPTIONS] [PATH...]"
	parser.LongDescription = "Heartbeat pumps queued callbacks on a host run loop and renders a wallet history driven by it."

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(output)
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths := append(append([]string(nil), opts.Config...), opts.Args.Paths...)

	config, err := app.NewConfig(app.Config{
		ConfigPaths:     paths,
		LogFormat:       opts.LogFormat,
		LogLevel:        opts.LogLevel,
		HealthcheckPort: opts.HealthcheckPort,
		Period:          opts.Period,
		Yield:           opts.Yield,
		FeedURL:         opts.FeedURL,
		RunFor:          opts.RunFor,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config_paths", paths)
	return config, false, nil
}
