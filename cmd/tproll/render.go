package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/tproll/log"
	"go.jacobcolvin.com/tproll/log/logrsink"
)

// Routes accepted by render --via.
const (
	viaLogger = "logger"
	viaSlog   = "slog"
	viaLogr   = "logr"
)

var errUnknownRoute = errors.New("unknown route")

type renderOptions struct {
	errMsg string
	level  string
	via    string
	name   string
}

func newRenderCmd(a *app) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render TEMPLATE [ARG...]",
		Short: "Log a template with arguments",
		Long: `render logs TEMPLATE through the configured logger. Each "{}" is
replaced by the next ARG and leftover ARGs are appended as " {a, b}".

With --via slog or --via logr the template is handed to the slog or logr
bridge instead; those treat it as literal text and ARGs as key/value pairs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.render(opts, args[0], args[1:])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.errMsg, "error", "", "append an error with this message as the last argument")
	flags.StringVar(&opts.level, "level", "info", fmt.Sprintf("level to log at, one of: %s", log.GetAllLevelStrings()))
	flags.StringVar(&opts.via, "via", viaLogger, fmt.Sprintf("logging API to use, one of: %s", []string{viaLogger, viaSlog, viaLogr}))
	flags.StringVar(&opts.name, "name", "render", "logger name")

	//nolint:errcheck // Flags are registered above.
	cmd.RegisterFlagCompletionFunc("level",
		cobra.FixedCompletions(log.GetAllLevelStrings(), cobra.ShellCompDirectiveNoFileComp))
	//nolint:errcheck // Flags are registered above.
	cmd.RegisterFlagCompletionFunc("via",
		cobra.FixedCompletions([]string{viaLogger, viaSlog, viaLogr}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (a *app) render(opts *renderOptions, template string, rawArgs []string) error {
	level, err := log.ParseLevel(opts.level)
	if err != nil {
		return fmt.Errorf("%w: %w", log.ErrInvalidArgument, err)
	}

	var thrown error
	if opts.errMsg != "" {
		thrown = errors.New(opts.errMsg)
	}

	logger := a.core.Logger(opts.name)

	switch opts.via {
	case viaLogger:
		args := toArgs(rawArgs)
		if thrown != nil {
			args = append(args, thrown)
		}

		logger.Emit(level, nil, template, args...)

	case viaSlog:
		args := toArgs(rawArgs)
		if thrown != nil {
			args = append(args, slog.Any("error", thrown))
		}

		slog.New(log.NewSlogHandler(logger)).Log(context.Background(), level.SlogLevel(), template, args...)

	case viaLogr:
		l := logrsink.New(logger)
		if thrown != nil {
			l.Error(thrown, template, toArgs(rawArgs)...)
		} else {
			l.V(logrVerbosity(level)).Info(template, toArgs(rawArgs)...)
		}

	default:
		return fmt.Errorf("%w: %w: %q", log.ErrInvalidArgument, errUnknownRoute, opts.via)
	}

	return nil
}

func toArgs(rawArgs []string) []any {
	args := make([]any, 0, len(rawArgs))
	for _, arg := range rawArgs {
		args = append(args, arg)
	}

	return args
}

// logrVerbosity returns the logr verbosity closest to level.
func logrVerbosity(level log.Level) int {
	switch level {
	case log.LevelTrace:
		return 2
	case log.LevelDebug:
		return 1
	default:
		return 0
	}
}
