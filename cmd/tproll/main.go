// Command tproll renders message templates and shows live output of the
// tproll logger.
//
// # Usage
//
//	tproll [flags] render TEMPLATE [ARG...]
//	tproll [flags] watch
//	tproll schema
//	tproll version
//
// Log output is configured with the --log-* flags or a YAML file passed to
// --config; flags given on the command line override the file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.jacobcolvin.com/tproll/log"
	"go.jacobcolvin.com/tproll/log/zapsink"
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// app holds state shared by all subcommands.
type app struct {
	logCfg  *log.Config
	core    *log.Core
	cfgPath string
	zap     bool
}

func newRootCmd() *cobra.Command {
	a := &app{logCfg: log.NewConfig()}

	rootCmd := &cobra.Command{
		Use:   "tproll",
		Short: "Render message templates with the tproll logger",
		Long: `tproll renders "{}" message templates the way the tproll logger does,
and can display live log traffic in a terminal UI.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	a.logCfg.RegisterFlags(flags)
	flags.StringVar(&a.cfgPath, "config", "", "YAML file with log settings")
	flags.BoolVar(&a.zap, "zap", false, "write logs as zap production JSON")

	completionErr := a.logCfg.RegisterCompletions(rootCmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	rootCmd.AddCommand(
		newRenderCmd(a),
		newWatchCmd(a),
		newSchemaCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// setup builds the [log.Core] for the command from flags and the optional
// config file.
func (a *app) setup(cmd *cobra.Command) error {
	if a.cfgPath != "" {
		err := a.logCfg.MergeFile(a.cfgPath, cmd.Flags())
		if err != nil {
			return err
		}
	}

	core, err := a.logCfg.NewCore(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if a.zap {
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		z := zap.New(zapcore.NewCore(enc, zapcore.AddSync(cmd.ErrOrStderr()), zapcore.DebugLevel))

		err = core.SetSink(zapsink.New(z))
		if err != nil {
			return err
		}
	}

	a.core = core

	return nil
}
