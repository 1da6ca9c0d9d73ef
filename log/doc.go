// Package log provides a lightweight, thread-safe logger that renders
// message templates into single lines of text.
//
// A [Logger] takes a template with "{}" placeholders and positional
// arguments, renders them with [prettyprint], and hands the resulting
// [Record] to the [Sink] of its [Core]. Errors among the trailing arguments
// are extracted into [Record.Err] rather than printed inline:
//
//	logger := log.New("db")
//	logger.Info("opened {} in {}", path, elapsed)
//	logger.Warn("retrying", attempt, err) // "retrying {3}", Err = err
//	logger.Error("query failed", err)     // "query failed", Err = err
//
// See [Render] for the template syntax.
//
// Levels range from [LevelTrace] to [LevelError]; [LevelLog] is always
// enabled and reports events of the logging system itself, such as level
// changes. Calls below the level of the [Core] return without locking or
// rendering.
//
// The process-wide [Default] core writes to stderr. Use [NewCore] or
// [Config] to build others:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	core, err := cfg.NewCore(os.Stderr)
//	logger := core.Logger("app")
//
// Sinks include [WriterSink] for plain lines, [SlogSink] for any
// [slog.Handler] (see [NewHandler] for JSON, logfmt and styled text), and
// [Publisher], which fans records out to subscribers; this is useful for
// displaying logs inside a Bubble Tea TUI:
//
//	pub := log.NewPublisher()
//	core := log.NewCore(log.WithSink(pub))
//
//	sub := pub.Subscribe()
//	go func() {
//	    for entry := range sub.C() {
//	        // Deliver entry to the TUI.
//	    }
//	}()
//
// Combine sinks with [MultiSink]. In the other direction,
// [NewSlogHandler] routes [log/slog] records into a [Logger].
package log
