package log

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/tproll/prettyprint"
)

// Color modes accepted by [Config].
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var (
	// ErrReadConfig indicates a configuration file could not be read or
	// decoded.
	ErrReadConfig = errors.New("read config")
	// ErrUnknownColorMode indicates an unrecognized colour mode string.
	ErrUnknownColorMode = errors.New("unknown color mode")
)

// Flags holds CLI flag names for log configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Level       string
	Format      string
	Color       string
	MaxElements string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds log configuration from CLI flags or a YAML file.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewCore] to create a [Core] for
// logging.
type Config struct {
	Level       string `json:"level,omitempty"       jsonschema:"minimum level: trace, debug, info, warn or error" yaml:"level"`
	Format      string `json:"format,omitempty"      jsonschema:"output format: simple, json, logfmt or text"      yaml:"format"`
	Color       string `json:"color,omitempty"       jsonschema:"colour mode for simple output: auto, always or never" yaml:"color"`
	Flags       Flags  `json:"-"                     yaml:"-"`
	MaxElements int    `json:"maxElements,omitempty" jsonschema:"collection elements printed before eliding the rest" yaml:"maxElements"`
}

// NewConfig returns a new [Config] with zero-value fields.
// Use [Config.RegisterFlags] to add CLI flags, or set values directly.
func NewConfig() *Config {
	f := Flags{
		Level:       "log-level",
		Format:      "log-format",
		Color:       "log-color",
		MaxElements: "log-max-elements",
	}

	return f.NewConfig()
}

// RegisterFlags adds logging flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, "info",
		fmt.Sprintf("log level, one of: %s", GetAllLevelStrings()))
	flags.StringVar(&c.Format, c.Flags.Format, string(FormatSimple),
		fmt.Sprintf("log format, one of: %s", GetAllFormatStrings()))
	flags.StringVar(&c.Color, c.Flags.Color, ColorAuto,
		fmt.Sprintf("log color, one of: %s", GetAllColorStrings()))
	flags.IntVar(&c.MaxElements, c.Flags.MaxElements, prettyprint.DefaultMaxElements,
		"collection elements printed per argument")
}

// RegisterCompletions registers shell completions for log flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Level,
		cobra.FixedCompletions(GetAllLevelStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering log-level completion: %w", err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Format,
		cobra.FixedCompletions(GetAllFormatStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering log-format completion: %w", err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Color,
		cobra.FixedCompletions(GetAllColorStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering log-color completion: %w", err)
	}

	return nil
}

// GetAllColorStrings returns the colour modes accepted by [Config].
func GetAllColorStrings() []string {
	return []string{ColorAuto, ColorAlways, ColorNever}
}

// LoadFile decodes the YAML file at path into c. Keys absent from the file
// leave the corresponding fields unchanged; unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // Config path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadConfig, err)
	}

	err = yaml.UnmarshalWithOptions(data, c, yaml.DisallowUnknownField())
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadConfig, path, err)
	}

	return nil
}

// MergeFile loads the YAML file at path like [Config.LoadFile], but keeps
// the values of flags that were set explicitly on flags, so the command
// line overrides the file.
func (c *Config) MergeFile(path string, flags *pflag.FlagSet) error {
	explicit := *c

	err := c.LoadFile(path)
	if err != nil {
		return err
	}

	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case c.Flags.Level:
			c.Level = explicit.Level
		case c.Flags.Format:
			c.Format = explicit.Format
		case c.Flags.Color:
			c.Color = explicit.Color
		case c.Flags.MaxElements:
			c.MaxElements = explicit.MaxElements
		}
	})

	return nil
}

// Schema returns the JSON Schema describing the YAML configuration file.
func Schema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[Config](nil)
	if err != nil {
		return nil, fmt.Errorf("generating config schema: %w", err)
	}

	return s, nil
}

// Validate checks that every field of c holds an accepted value. Empty
// fields are accepted and take their defaults.
func (c *Config) Validate() error {
	_, _, _, err := c.parse()
	return err
}

func (c *Config) parse() (Level, Format, []WriterOption, error) {
	lvl := LevelInfo
	logFmt := FormatSimple

	var (
		opts []WriterOption
		err  error
	)

	if c.Level != "" {
		lvl, err = ParseLevel(c.Level)
		if err != nil {
			return 0, "", nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}

	if c.Format != "" {
		logFmt, err = ParseFormat(c.Format)
		if err != nil {
			return 0, "", nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}

	switch c.Color {
	case "", ColorAuto:
	case ColorAlways:
		opts = append(opts, WithColor(true))
	case ColorNever:
		opts = append(opts, WithColor(false))
	default:
		return 0, "", nil, fmt.Errorf("%w: %w: %q", ErrInvalidArgument, ErrUnknownColorMode, c.Color)
	}

	if c.MaxElements < 0 {
		return 0, "", nil, fmt.Errorf("%w: max elements must not be negative, got %d",
			ErrInvalidArgument, c.MaxElements)
	}

	return lvl, logFmt, opts, nil
}

// NewCore creates a new [Core] that writes to w, using the values stored in
// c. Additional options are applied after those derived from c.
func (c *Config) NewCore(w io.Writer, opts ...CoreOption) (*Core, error) {
	lvl, logFmt, writerOpts, err := c.parse()
	if err != nil {
		return nil, err
	}

	sink, err := NewSink(w, logFmt, writerOpts...)
	if err != nil {
		return nil, err
	}

	printerOpts := []prettyprint.Option{prettyprint.WithModules(prettyprint.PathModule{})}
	if c.MaxElements > 0 {
		printerOpts = append(printerOpts, prettyprint.WithMaxElements(c.MaxElements))
	}

	coreOpts := append([]CoreOption{
		WithLevel(lvl),
		WithSink(sink),
		WithPrinter(prettyprint.New(printerOpts...)),
	}, opts...)

	return NewCore(coreOpts...), nil
}
