// Package cli provides command-line interface commands for nmapconv.
// The root command converts an nmap XML report into JSON; subcommands
// summarise a report and print build information.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anstrom/nmapconv/internal/config"
	"github.com/anstrom/nmapconv/internal/converter"
	"github.com/anstrom/nmapconv/internal/errors"
	"github.com/anstrom/nmapconv/internal/logging"
	"github.com/anstrom/nmapconv/internal/metrics"
	"github.com/anstrom/nmapconv/internal/report"
)

const envPrefix = "NMAPCONV"

// rootOptions holds the state shared by the root command and its subcommands.
type rootOptions struct {
	cfgFile string
	verbose bool

	v      *viper.Viper
	cfg    *config.Config
	logger *logging.Logger
}

// NewRootCmd creates the nmapconv root command.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "nmapconv XML_FILE JSON_FILE",
		Short: "Convert nmap XML reports to JSON",
		Long: `nmapconv converts an nmap XML report into a single JSON document with the
sections scan_info, hosts, stats and metadata. Every attribute the schema
names is present in the output; missing values become empty strings.`,
		Example: `  nmapconv scan.xml scan.json
  nmapconv scan.xml scan.json --pretty
  nmapconv summary scan.xml --format markdown`,
		Version:       getVersion(),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.initConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runConvert(cmd, args[0], args[1])
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().Bool("pretty", false, "indent the JSON output and sort keys")

	if err := opts.v.BindPFlag("output.pretty", cmd.Flags().Lookup("pretty")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind pretty flag: %v\n", err)
	}

	cmd.AddCommand(newSummaryCmd(opts))
	cmd.AddCommand(NewVersionCmd())

	return cmd, opts
}

// Execute runs the root command and exits with status 1 on failure.
// This is called by main.main().
func Execute() {
	cmd, opts := newRootCommand()
	err := cmd.Execute()
	opts.closeLogging()
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Diagnostic(err))
		os.Exit(1)
	}
}

// closeLogging releases the log file, if logging went to one.
func (o *rootOptions) closeLogging() {
	if o.logger == nil {
		return
	}
	if err := o.logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
	}
}

// initConfig reads in the config file and environment variables, then
// initializes structured logging.
func (o *rootOptions) initConfig(cmd *cobra.Command) error {
	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		o.v.AddConfigPath(".")
		o.v.SetConfigType("yaml")
		o.v.SetConfigName("config")
	}

	o.v.SetEnvPrefix(envPrefix)
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	o.v.AutomaticEnv()

	setConfigDefaults(o.v)

	if err := o.v.ReadInConfig(); err == nil && o.verbose {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", o.v.ConfigFileUsed())
	}

	cfg, err := loadConfig(o.v, o.verbose)
	if err != nil {
		return err
	}
	o.cfg = cfg

	return o.initLogging(cmd)
}

// setConfigDefaults mirrors config.Default so that environment variables
// override keys absent from the config file.
func setConfigDefaults(v *viper.Viper) {
	defaults := config.Default()

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.output", defaults.Logging.Output)

	v.SetDefault("output.pretty", defaults.Output.Pretty)
	v.SetDefault("output.indent", defaults.Output.Indent)
	v.SetDefault("output.file_mode", defaults.Output.FileMode)

	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	v.SetDefault("metrics.textfile", defaults.Metrics.Textfile)
}

// loadConfig validates the config file and applies viper's merged view of
// file, environment and flags on top of it.
func loadConfig(v *viper.Viper, verbose bool) (*config.Config, error) {
	cfg, err := config.Load(v.ConfigFileUsed())
	if err != nil {
		return nil, err
	}

	cfg.Logging.Level = v.GetString("logging.level")
	cfg.Logging.Format = v.GetString("logging.format")
	cfg.Logging.Output = v.GetString("logging.output")
	cfg.Output.Pretty = v.GetBool("output.pretty")
	cfg.Output.Indent = v.GetString("output.indent")
	cfg.Output.FileMode = v.GetUint32("output.file_mode")
	cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	cfg.Metrics.Textfile = v.GetString("metrics.textfile")

	if verbose {
		cfg.Logging.Level = string(logging.LevelDebug)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogging initializes structured logging based on configuration.
func (o *rootOptions) initLogging(cmd *cobra.Command) error {
	logConfig := o.cfg.LogConfig()

	var logger *logging.Logger
	switch logConfig.Output {
	case "stderr":
		logger = logging.NewWithWriter(logConfig, cmd.ErrOrStderr())
	default:
		var err error
		logger, err = logging.New(logConfig)
		if err != nil {
			logger = logging.NewWithWriter(logConfig, cmd.ErrOrStderr())
			logger.Warn("Failed to initialize logging, using stderr", "output", logConfig.Output, "error", err)
		}
	}

	logging.SetDefault(logger)
	o.logger = logger

	if o.verbose {
		logger.Info("Structured logging initialized", "level", logConfig.Level, "format", logConfig.Format)
	}
	return nil
}

// runConvert converts xmlPath into jsonPath and reports the outcome.
func (o *rootOptions) runConvert(cmd *cobra.Command, xmlPath, jsonPath string) error {
	var recorder *metrics.PrometheusMetrics
	convOpts := []converter.Option{
		converter.WithLogger(o.logger),
		converter.WithEncodeOptions(report.EncodeOptions{
			Pretty: o.cfg.Output.Pretty,
			Indent: o.cfg.Output.Indent,
		}),
		converter.WithFileMode(o.cfg.OutputFileMode()),
	}
	if o.cfg.Metrics.Enabled {
		recorder = metrics.NewPrometheusMetrics()
		convOpts = append(convOpts, converter.WithMetrics(recorder))
	}

	_, err := converter.New(convOpts...).ConvertFile(xmlPath, jsonPath)

	if recorder != nil {
		if werr := recorder.WriteTextfile(o.cfg.Metrics.Textfile); werr != nil {
			o.logger.Warn("Failed to write metrics textfile", "path", o.cfg.Metrics.Textfile, "error", werr)
		}
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Successfully converted %s to %s\n", xmlPath, jsonPath)
	return nil
}
