package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"aprswav/internal/app"
	"aprswav/internal/aprs"
	"aprswav/internal/metrics"
	"aprswav/internal/server"
)

// options collects flag values; only flags the user set override the config file
type options struct {
	configPath  string
	verbose     bool
	showVersion bool

	source      string
	destination string
	path        []string
	info        string
	latitude    float64
	longitude   float64
	comment     string
	symbolTable string
	symbolCode  string

	outputDir      string
	journalDir     string
	preamble       int
	baudRate       int
	sampleRate     int
	address        string
	port           int
	journalMaxDays int
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "aprswav",
		Short: "APRS AFSK audio encoder",
		Long: `Encodes APRS reports as AX.25 UI frames and renders them as
300 baud Bell 103 style AFSK audio in 16-bit mono WAV files.

Example usage:
  aprswav encode --source N0CALL --info '>hello'
  aprswav encode --lat 35.1234 --lon -80.6543 --comment 'Testing'
  aprswav serve --port 8073`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				app.ShowVersion()
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.Flags().BoolVar(&opts.showVersion, "version", false, "Show version information")

	rootCmd.AddCommand(newEncodeCmd(opts), newServeCmd(opts), newVersionCmd())
	return rootCmd
}

func newEncodeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode one report to a WAV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			application, err := app.NewApplication(config)
			if err != nil {
				return err
			}
			defer application.Close()

			info, err := reportInfo(cmd, opts, application)
			if err != nil {
				return err
			}

			filename, err := application.EncodeAndWrite(config.Source, config.Destination, config.Path, info)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filename)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.source, "source", "s", app.DefaultSource, "Source callsign")
	cmd.Flags().StringVarP(&opts.destination, "dest", "d", app.DefaultDestination, "Destination callsign")
	cmd.Flags().StringSliceVarP(&opts.path, "path", "p", app.DefaultPath, "Digipeater path (comma separated, empty for none)")
	cmd.Flags().StringVarP(&opts.info, "info", "i", "", "Information field, sent verbatim")
	cmd.Flags().Float64Var(&opts.latitude, "lat", 0, "Latitude in decimal degrees for a position report")
	cmd.Flags().Float64Var(&opts.longitude, "lon", 0, "Longitude in decimal degrees for a position report")
	cmd.Flags().StringVarP(&opts.comment, "comment", "c", "", "Position report comment")
	cmd.Flags().StringVar(&opts.symbolTable, "symbol-table", string(rune(aprs.DefaultSymbolTable)), "Position report symbol table")
	cmd.Flags().StringVar(&opts.symbolCode, "symbol-code", string(rune(aprs.DefaultSymbolCode)), "Position report symbol code")
	cmd.Flags().IntVar(&opts.preamble, "preamble", app.DefaultConfig().PreambleLength, "Number of leading flag bytes")
	cmd.Flags().IntVar(&opts.baudRate, "baud", app.DefaultConfig().Modem.BaudRate, "Baud rate")
	cmd.Flags().IntVar(&opts.sampleRate, "sample-rate", app.DefaultConfig().Modem.SampleRate, "Audio sample rate (Hz)")
	addOutputFlags(cmd, opts)

	return cmd
}

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP encode API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			m := metrics.NewMetrics()
			application, err := app.NewApplication(config, app.WithMetrics(m))
			if err != nil {
				return err
			}
			defer application.Close()
			logger := application.Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if j := application.Journal(); j != nil {
				if opts.journalMaxDays > 0 {
					if _, err := j.Cleanup(opts.journalMaxDays); err != nil {
						logger.WithError(err).Warn("Failed to clean up journal")
					}
				}
				go j.Start(ctx)
			}

			srv := server.NewHTTPServer(server.Config{
				Address:     config.HTTP.Address,
				Port:        config.HTTP.Port,
				Source:      config.Source,
				Destination: config.Destination,
				Path:        config.Path,
			}, application, logger, m)

			logger.WithField("version", app.Version).Info("Service starting")
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&opts.address, "address", "a", app.DefaultHTTPAddress, "Listen address")
	cmd.Flags().IntVarP(&opts.port, "port", "P", app.DefaultHTTPPort, "Listen port")
	cmd.Flags().IntVar(&opts.journalMaxDays, "journal-max-days", 0, "Remove journal files older than this many days at startup (0 keeps all)")
	addOutputFlags(cmd, opts)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.ShowVersion()
		},
	}
}

func addOutputFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", app.DefaultOutputDir, "Directory for WAV files")
	cmd.Flags().StringVarP(&opts.journalDir, "journal-dir", "j", "", "Directory for the CSV transmission journal (empty disables)")
}

// loadConfig reads the config file, if any, then applies the flags that were set
func loadConfig(cmd *cobra.Command, opts *options) (app.Config, error) {
	config := app.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := app.LoadConfig(opts.configPath)
		if err != nil {
			return config, err
		}
		config = loaded
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}
	set("source", func() { config.Source = opts.source })
	set("dest", func() { config.Destination = opts.destination })
	set("path", func() { config.Path = opts.path })
	set("preamble", func() { config.PreambleLength = opts.preamble })
	set("baud", func() { config.Modem.BaudRate = opts.baudRate })
	set("sample-rate", func() { config.Modem.SampleRate = opts.sampleRate })
	set("output-dir", func() { config.OutputDir = opts.outputDir })
	set("journal-dir", func() { config.JournalDir = opts.journalDir })
	set("address", func() { config.HTTP.Address = opts.address })
	set("port", func() { config.HTTP.Port = opts.port })
	config.Verbose = opts.verbose

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// reportInfo returns --info, or builds a position report from --lat/--lon
func reportInfo(cmd *cobra.Command, opts *options, application *app.Application) (string, error) {
	flags := cmd.Flags()
	position := flags.Changed("lat") || flags.Changed("lon")

	switch {
	case position && opts.info != "":
		return "", fmt.Errorf("--info cannot be combined with --lat/--lon")
	case position:
		if len(opts.symbolTable) != 1 || len(opts.symbolCode) != 1 {
			return "", fmt.Errorf("symbol table and code must be single characters")
		}
		pos := aprs.LatLng(opts.latitude, opts.longitude)
		return application.PositionInfo(pos, opts.symbolTable[0], opts.symbolCode[0], opts.comment), nil
	case opts.info != "":
		return opts.info, nil
	default:
		return "", fmt.Errorf("one of --info or --lat/--lon is required")
	}
}
