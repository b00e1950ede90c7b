package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xoelrdgz/logintel/internal/adapters/input"
	"github.com/xoelrdgz/logintel/internal/adapters/output"
	"github.com/xoelrdgz/logintel/internal/adapters/threatintel"
	"github.com/xoelrdgz/logintel/internal/app"
)

var (
	cfgFile   string
	logFile   string
	threatURL string
	noSummary bool

	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "logintel",
	Short: "Access log failed-login and threat intelligence correlation",
	Long: `LogIntel reads a web server access log once, flags IPs with repeated
failed logins, correlates every request against a threat intelligence
table and writes JSON, CSV and text reports.

Outputs:
  - failed_logins.json / log_analysis.txt: IPs with 5 or more 40x responses
  - log_analysis.csv: every parsed request
  - threat_ips.json: the fetched threat table
  - combined_security_data.json: failed logins plus matched threats`,
	SilenceUsage: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the analysis pipeline once",
	Long: `Parse the access log, fetch threat intelligence and write the reports.

Examples:
  logintel analyze
  logintel analyze --log /var/log/nginx/access.log
  logintel analyze --log ./access.log --threat-url http://127.0.0.1:8000/
  logintel analyze --threat-url file:///etc/logintel/malicious_ips.txt`,
	RunE: runAnalyze,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("LogIntel %s\n", Version)
		fmt.Printf("Commit:  %s\n", Commit)
		fmt.Printf("Built:   %s\n", BuildTime)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	analyzeCmd.Flags().StringVarP(&logFile, "log", "l", "", "access log to analyze")
	analyzeCmd.Flags().StringVar(&threatURL, "threat-url", "", "threat intelligence page or file:// list")
	analyzeCmd.Flags().BoolVar(&noSummary, "no-summary", false, "do not print the run summary")

	viper.BindPFlag("log.path", analyzeCmd.Flags().Lookup("log"))
	viper.BindPFlag("threat_intel.url", analyzeCmd.Flags().Lookup("threat-url"))

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/logintel")
	}

	app.SetDefaults(viper.GetViper(), Version)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn().Err(err).Msg("Error reading config file")
		}
	}

	viper.SetEnvPrefix("LOGINTEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	setupLogging(viper.GetString("logging.level"))

	cfg, err := app.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging.Level)

	runID := uuid.NewString()
	log.Logger = log.With().Str("run_id", runID).Logger()

	log.Info().
		Str("source", cfg.Log.Path).
		Str("threat_intel", cfg.ThreatIntel.URL).
		Str("version", Version).
		Msg("LogIntel started")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paths := output.ReportPaths{
		FailedLoginsJSON: cfg.Outputs.FailedLoginsJSON,
		FailedLoginsText: cfg.Outputs.FailedLoginsText,
		LogCSV:           cfg.Outputs.LogCSV,
		ThreatIPsJSON:    cfg.Outputs.ThreatIPsJSON,
		CombinedJSON:     cfg.Outputs.CombinedJSON,
	}

	metrics := output.NewRunMetrics("logintel")

	pipeline := app.NewPipeline(app.PipelineConfig{
		LogPath: cfg.Log.Path,
		Reader:  input.NewFileReader(input.NewAccessLogParser()),
		Source: threatintel.NewSource(threatintel.SourceConfig{
			URL:       cfg.ThreatIntel.URL,
			Timeout:   cfg.ThreatIntel.Timeout,
			UserAgent: cfg.ThreatIntel.UserAgent,
		}),
		Writer:   output.NewFileReportWriter(paths),
		Observer: metrics,
	})

	summary := pipeline.Run(ctx)
	metrics.ObserveRunEnd(summary.Duration, time.Now())

	exportCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hostname, _ := os.Hostname()
	metrics.Export(exportCtx, output.MetricsExportConfig{
		Textfile:       cfg.Metrics.Textfile,
		PushgatewayURL: cfg.Metrics.PushgatewayURL,
		Job:            cfg.Metrics.Job,
		Instance:       hostname,
	})

	if !noSummary {
		if err := output.NewConsoleSummary(os.Stdout, paths, 10).Print(summary); err != nil {
			log.Debug().Err(err).Msg("Failed to print summary")
		}
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
