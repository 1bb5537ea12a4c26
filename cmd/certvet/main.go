// Command certvet screens birth-certificate scans for authenticity signals.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/certvet/certvet/internal/config"
	"github.com/certvet/certvet/internal/imaging"
	"github.com/certvet/certvet/internal/ocr"
	"github.com/certvet/certvet/internal/server"
	"github.com/certvet/certvet/internal/store"
	"github.com/certvet/certvet/internal/verify"
	"github.com/certvet/certvet/internal/watch"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	verbose    bool
	flagAddr   string
	flagDB     string
	flagLang   string
	flagOutput string
	flagSave   bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "certvet",
	Short: "certvet - birth-certificate authenticity screening",
	Long: `certvet screens scanned birth certificates for authenticity signals.

Each scan is run through OCR (Tesseract), Canny edge profiling for seals and
signatures, Laplacian sharpness analysis for tampering artifacts, and ink hue
profiling. The findings are combined into a 0-10 confidence score with a
proceed / hold / reject recommendation.

Tesseract and its language data must be installed; run "certvet doctor" to
check the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr = flagAddr
		}
		if cmd.Flags().Changed("db") {
			cfg.DatabasePath = flagDB
		}
		if cmd.Flags().Changed("lang") {
			cfg.Language = flagLang
		}

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		if logger, err = zapCfg.Build(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP screening API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if info := ocr.Probe(); !info.Available {
			logger.Warn("OCR engine unavailable; uploads will fail until it is provisioned",
				zap.String("error", info.Error),
				zap.String("remedy", info.Remedy))
		}

		reports, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer reports.Close()

		engine := ocr.NewTesseract(cfg.Language)
		defer engine.Close()
		verifier := verify.New(engine, verify.DefaultOptions(), logger)

		srv := server.New(server.Config{
			Addr:           cfg.Addr,
			MaxUploadBytes: cfg.MaxUploadMB << 20,
		}, verifier, reports, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <image>",
	Short: "Screen a single scan and print its validation report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		img, err := imaging.NewImageCache().Load(path)
		if err != nil {
			return err
		}

		engine := ocr.NewTesseract(cfg.Language)
		defer engine.Close()
		verifier := verify.New(engine, verify.DefaultOptions(), logger)

		report, err := verifier.Verify(cmd.Context(), img, path)
		if err != nil {
			return err
		}

		if flagSave {
			reports, err := store.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer reports.Close()
			if err := reports.Save(cmd.Context(), report); err != nil {
				return err
			}
		}

		text := report.RenderText()
		if flagOutput != "" {
			return os.WriteFile(flagOutput, []byte(text), 0o644)
		}
		fmt.Print(text)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Screen every scan dropped into an inbox directory",
	Long: `Watches a directory for new jpg/jpeg/png files. Each new scan is screened,
its report is persisted, and a <name>.report.txt is written beside the scan.
Files already in the directory are processed once at startup.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.WatchDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			return fmt.Errorf("no inbox directory: pass one or set CERTVET_WATCH_DIR")
		}

		reports, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer reports.Close()

		engine := ocr.NewTesseract(cfg.Language)
		defer engine.Close()
		verifier := verify.New(engine, verify.DefaultOptions(), logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watch.New(dir, verifier, reports, logger).Run(ctx)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the OCR engine is provisioned",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := ocr.Probe()

		fmt.Printf("Tesseract version: %s\n", valueOr(info.Version, "not found"))
		fmt.Printf("Binary path:       %s\n", valueOr(info.BinaryPath, "not found"))
		if len(info.Languages) > 0 {
			fmt.Printf("Languages:         %v\n", info.Languages)
		}
		if info.Available {
			if !info.HasLanguage(cfg.Language) {
				fmt.Printf("\nWarning: configured language %q is not installed\n", cfg.Language)
			}
			fmt.Println("\nEnvironment OK.")
			return nil
		}

		fmt.Printf("\nProblem: %s\nRemedy:  %s\n", info.Error, info.Remedy)
		return fmt.Errorf("environment not ready")
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("certvet %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
	},
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", ":8080", "HTTP listen address")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "certvet.db", "SQLite report store path")
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", "eng", "Tesseract language code")

	verifyCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write the text report to a file")
	verifyCmd.Flags().BoolVar(&flagSave, "save", false, "persist the report to the store")

	rootCmd.AddCommand(serveCmd, verifyCmd, watchCmd, doctorCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
