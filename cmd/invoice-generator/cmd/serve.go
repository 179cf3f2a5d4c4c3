package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/internal/pipeline"
	"github.com/rezonia/invoice-generator/internal/server"
	"github.com/rezonia/invoice-generator/pkg/invoicegen"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for invoice generation.

The API provides endpoints for:
  - POST /api/v1/invoices          - Generate a hybrid document
  - POST /api/v1/invoices/preview  - Validate and compute totals
  - POST /api/v1/validate          - Check an existing document
  - GET  /health                   - Health check

Examples:
  # Start server on default port
  invoice-generator serve

  # Start on custom address in debug mode
  invoice-generator serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from config)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 2*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	profile, err := invoicegen.ParseProfile(cfg.Generator.Profile)
	if err != nil {
		return err
	}
	rates, err := parseRates(cfg.Generator.AllowedVATRates)
	if err != nil {
		return err
	}
	icc, err := cfg.Generator.ICCProfile()
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Config{
		Profile:         profile,
		AllowedVATRates: rates,
		Rounding:        invoicegen.RoundingPolicy(cfg.Generator.Rounding),
		CreatorTool:     cfg.Generator.CreatorTool,
		Producer:        cfg.Generator.Producer,
		AttachmentName:  cfg.Generator.AttachmentName,
		ICCProfile:      icc,
		StrictArchival:  cfg.Generator.StrictArchival,
		Logger:          log,
	})
	if err != nil {
		return err
	}

	addr := serverAddr
	if addr == "" {
		addr = cfg.HTTP.Addr()
	}

	srv := server.NewServer(&server.Config{
		Address:      addr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug || cfg.App.Env == "development",
	}, p, log)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	log.Info().
		Str("address", addr).
		Str("profile", cfg.Generator.Profile).
		Msg("starting server")

	return srv.Run()
}
