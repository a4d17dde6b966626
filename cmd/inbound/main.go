package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coldchain-labs/inbound/pkg/api"
	"github.com/coldchain-labs/inbound/pkg/backend"
	"github.com/coldchain-labs/inbound/pkg/client"
	"github.com/coldchain-labs/inbound/pkg/config"
	"github.com/coldchain-labs/inbound/pkg/events"
	"github.com/coldchain-labs/inbound/pkg/health"
	"github.com/coldchain-labs/inbound/pkg/log"
	"github.com/coldchain-labs/inbound/pkg/metrics"
	"github.com/coldchain-labs/inbound/pkg/pipeline"
	"github.com/coldchain-labs/inbound/pkg/submit"
	"github.com/coldchain-labs/inbound/pkg/types"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "inbound",
	Short: "Inbound order automation for Arcadia",
	Long: `Inbound reads shipment notification emails, extracts the order
lines they describe and keys each one into the Arcadia 3PL system by
driving the warehouse web UI through external automation scripts.

Run it as an MCP server for tool-calling clients, or invoke the
individual flows directly from the command line.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Inbound version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(createOrderCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(pipelineCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})
	return cfg, nil
}

func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Start the JSON-RPC/MCP server exposing the automation tools over
HTTP, along with health, metrics and event-stream endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		metrics.Register()

		broker := events.NewBroker()
		broker.Start()
		defer broker.Stop()

		b := backend.NewScriptBackend(backend.Options{
			Interpreter:     cfg.Interpreter,
			ExtractScript:   cfg.ExtractScript,
			OrderScript:     cfg.OrderScript,
			ProfileDir:      cfg.ProfileDir,
			APIKey:          cfg.APIKey,
			ArcadiaUsername: cfg.ArcadiaUsername,
			ArcadiaPassword: cfg.ArcadiaPassword,
			OrderTimeout:    cfg.OrderTimeout,
			ExtractTimeout:  cfg.ExtractTimeout,
		})
		orch := submit.NewOrchestrator(b, broker)
		pipe := pipeline.New(b, orch, broker, cfg.PipelineTimeout)

		checks := health.NewRegistry("inbound-mcp")
		checks.Register("extract_script", health.NewScriptChecker(cfg.ExtractScript))
		checks.Register("order_script", health.NewScriptChecker(cfg.OrderScript))
		checks.Register("interpreter", health.NewInterpreterChecker(cfg.Interpreter))
		checks.Register("automation_api_key", health.NewCredentialChecker(
			"AUTOMATION_API_KEY", func() string { return cfg.APIKey },
		))

		server := api.NewServer(cfg, b, orch, pipe, broker, checks)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil {
				errCh <- fmt.Errorf("server error: %v", err)
			}
		}()

		fmt.Printf("MCP server listening on %s (auth: %s)\n", cfg.ListenAddr, cfg.AuthMode)
		fmt.Println("Press Ctrl+C to stop.")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			fmt.Println("\nShutting down...")
		case err := <-errCh:
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown: %v", err)
		}

		fmt.Println("✓ Shutdown complete")
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract orders from the most recent inbound email",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		extraction, err := client.New(cfg).Extract(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("✓ Extracted %d order(s) from %q\n", len(extraction.Orders), extraction.EmailSubject)
		return printJSON(extraction)
	},
}

var createOrderCmd = &cobra.Command{
	Use:   "create-order",
	Short: "Create a single order in Arcadia",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		req := &types.OrderCreationRequest{}
		req.MasterBillNumber, _ = cmd.Flags().GetString("master-bill")
		req.ProductCode, _ = cmd.Flags().GetString("product-code")
		req.Quantity, _ = cmd.Flags().GetInt("quantity")
		req.Temperature, _ = cmd.Flags().GetString("temperature")
		req.SupplyingFacilityNumber, _ = cmd.Flags().GetString("facility")
		req.DeliveryDate, _ = cmd.Flags().GetString("delivery-date")
		req.DeliveryCompany, _ = cmd.Flags().GetString("delivery-company")
		req.Comments, _ = cmd.Flags().GetString("comments")

		result, err := client.New(cfg).CreateOrder(cmd.Context(), req)
		if err != nil {
			return err
		}

		if result.Status == types.OrderStatusFailed {
			fmt.Fprintf(os.Stderr, "Order creation failed: %s\n", result.Error)
			if err := printJSON(result); err != nil {
				return err
			}
			os.Exit(1)
		}

		fmt.Printf("✓ Order created: %s\n", result.ConfirmationID)
		return printJSON(result)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit [extraction.json]",
	Short: "Submit previously extracted orders to Arcadia",
	Long: `Submit every product line of an extraction result as individual
Arcadia orders. Reads the extraction JSON from the named file, or from
stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var raw []byte
		if len(args) == 1 {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("failed to read extraction data: %v", err)
		}

		var extraction types.EmailExtraction
		if err := json.Unmarshal(raw, &extraction); err != nil {
			return fmt.Errorf("failed to parse extraction data: %v", err)
		}

		result, err := client.New(cfg).SubmitOrders(cmd.Context(), &extraction)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Batch %s: %d submitted, %d failed\n",
			result.Status, result.OrdersSubmitted, result.OrdersFailed)
		if err := printJSON(result); err != nil {
			return err
		}
		if result.Status == types.BatchStatusFailed {
			os.Exit(1)
		}
		return nil
	},
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the full extract-and-submit flow",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		result := client.New(cfg).RunPipeline(cmd.Context())

		if result.Stage != "" {
			fmt.Fprintf(os.Stderr, "Pipeline failed at %s: %s\n", result.Stage, result.Error)
			if err := printJSON(result); err != nil {
				return err
			}
			os.Exit(1)
		}

		fmt.Printf("✓ Pipeline %s: %d extracted, %d submitted, %d failed\n",
			result.Status, result.OrdersExtracted, result.OrdersSubmitted, result.OrdersFailed)
		if err := printJSON(result); err != nil {
			return err
		}
		if result.Status == types.BatchStatusFailed {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	createOrderCmd.Flags().String("master-bill", "", "9-digit master bill number (required)")
	createOrderCmd.Flags().String("product-code", "", "Product code, e.g. PP48F (required)")
	createOrderCmd.Flags().Int("quantity", 0, "Number of units (required)")
	createOrderCmd.Flags().String("temperature", "", "Storage temperature (FREEZER, COOLER, FREEZER CRATES)")
	createOrderCmd.Flags().String("facility", "", "Supplying facility number (defaults to the master bill)")
	createOrderCmd.Flags().String("delivery-date", "", "Expected delivery date")
	createOrderCmd.Flags().String("delivery-company", "", "Carrier name")
	createOrderCmd.Flags().String("comments", "", "Free-form order comments")
	_ = createOrderCmd.MarkFlagRequired("master-bill")
	_ = createOrderCmd.MarkFlagRequired("product-code")
	_ = createOrderCmd.MarkFlagRequired("quantity")
}
