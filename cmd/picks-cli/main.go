package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/smart-picks/internal/app"
	"github.com/yourusername/smart-picks/internal/config"
	"github.com/yourusername/smart-picks/internal/logger"
	"github.com/yourusername/smart-picks/internal/models"
	"github.com/yourusername/smart-picks/internal/picks"
	"github.com/yourusername/smart-picks/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	verbose    bool
	cfg        *config.Config
	appLog     *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	analyzeCmd.Flags().String("market", string(models.MarketBTTS), "Market to analyse (btts, runline)")
	analyzeCmd.Flags().Float64("threshold", 0, "Override the market's configured threshold")
	analyzeCmd.Flags().Bool("simulated", false, "Use the seeded simulated source only")
	analyzeCmd.Flags().Bool("json", false, "Print picks as JSON")

	weightsCmd.Flags().Int("window", 10, "Window size N")

	rootCmd.AddCommand(analyzeCmd, weightsCmd, statusCmd)
}

var rootCmd = &cobra.Command{
	Use:     "picks-cli",
	Short:   "Recency-weighted sports picks",
	Long:    `Runs pick analysis cycles and inspects the recency weighting used to score fixtures.`,
	Version: fmt.Sprintf("%s (%s)", Version, GitCommit),
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis cycle and print the selected picks",
	RunE: func(cmd *cobra.Command, args []string) error {
		marketName, _ := cmd.Flags().GetString("market")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		simulated, _ := cmd.Flags().GetBool("simulated")
		asJSON, _ := cmd.Flags().GetBool("json")

		market, err := models.ParseMarket(marketName)
		if err != nil {
			return err
		}
		if err := loadConfig(); err != nil {
			return err
		}
		for i := range cfg.Markets {
			if cfg.Markets[i].Market() != market {
				continue
			}
			cfg.Markets[i].Enabled = true
			if cmd.Flags().Changed("threshold") {
				cfg.Markets[i].Threshold = threshold
			}
			if simulated {
				cfg.Markets[i].Source = "simulated"
				cfg.DataSources.Simulated.Enabled = true
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.CycleTimeout()+10*time.Second)
		defer cancel()

		a, err := app.New(ctx, cfg, appLog)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Service.RunCycle(ctx, market)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result.Picks)
		}
		printResult(result)
		return nil
	},
}

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Print the triangular recency weights for a window size",
	RunE: func(cmd *cobra.Command, args []string) error {
		window, _ := cmd.Flags().GetInt("window")
		weights, err := picks.ComputeRecencyWeights(window)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "POSITION\tWEIGHT")
		sum := 0.0
		for i, weight := range weights {
			fmt.Fprintf(w, "%d\t%.6f\n", i+1, weight)
			sum += weight
		}
		fmt.Fprintf(w, "sum\t%.6f\n", sum)
		return w.Flush()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured markets and their latest cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		a, err := app.New(ctx, cfg, appLog)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Printf("Environment: %s\n", cfg.App.Environment)
		fmt.Printf("Window size: %d\n", cfg.Engine.WindowSize)
		fmt.Printf("Persistence: %s\n", persistenceMode(a))
		fmt.Printf("Sources:     %v\n\n", a.Sources.Available())

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MARKET\tENABLED\tTHRESHOLD\tSOURCE\tSCHEDULE\tLAST CYCLE\tPICKS")
		for _, mc := range cfg.Markets {
			last, count := "-", "-"
			run, err := a.Service.LatestRun(ctx, mc.Market())
			switch {
			case err == nil:
				last = run.StartedAt.Format(time.RFC3339)
				count = fmt.Sprint(run.PicksSelected)
			case !errors.Is(err, models.ErrNotFound):
				last = "error: " + err.Error()
			}
			fmt.Fprintf(w, "%s\t%t\t%.2f\t%s\t%s\t%s\t%s\n",
				mc.Name, mc.Enabled, mc.Threshold, mc.Source, mc.Schedule, last, count)
		}
		return w.Flush()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Secrets.Enabled {
		if err := config.LoadSecretsFromAWS(context.Background(), cfg); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	appLog = logger.NewLogger(level, cfg.App.Environment)
	return nil
}

func persistenceMode(a *app.App) string {
	if a.DB != nil {
		return "postgres"
	}
	return "memory"
}

func printResult(result *service.CycleResult) {
	fmt.Printf("Market %s | cycle %s | source %s (%s) | %d fixtures | %d teams without data | %s\n\n",
		result.Market, result.CycleID, result.SourceName, result.Source,
		len(result.Fixtures), result.TeamsWithoutData, result.Duration.Round(time.Millisecond))

	if len(result.Picks) == 0 {
		fmt.Println("No fixtures cleared the threshold.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tFIXTURE\tKICKOFF\tHOME RATE\tAWAY RATE\tCONFIDENCE\tODDS\tEV")
	for _, p := range result.Picks {
		odds, ev := "-", "-"
		if p.BestOdds != nil {
			odds = p.BestOdds.StringFixed(2)
		}
		if v := p.ExpectedValue(); v != nil {
			ev = v.StringFixed(3)
		}
		fmt.Fprintf(w, "%d\t%s vs %s\t%s\t%.3f\t%.3f\t%d%%\t%s\t%s\n",
			p.Rank, p.HomeTeam, p.AwayTeam, p.StartTime.Format("Mon 02 Jan 15:04"),
			p.HomeRate, p.AwayRate, p.ConfidencePercent, odds, ev)
	}
	w.Flush()
}
