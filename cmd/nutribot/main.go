package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vbonduro/nutribot/internal/catalog"
	"github.com/vbonduro/nutribot/internal/config"
)

var (
	// Global flags; empty means "use the environment".
	flagAddr    string
	flagDB      string
	flagCatalog string
)

var rootCmd = &cobra.Command{
	Use:   "nutribot",
	Short: "Snack recommendation chatbot",
	Long: `nutribot suggests snack portions from a line of free text such as
"70kg craving nachos want to lose weight".

Commands:
  serve     Run the web page, chat stream, feedback form and API
  ask       Ask one question, or chat interactively
  catalog   List the snack catalog
  feedback  Work with feedback collected by the built-in endpoint

Configuration comes from the environment (and an optional .env file);
flags override it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "", "Listen address (default $LISTEN_ADDR or :8080)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite path for stored feedback (default $DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "YAML or TOML snack catalog (default $CATALOG_PATH or built-in)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies any global flag overrides.
func loadConfig() *config.Config {
	cfg := config.Load()
	if flagAddr != "" {
		cfg.ListenAddr = flagAddr
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if flagCatalog != "" {
		cfg.CatalogPath = flagCatalog
	}
	return cfg
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	return catalog.Load(cfg.CatalogPath)
}
