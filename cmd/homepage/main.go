// Command homepage serves the personal website and maintains its post
// metadata.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eringen/homepage"
	"github.com/eringen/homepage/views"
)

// version is set at build time via ldflags.
var version = "dev"

var rootFlag string

var rootCmd = &cobra.Command{
	Use:           "homepage [command]",
	Short:         "homepage: a personal website with a Markdown blog",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is a development convenience; production reads the real
		// environment only.
		if strings.ToLower(os.Getenv("APP_ENV")) == homepage.ProfileProduction {
			return nil
		}
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the homepage version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("homepage %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "application root containing public/ (overrides APP_ROOT)")
	rootCmd.AddCommand(versionCmd)
}

// newApp builds the App from the environment and command-line flags.
func newApp() (*homepage.App, error) {
	cfg, err := homepage.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if rootFlag != "" {
		cfg.Root = rootFlag
	}
	if addrFlag != "" {
		cfg.Addr = addrFlag
	}
	return homepage.New(cfg, views.New(cfg)), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
