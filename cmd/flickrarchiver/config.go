package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"flickrarchiver/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Flickr Archiver configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'flickrarchiver.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

Sensitive values like the API secret are masked.`,
	Run: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "flickrarchiver.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(os.Stderr, "Configuration file already exists: %s\n", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# Flickr Archiver Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with FLICKRARCHIVER_
# For example: FLICKRARCHIVER_API_KEY, FLICKRARCHIVER_USER_ID

# Flickr API credentials and target account
flickr:
  # API key pair from https://www.flickr.com/services/apps/create/
  api_key: "YOUR_API_KEY"
  api_secret: "YOUR_API_SECRET"

  # NSID of the account to archive, e.g. 12345678@N00
  # Leave empty to archive the account authorized via 'auth login'
  user_id: ""

  # User agent string (optional)
  user_agent: ""

# Rate limiting and retry policy
rate_limit:
  # Delay before each photo's archival unit
  photo_delay: 1.2s

  # Cooldown after each completed unit
  unit_cooldown: 500ms

  # API retry budget and delays
  max_retries: 3
  retry_delay: 2s
  unavailable_delay: 5s

# Archive layout
archive:
  # Root directory of the archive
  root: "./flickr_archive"

  # Collection subdirectories
  photos_dir: "my_photos"
  favorites_dir: "favorited_photos"

  # Listing page size (1-500)
  page_size: 100

  # Skip the favorited-photos walk
  skip_favorites: false

# Binary download settings
download:
  timeout: 60s

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (empty for console only)
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		fatal("Failed to write configuration file", err)
	}

	fmt.Printf("Created example configuration: %s\n", configPath)
	fmt.Println("\nEdit the file to add your API key, then run 'flickrarchiver auth login'.")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		fatal("Failed to load config file", err)
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fatal("Failed to load environment variables", err)
	}

	// Mask secrets before printing
	shown := *cfg
	if shown.Flickr.APISecret != "" {
		shown.Flickr.APISecret = "********"
	}

	data, err := yaml.Marshal(&shown)
	if err != nil {
		fatal("Failed to render configuration", err)
	}

	fmt.Println("Current configuration:")
	fmt.Println()
	fmt.Print(string(data))
}
