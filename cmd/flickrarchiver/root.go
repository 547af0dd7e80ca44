package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flickrarchiver",
	Short: "Archive a Flickr account's photos, metadata and favorites locally",
	Long: `Flickr Archiver builds a complete local archive of a Flickr account.

For every photo it stores the original image (or a poster frame for
videos), full metadata, comments, the favorited-by list, EXIF data and
size information, each photo in its own directory with a completion
marker so interrupted runs resume where they left off. After the photo
walks it writes searchable index files for photos, favorites and albums.

Authentication uses Flickr's OAuth flow; run 'flickrarchiver auth login'
once to authorize the application and store the token securely.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.flickrarchiver.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`Flickr Archiver {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
