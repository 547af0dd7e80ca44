package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flickrarchiver/pkg/archive"
	"flickrarchiver/pkg/auth"
	"flickrarchiver/pkg/config"
	"flickrarchiver/pkg/flickr"
	"flickrarchiver/pkg/index"
	"flickrarchiver/pkg/logger"
	"flickrarchiver/pkg/ratelimit"
	"flickrarchiver/pkg/storage"
	"flickrarchiver/pkg/users"
	"flickrarchiver/pkg/walker"
)

var (
	// Archive command flags
	userID        string
	apiKey        string
	apiSecret     string
	archiveRoot   string
	skipFavorites bool
	accountName   string
	maxRetries    int
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive the account's photos and favorites",
	Long: `Archive every photo the configured account owns, then every photo it
has favorited, and finally rebuild the index files at the archive root.

Photos that already carry a completion marker are skipped, so the command
is safe to re-run after an interruption; it picks up where it stopped.

Credentials come from (in order):
  - Stored OAuth token (use 'flickrarchiver auth login' to store)
  - Environment variables (FLICKR_OAUTH_TOKEN, FLICKR_OAUTH_TOKEN_SECRET)

The API key pair can be set via flags, config file, or the
FLICKRARCHIVER_API_KEY / FLICKRARCHIVER_API_SECRET environment variables.`,
	Example: `  # Archive using stored credentials and configuration
  flickrarchiver archive

  # Archive a specific account into a custom directory
  flickrarchiver archive --user-id 12345678@N00 --archive-root ~/flickr_backup

  # Skip the favorites walk
  flickrarchiver archive --skip-favorites`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runArchive()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVarP(&userID, "user-id", "u", "", "NSID of the account to archive (default: authorized account)")
	archiveCmd.Flags().StringVar(&apiKey, "api-key", "", "Flickr API key")
	archiveCmd.Flags().StringVar(&apiSecret, "api-secret", "", "Flickr API secret")
	archiveCmd.Flags().StringVarP(&archiveRoot, "archive-root", "o", "", "root directory of the archive (default: ./flickr_archive)")
	archiveCmd.Flags().BoolVar(&skipFavorites, "skip-favorites", false, "skip the favorited-photos walk")
	archiveCmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")
	archiveCmd.Flags().IntVar(&maxRetries, "max-retries", 3, "maximum number of API retry attempts")
}

func runArchive() {
	// Stored credentials are resolved before config loading so the
	// authorized account's NSID can stand in for a missing --user-id.
	credManager, err := auth.NewManager()
	if err != nil {
		fatal("Failed to initialize credential manager", err)
	}

	var account *auth.Account
	if accountName != "" {
		account, err = credManager.Retrieve(accountName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Account not found: %s\n", accountName)
			fmt.Fprintln(os.Stderr, "Use 'flickrarchiver auth status' to see stored accounts")
			os.Exit(1)
		}
	} else {
		account, _ = credManager.RetrieveDefault()
	}

	flags := make(map[string]interface{})
	if apiKey != "" {
		flags["api-key"] = apiKey
	}
	if apiSecret != "" {
		flags["api-secret"] = apiSecret
	}
	if archiveRoot != "" {
		flags["archive-root"] = archiveRoot
	}
	if skipFavorites {
		flags["skip-favorites"] = true
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	switch {
	case userID != "":
		flags["user-id"] = userID
	case account != nil && account.NSID != "":
		flags["user-id"] = account.NSID
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fatal("Failed to load configuration", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fatal("Failed to initialize logger", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("Flickr Archiver starting")

	client := flickr.NewClient(cfg.Flickr.APIKey, cfg.Flickr.APISecret, cfg.Download.Timeout, log)
	client.SetUserAgent(cfg.Flickr.UserAgent)
	retries := cfg.RateLimit.MaxRetries
	if maxRetries != 3 {
		retries = maxRetries
	}
	client.SetRetryPolicy(retries, cfg.RateLimit.RetryDelay, cfg.RateLimit.UnavailableDelay)

	if account != nil {
		client.SetAccessToken(account.Token, account.TokenSecret)
		log.WithField("account", account.Username).Info("Using stored credentials")
	} else {
		log.Warn("No OAuth token found, only public data will be visible")
		fmt.Fprintln(os.Stderr, "No stored OAuth token; run 'flickrarchiver auth login' to archive private photos.")
	}

	store, err := storage.NewManager(cfg.Archive.Root, cfg.Archive.PhotosDir, cfg.Archive.FavoritesDir)
	if err != nil {
		fatal("Failed to prepare archive directories", err)
	}

	pacer := ratelimit.NewPacer(cfg.RateLimit.PhotoDelay, cfg.RateLimit.UnitCooldown)
	cache := users.NewCache()
	resolver := users.NewResolver(client, cache, log)
	archiver := archive.New(client, resolver, store, pacer, log)
	walk := walker.New(client, archiver, store, cfg.Archive.PageSize, log)

	target := cfg.Flickr.UserID

	owned, err := walk.WalkOwned(target)
	if err != nil {
		log.WithError(err).Error("Owned-photos walk failed")
		fatal("Archival failed during owned-photos walk", err)
	}

	favorites := 0
	if cfg.Archive.SkipFavorites {
		log.Info("Skipping favorites walk")
	} else {
		favorites, err = walk.WalkFavorites(target)
		if err != nil {
			log.WithError(err).Error("Favorites walk failed")
			fatal("Archival failed during favorites walk", err)
		}
	}

	builder := index.New(client, store, cache, log)
	if err := builder.Build(target); err != nil {
		log.WithError(err).Error("Index build failed")
		fatal("Archival failed during index build", err)
	}

	log.InfoWithFields("archival run complete", map[string]interface{}{
		"owned_photos":   owned,
		"favorites":      favorites,
		"users_resolved": cache.Len(),
		"archive_root":   store.Root(),
	})
	fmt.Printf("Archive complete: %d owned photos, %d favorites, archive at %s\n", owned, favorites, store.Root())
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
