package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"flickrarchiver/pkg/auth"
	"flickrarchiver/pkg/config"
	"flickrarchiver/pkg/flickr"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Flickr OAuth credentials",
	Long: `Manage stored Flickr OAuth credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your credentials or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize the application and store the OAuth token",
	Long: `Run the one-time Flickr OAuth authorization flow.

You will be shown an authorization URL to open in your browser. After
approving access, Flickr displays a verification code; enter it at the
prompt and the resulting access token is stored securely.

An API key pair is required. Create one at
https://www.flickr.com/services/apps/create/ and provide it via the
config file, the FLICKRARCHIVER_API_KEY / FLICKRARCHIVER_API_SECRET
environment variables, or the interactive prompts.`,
	Example: `  # Interactive authorization
  flickrarchiver auth login`,
	Args: cobra.NoArgs,
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove stored credentials",
	Long: `Remove a stored Flickr OAuth token.

If no username is provided, all stored accounts are listed and the
command exits without deleting anything.`,
	Example: `  # Remove a specific account's token
  flickrarchiver auth logout myusername`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored accounts",
	Long:  `List all stored Flickr accounts with sanitized credential information.`,
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fatal("Failed to initialize credential manager", err)
	}

	// Config loads leniently here; only the API key pair is needed
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		fatal("Failed to load config file", err)
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fatal("Failed to load environment variables", err)
	}

	reader := bufio.NewReader(os.Stdin)

	if cfg.Flickr.APIKey == "" {
		fmt.Print("Flickr API key: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fatal("Failed to read API key", err)
		}
		cfg.Flickr.APIKey = strings.TrimSpace(input)
	}

	if cfg.Flickr.APISecret == "" {
		fmt.Print("Flickr API secret (hidden): ")
		secret, err := readPassword()
		if err != nil {
			fatal("Failed to read API secret", err)
		}
		fmt.Println()
		cfg.Flickr.APISecret = secret
	}

	if cfg.Flickr.APIKey == "" || cfg.Flickr.APISecret == "" {
		fmt.Fprintln(os.Stderr, "An API key and secret are required.")
		fmt.Fprintln(os.Stderr, "Create one at: https://www.flickr.com/services/apps/create/")
		os.Exit(1)
	}

	authorizer := flickr.NewAuthorizer(cfg.Flickr.APIKey, cfg.Flickr.APISecret)
	token, err := authorizer.Authorize(os.Stdin, os.Stdout)
	if err != nil {
		fatal("Authorization failed", err)
	}

	account := auth.AccountFromToken(*token)
	if err := manager.Store(account); err != nil {
		fatal("Failed to store credentials", err)
	}

	fmt.Println()
	fmt.Printf("Authorized as %s (%s)\n", token.Username, token.UserNSID)
	fmt.Println("Token stored securely. Run 'flickrarchiver archive' to start archiving.")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fatal("Failed to initialize credential manager", err)
	}

	if len(args) == 0 {
		accounts, err := manager.List()
		if err != nil || len(accounts) == 0 {
			fmt.Println("No stored accounts.")
			return
		}
		fmt.Println("Stored accounts:")
		for _, account := range accounts {
			fmt.Printf("  %s (%s)\n", account.Username, account.NSID)
		}
		fmt.Println("\nRun 'flickrarchiver auth logout <username>' to remove one.")
		return
	}

	username := args[0]
	if err := manager.Delete(username); err != nil {
		fatal("Failed to remove credentials", err)
	}
	fmt.Printf("Removed credentials for %s\n", username)
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fatal("Failed to initialize credential manager", err)
	}

	accounts, err := manager.List()
	if err != nil {
		fatal("Failed to list accounts", err)
	}
	if len(accounts) == 0 {
		fmt.Println("No stored accounts. Run 'flickrarchiver auth login' to authorize.")
		return
	}

	fmt.Println("Stored accounts:")
	for _, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("  %s (%s)\n", sanitized.Username, sanitized.NSID)
		fmt.Printf("    token: %s\n", sanitized.Token)
		if !sanitized.LastModified.IsZero() {
			fmt.Printf("    stored: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		}
	}
}

// readPassword reads a line from stdin without echoing it
func readPassword() (string, error) {
	data, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
