package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"github.com/fivetwenty-io/erp-sdk/internal/auth"
	"github.com/fivetwenty-io/erp-sdk/internal/constants"
	"github.com/fivetwenty-io/erp-sdk/pkg/erpclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

type loginFlags struct {
	apiEndpoint  string
	tenant       string
	tokenURL     string
	username     string
	password     string
	clientID     string
	clientSecret string
	token        string
}

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	flags := &loginFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the ERP API",
		Long: `Authenticate against the ERP API and store the endpoint, tenant and tokens in
the config file. Passwords and client secrets are never stored.`,
		Example: `  erp login --api erp.example.com --tenant acme --username jdoe
  erp login --api erp.example.com --tenant acme --client-id reporting
  erp login --api erp.example.com --tenant acme --token "$ERP_ACCESS_TOKEN"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.apiEndpoint, "api", "", "API endpoint URL")
	cmd.Flags().StringVar(&flags.tenant, "tenant", "", "tenant (company database)")
	cmd.Flags().StringVar(&flags.tokenURL, "token-url", "", "OAuth2 token endpoint (default <api>/oauth/token)")
	cmd.Flags().StringVarP(&flags.username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&flags.password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&flags.clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&flags.clientSecret, "client-secret", "", "OAuth2 client secret (prompted when omitted)")
	cmd.Flags().StringVar(&flags.token, "token", "", "use an existing access token")

	return cmd
}

func runLogin(cmd *cobra.Command, flags *loginFlags) error {
	ctx := context.Background()
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	config := loadConfig()

	endpoint := firstNonEmpty(flags.apiEndpoint, viper.GetString("api"))
	if endpoint == "" {
		endpoint = prompt(reader, out, "API endpoint: ")
	}

	if endpoint == "" {
		return constants.ErrNoAPIConfigured
	}

	config.API = erpclient.NormalizeEndpoint(endpoint)
	config.Tenant = firstNonEmpty(flags.tenant, config.Tenant)
	config.TokenURL = firstNonEmpty(flags.tokenURL, config.TokenURL)

	token, err := obtainToken(ctx, reader, out, config, flags)
	if err != nil {
		return err
	}

	config.Token = token.AccessToken
	config.RefreshToken = token.RefreshToken
	config.TokenExpiresAt = nil

	if !token.ExpiresAt.IsZero() {
		expiresAt := token.ExpiresAt
		config.TokenExpiresAt = &expiresAt
	}

	now := time.Now()
	config.LastRefreshed = &now

	err = saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Logged in to %s", config.API)
	if config.Tenant != "" {
		_, _ = fmt.Fprintf(out, " (tenant %s)", config.Tenant)
	}

	_, _ = fmt.Fprintln(out)

	if config.TokenExpiresAt != nil {
		_, _ = fmt.Fprintf(out, "Token expires at %s\n", config.TokenExpiresAt.Format(time.RFC3339))
	}

	return nil
}

// obtainToken uses a supplied token as is, or requests one with client
// credentials or a username and password.
func obtainToken(ctx context.Context, reader *bufio.Reader, out io.Writer, config *Config, flags *loginFlags) (*auth.Token, error) {
	if flags.token != "" {
		expiresAt, _ := auth.TokenExpiry(flags.token)

		config.Username = ""
		config.ClientID = ""

		return &auth.Token{AccessToken: flags.token, ExpiresAt: expiresAt}, nil
	}

	oauthConfig := &auth.OAuth2Config{
		TokenURL: config.TokenURL,
	}
	if oauthConfig.TokenURL == "" {
		oauthConfig.TokenURL = auth.NewTokenURL(config.API)
	}

	if flags.clientID != "" {
		secret, err := secretValue(flags.clientSecret, out, "Client secret: ")
		if err != nil {
			return nil, err
		}

		oauthConfig.ClientID = flags.clientID
		oauthConfig.ClientSecret = secret
		config.ClientID = flags.clientID
		config.Username = ""
	} else {
		username := firstNonEmpty(flags.username, config.Username)
		if username == "" {
			username = prompt(reader, out, "Username: ")
		}

		password, err := secretValue(flags.password, out, "Password: ")
		if err != nil {
			return nil, err
		}

		oauthConfig.Username = username
		oauthConfig.Password = password
		config.Username = username
		config.ClientID = ""
	}

	manager := auth.NewOAuth2TokenManager(oauthConfig)

	_, err := manager.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	return manager.CurrentToken(), nil
}

// secretValue returns value, or reads it from the terminal without echo.
func secretValue(value string, out io.Writer, label string) (string, error) {
	if value != "" {
		return value, nil
	}

	stdin := int(syscall.Stdin)
	if !term.IsTerminal(stdin) {
		return "", constants.ErrPasswordRequired
	}

	_, _ = fmt.Fprint(out, label)

	secret, err := term.ReadPassword(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}

	_, _ = fmt.Fprintln(out)

	if len(secret) == 0 {
		return "", constants.ErrPasswordRequired
	}

	return string(secret), nil
}

func prompt(reader *bufio.Reader, out io.Writer, label string) string {
	_, _ = fmt.Fprint(out, label)

	line, _ := reader.ReadString('\n')

	return strings.TrimSpace(line)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the ERP API",
		Long:  "Remove stored tokens from the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = ""
			config.RefreshToken = ""
			config.TokenExpiresAt = nil
			config.LastRefreshed = nil

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			viper.Set("token", "")
			viper.Set("refresh_token", "")

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}
