package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fivetwenty-io/erp-sdk/internal/auth"
	"github.com/fivetwenty-io/erp-sdk/internal/client"
	"github.com/fivetwenty-io/erp-sdk/internal/constants"
	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
	"github.com/fivetwenty-io/erp-sdk/pkg/erpclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	API            string     `json:"api,omitempty"              yaml:"api,omitempty"`
	Tenant         string     `json:"tenant,omitempty"           yaml:"tenant,omitempty"`
	TokenURL       string     `json:"token_url,omitempty"        yaml:"token_url,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
	Username       string     `json:"username,omitempty"         yaml:"username,omitempty"`
	ClientID       string     `json:"client_id,omitempty"        yaml:"client_id,omitempty"`
	Output         string     `json:"output,omitempty"           yaml:"output,omitempty"`
}

// settableKeys are the keys accepted by `erp config set` and `erp config unset`.
var settableKeys = []string{"api", "tenant", "token_url", "username", "client_id", "output"}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and edit the ERP CLI configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			masked := *config
			masked.Token = maskSecret(masked.Token)
			masked.RefreshToken = maskSecret(masked.RefreshToken)

			return render(cmd.OutOrStdout(), masked, func(table *tablewriter.Table) error {
				table.Header("Property", "Value")

				rows := [][]string{
					{"API", masked.API},
					{"Tenant", masked.Tenant},
					{"Token URL", masked.TokenURL},
					{"Username", masked.Username},
					{"Client ID", masked.ClientID},
					{"Token", masked.Token},
					{"Refresh Token", masked.RefreshToken},
				}

				if masked.TokenExpiresAt != nil {
					rows = append(rows, []string{"Token Expires", masked.TokenExpiresAt.Format(time.RFC3339)})
				}

				for _, row := range rows {
					err := table.Append(cells(row)...)
					if err != nil {
						return fmt.Errorf("failed to append row: %w", err)
					}
				}

				return nil
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: api, tenant, token_url, username, client_id, output",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", args[0], args[1])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

// setConfigValue updates one settable key.
func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "api":
		config.API = value
	case "tenant":
		config.Tenant = value
	case "token_url":
		config.TokenURL = value
	case "username":
		config.Username = value
	case "client_id":
		config.ClientID = value
	case "output":
		if value != "" {
			err := validateOutputFormat(value)
			if err != nil {
				return err
			}
		}

		config.Output = value
	default:
		return fmt.Errorf("%w: %q (valid keys: %v)", constants.ErrUnknownConfigKey, key, settableKeys)
	}

	return nil
}

// loadConfig reads the configuration from viper, so flags and ERP_* variables
// override the config file.
func loadConfig() *Config {
	config := &Config{
		API:          viper.GetString("api"),
		Tenant:       viper.GetString("tenant"),
		TokenURL:     viper.GetString("token_url"),
		Token:        viper.GetString("token"),
		RefreshToken: viper.GetString("refresh_token"),
		Username:     viper.GetString("username"),
		ClientID:     viper.GetString("client_id"),
		Output:       viper.GetString("output"),
	}

	if expiresAt := viper.GetTime("token_expires_at"); !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	if refreshed := viper.GetTime("last_refreshed"); !refreshed.IsZero() {
		config.LastRefreshed = &refreshed
	}

	return config
}

// configFilePath returns the file in use, or ~/.erp/config.yml when none was read.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".erp", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// cliLogger returns a zap console logger, at debug level with --verbose.
func cliLogger() *erp.ZapLogger {
	level := erp.WarnLevel
	if viper.GetBool("verbose") {
		level = erp.DebugLevel
	}

	return erp.NewConsoleLogger(level, false)
}

// createClient builds an API client from the configuration. A stored refresh
// token enables automatic renewal; renewed tokens are written back to the
// config file.
func createClient(ctx context.Context) (erp.Client, error) {
	config := loadConfig()
	if config.API == "" {
		return nil, constants.ErrNoAPIConfigured
	}

	logger := cliLogger()
	erpConfig := &erp.Config{
		APIEndpoint: erpclient.NormalizeEndpoint(config.API),
		Tenant:      config.Tenant,
		TokenURL:    config.TokenURL,
		Logger:      logger,
		Debug:       viper.GetBool("verbose"),
	}

	if config.RefreshToken != "" {
		tokenManager := createTokenManager(config, erpConfig, logger)

		erpClient, err := client.NewWithTokenManager(erpConfig, tokenManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create client with token manager: %w", err)
		}

		return erpClient, nil
	}

	if config.Token == "" {
		return nil, constants.ErrNotAuthenticated
	}

	erpConfig.AccessToken = config.Token

	erpClient, err := erpclient.New(ctx, erpConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create ERP client: %w", err)
	}

	return erpClient, nil
}

func createTokenManager(config *Config, erpConfig *erp.Config, logger erp.Logger) auth.TokenManager {
	tokenURL := erpConfig.TokenURL
	if tokenURL == "" {
		tokenURL = auth.NewTokenURL(erpConfig.APIEndpoint)
	}

	tokenManager := auth.NewConfigTokenManager(&auth.OAuth2Config{
		TokenURL:     tokenURL,
		ClientID:     config.ClientID,
		RefreshToken: config.RefreshToken,
		AccessToken:  config.Token,
	}, NewConfigPersister(), func(err error) {
		logger.Warn("Failed to persist refreshed token", map[string]interface{}{"error": err.Error()})
	})

	if config.Token != "" && config.TokenExpiresAt != nil {
		tokenManager.SetToken(config.Token, *config.TokenExpiresAt)
	}

	return tokenManager
}

func maskSecret(secret string) string {
	const visible = 4

	if len(secret) <= visible {
		return secret
	}

	return secret[:visible] + "..."
}

