package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"time"

	"github.com/fivetwenty-io/aidbox-client/internal/constants"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"github.com/mitchellh/mapstructure"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration file.
type Config struct {
	Hosts       map[string]*HostConfig `json:"hosts,omitempty"        mapstructure:"hosts"        yaml:"hosts,omitempty"`
	CurrentHost string                 `json:"current_host,omitempty" mapstructure:"current_host" yaml:"current_host,omitempty"`
	Output      string                 `json:"output,omitempty"       mapstructure:"output"       yaml:"output,omitempty"`

	// SchemaCache shares attribute schemas between CLI invocations.
	SchemaCache *aidbox.CacheConfig `json:"schema_cache,omitempty" mapstructure:"schema_cache" yaml:"schema_cache,omitempty"`
}

// HostConfig represents a single saved Aidbox server.
type HostConfig struct {
	URL            string    `json:"url"                        mapstructure:"url"              yaml:"url"`
	Email          string    `json:"email,omitempty"            mapstructure:"email"            yaml:"email,omitempty"`
	Token          string    `json:"token,omitempty"            mapstructure:"token"            yaml:"token,omitempty"`
	TokenExpiresAt time.Time `json:"token_expires_at,omitzero"  mapstructure:"token_expires_at" yaml:"token_expires_at,omitempty"`
	LastRefreshed  time.Time `json:"last_refreshed,omitzero"    mapstructure:"last_refreshed"   yaml:"last_refreshed,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and edit the saved hosts and global settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUseCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the saved hosts and global settings. Tokens are masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			masked := maskTokens(config)

			switch outputFormat() {
			case constants.FormatJSON:
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")

				return encoder.Encode(masked)
			case constants.FormatYAML:
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(masked)
			default:
				return displayConfigTable(cmd.OutOrStdout(), masked)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a global configuration value. Supported keys: output, current_host.",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			key, value := args[0], args[1]

			switch key {
			case "output":
				if !validFormat(value) {
					return fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, value)
				}

				config.Output = value
			case "current_host":
				if _, ok := config.Hosts[value]; !ok {
					return fmt.Errorf("host '%s': %w", value, ErrHostNotFound)
				}

				config.CurrentHost = value
			default:
				return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", key, value)

			return nil
		},
	}
}

func newConfigUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use NAME",
		Short: "Switch the current host",
		Long:  "Make a saved host the default for subsequent commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			if _, ok := config.Hosts[args[0]]; !ok {
				return fmt.Errorf("host '%s': %w", args[0], ErrHostNotFound)
			}

			config.CurrentHost = args[0]

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Now using %s\n", args[0])

			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all configuration",
		Long:  "Remove every saved host and setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "This will remove all saved hosts and tokens. Continue? (y/N): ")

				var response string

				_, _ = fmt.Fscanln(cmd.InOrStdin(), &response)
				if response != "y" && response != "Y" {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")

					return nil
				}
			}

			err := saveConfigStruct(&Config{})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configuration cleared")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

// loadConfig decodes the settings viper has read into a Config.
func loadConfig() (*Config, error) {
	config := &Config{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			cacheTypeHook,
		),
		WeaklyTypedInput: true,
		Result:           config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create config decoder: %w", err)
	}

	settings := map[string]interface{}{
		"hosts":        viper.Get("hosts"),
		"current_host": viper.GetString("current_host"),
		"output":       viper.GetString("output"),
		"schema_cache": viper.Get("schema_cache"),
	}

	err = decoder.Decode(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if config.Hosts == nil {
		config.Hosts = make(map[string]*HostConfig)
	}

	return config, nil
}

func cacheTypeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(aidbox.CacheType("")) {
		return data, nil
	}

	s, _ := data.(string)

	return aidbox.CacheType(s), nil
}

// configFilePath returns the file viper reads, or the default location.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.DefaultHomeConfigDir, constants.DefaultConfigName+".yml"), nil
}

// saveConfigStruct writes config and reloads it so later reads in this
// process see the change.
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
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.SetConfigFile(configFile)

	err = viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	return nil
}

func maskTokens(config *Config) *Config {
	masked := *config
	masked.Hosts = make(map[string]*HostConfig, len(config.Hosts))

	for name, host := range config.Hosts {
		copied := *host
		if copied.Token != "" {
			copied.Token = Masked
		}

		masked.Hosts[name] = &copied
	}

	return &masked
}

func displayConfigTable(out io.Writer, config *Config) error {
	table := tablewriter.NewWriter(out)
	table.Header("Name", "URL", "Email", "Token Expires", "Current")

	names := make([]string, 0, len(config.Hosts))
	for name := range config.Hosts {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		host := config.Hosts[name]

		expires := constants.NotAvailable
		if !host.TokenExpiresAt.IsZero() {
			expires = host.TokenExpiresAt.Format(time.RFC3339)
		}

		current := ""
		if name == config.CurrentHost {
			current = "*"
		}

		err := table.Append(name, host.URL, valueOrNA(host.Email), expires, current)
		if err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if config.SchemaCache != nil {
		_, _ = fmt.Fprintf(out, "Schema cache: %s\n", config.SchemaCache.Type)
	}

	return nil
}
