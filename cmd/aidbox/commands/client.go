package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/aidbox-client/internal/auth"
	"github.com/fivetwenty-io/aidbox-client/internal/client"
	"github.com/fivetwenty-io/aidbox-client/internal/constants"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidboxclient"
	"github.com/spf13/viper"
)

// resolveHost picks the server for this invocation: --host as a saved name,
// then --host as a URL, then the current host from the config file.
func resolveHost(config *Config) (string, *HostConfig, error) {
	flag := viper.GetString("host")

	if flag != "" {
		if host, ok := config.Hosts[flag]; ok {
			return flag, host, nil
		}

		normalized := aidboxclient.NormalizeHost(flag)
		name := hostName(normalized)

		if host, ok := config.Hosts[name]; ok && host.URL == normalized {
			return name, host, nil
		}

		return name, &HostConfig{URL: normalized}, nil
	}

	if config.CurrentHost != "" {
		if host, ok := config.Hosts[config.CurrentHost]; ok {
			return config.CurrentHost, host, nil
		}
	}

	return "", nil, constants.ErrNoHostConfigured
}

// CreateClient builds a client for the resolved host. A --token flag wins
// over the saved token. When an email and password are available through
// AIDBOX_EMAIL and AIDBOX_PASSWORD, an expired or rejected token is replaced
// and the new one is saved to the config file.
func CreateClient(ctx context.Context) (*client.Client, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	name, host, err := resolveHost(config)
	if err != nil {
		return nil, err
	}

	token := viper.GetString("token")
	if token == "" {
		token = host.Token
	}

	email := viper.GetString("email")
	if email == "" {
		email = host.Email
	}

	password := viper.GetString("password")

	clientConfig := &aidbox.Config{
		Host:        host.URL,
		Token:       token,
		Email:       email,
		Password:    password,
		Debug:       viper.GetBool("debug"),
		Logger:      newLogger(),
		SchemaCache: config.SchemaCache,
	}

	var tokenManager auth.TokenManager

	switch {
	case email != "" && password != "":
		tokenManager = persistingManager(clientConfig, name, host, config)
	case token != "":
		tokenManager = auth.NewStaticTokenManager(token)
	default:
		return nil, constants.ErrNotAuthenticated
	}

	c, err := client.NewWithTokenManager(ctx, clientConfig, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return c, nil
}

func persistingManager(clientConfig *aidbox.Config, name string, host *HostConfig, config *Config) auth.TokenManager {
	idTokens := auth.NewIDTokenManager(&auth.IDTokenConfig{
		Host:     clientConfig.Host,
		Email:    clientConfig.Email,
		Password: clientConfig.Password,
		Logger:   clientConfig.Logger,
	})

	// Unsaved hosts have nowhere to persist to.
	var persister auth.TokenPersister
	if _, saved := config.Hosts[name]; saved {
		persister = NewConfigPersister()
	}

	manager := auth.NewPersistingTokenManager(idTokens, persister, name, host.Token, clientConfig.Logger)

	if clientConfig.Token != "" {
		expiresAt, err := auth.ParseExpiry(clientConfig.Token)
		if err != nil {
			expiresAt = host.TokenExpiresAt
		}

		manager.SetToken(clientConfig.Token, expiresAt)
	}

	return manager
}
