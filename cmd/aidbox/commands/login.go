package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/aidbox-client/internal/auth"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidboxclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		name     string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login [HOST]",
		Short: "Login to an Aidbox server",
		Long: `Exchange an email and password for a token and save it.

The password is never written to the config file. The host is saved under
its host name unless --name is given, and becomes the current host if no
other host is current.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())

			host := viper.GetString("host")
			if len(args) == 1 {
				host = args[0]
			}

			if host == "" {
				host = prompt(cmd.OutOrStdout(), reader, "Host: ")
			}

			host = aidboxclient.NormalizeHost(host)
			if host == "" {
				return ErrHostRequired
			}

			if email == "" {
				email = viper.GetString("email")
			}

			if email == "" {
				email = prompt(cmd.OutOrStdout(), reader, "Email: ")
			}

			if email == "" {
				return ErrEmailRequired
			}

			if password == "" {
				password = viper.GetString("password")
			}

			if password == "" {
				var err error

				password, err = readPassword(cmd.InOrStdin(), cmd.OutOrStdout(), reader)
				if err != nil {
					return err
				}
			}

			ctx := context.Background()

			cli, err := aidboxclient.New(ctx, &aidbox.Config{
				Host:     host,
				Email:    email,
				Password: password,
				Debug:    viper.GetBool("debug"),
				Logger:   newLogger(),
			})
			if err != nil {
				return fmt.Errorf("failed to login to %s: %w", host, err)
			}

			defer cli.Close()

			token, err := cli.Token(ctx)
			if err != nil {
				return fmt.Errorf("failed to login to %s: %w", host, err)
			}

			if name == "" {
				name = hostName(host)
			}

			config, err := loadConfig()
			if err != nil {
				return err
			}

			expiresAt, err := auth.ParseExpiry(token)
			if err != nil {
				expiresAt = time.Time{}
			}

			config.Hosts[name] = &HostConfig{
				URL:            host,
				Email:          email,
				Token:          token,
				TokenExpiresAt: expiresAt,
				LastRefreshed:  time.Now(),
			}

			if config.CurrentHost == "" || len(config.Hosts) == 1 {
				config.CurrentHost = name
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully logged in to %s as %s\n", host, email)

			if config.CurrentHost == name {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Host '%s' set as current target\n", name)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "name to save the host under")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout from an Aidbox server",
		Long:  "Forget the saved token of the current host, or of every host with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			if all {
				for _, host := range config.Hosts {
					forgetToken(host)
				}
			} else {
				name, _, err := resolveHost(config)
				if err != nil {
					return err
				}

				host, ok := config.Hosts[name]
				if !ok {
					return fmt.Errorf("host '%s': %w", name, ErrHostNotFound)
				}

				forgetToken(host)
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")

			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "logout from every saved host")

	return cmd
}

func forgetToken(host *HostConfig) {
	host.Token = ""
	host.TokenExpiresAt = time.Time{}
}

func prompt(out io.Writer, reader *bufio.Reader, label string) string {
	_, _ = fmt.Fprint(out, label)

	line, _ := reader.ReadString('\n')

	return strings.TrimSpace(line)
}

// readPassword reads without echo from a terminal and falls back to a plain
// line read when input is piped.
func readPassword(in io.Reader, out io.Writer, reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int

	if in != os.Stdin || !term.IsTerminal(fd) {
		return prompt(out, reader, "Password: "), nil
	}

	_, _ = fmt.Fprint(out, "Password: ")

	bytePassword, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	_, _ = fmt.Fprintln(out)

	return string(bytePassword), nil
}
