//nolint:testpackage // Need access to internal helpers
package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fivetwenty-io/aidbox-client/internal/aidboxtest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// setupConfig points viper at a fresh config file for the duration of the
// test. Tests that use it share viper's global state and must not run in
// parallel.
func setupConfig(t *testing.T) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yml")
	viper.SetConfigFile(path)

	return path
}

// runCommand executes cmd with args and stdin, returning what it printed.
func runCommand(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

// newLoggedInServer starts a fake server with patients and logs in to it
// under the name "local".
func newLoggedInServer(t *testing.T) *aidboxtest.Server {
	t.Helper()

	setupConfig(t)

	server := aidboxtest.NewServer(t)
	server.AddAttributes("Patient", "name", "birthDate")
	server.AddResource("Patient", map[string]any{"id": "p1", "name": "Jane", "birthDate": "1990-01-01"})
	server.AddResource("Patient", map[string]any{"id": "p2", "name": "John", "birthDate": "1985-06-15"})
	server.AddResource("Patient", map[string]any{"id": "p3", "name": "Jane", "birthDate": "1970-03-03"})

	_, err := runCommand(t, NewLoginCommand(), "",
		server.URL, "--name", "local", "--email", aidboxtest.Email, "--password", aidboxtest.Password)
	require.NoError(t, err)

	return server
}

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}
