package aidboxclient_test

import (
	"context"
	"testing"

	"github.com/fivetwenty-io/aidbox-client/internal/aidboxtest"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"github.com/fivetwenty-io/aidbox-client/pkg/aidboxclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "box.example.com", expected: "https://box.example.com"},
		{input: "https://box.example.com/", expected: "https://box.example.com"},
		{input: "http://localhost:8888", expected: "http://localhost:8888"},
		{input: "  box.example.com/ ", expected: "https://box.example.com"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, aidboxclient.NormalizeHost(tt.input))
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := aidboxclient.New(context.Background(), nil)
	require.ErrorIs(t, err, aidbox.ErrConfigRequired)

	_, err = aidboxclient.New(context.Background(), &aidbox.Config{Token: "t"})
	require.ErrorIs(t, err, aidbox.ErrHostRequired)
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	server := aidboxtest.NewServer(t)

	cli, err := aidboxclient.NewWithToken(context.Background(), server.URL+"/", aidboxtest.Token)
	require.NoError(t, err)

	defer cli.Close()

	assert.Equal(t, server.URL, cli.Host())
	assert.Empty(t, server.Requests(), "a token client must not call the server at construction")
}

func TestNewWithPassword(t *testing.T) {
	t.Parallel()

	server := aidboxtest.NewServer(t)

	cli, err := aidboxclient.NewWithPassword(context.Background(), server.URL, aidboxtest.Email, aidboxtest.Password)
	require.NoError(t, err)

	defer cli.Close()

	assert.Len(t, server.RequestsTo("/oauth2/authorize"), 1)

	token, err := cli.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, aidboxtest.Token, token)
}

func TestNewWithPassword_Rejected(t *testing.T) {
	t.Parallel()

	server := aidboxtest.NewServer(t)

	_, err := aidboxclient.NewWithPassword(context.Background(), server.URL, aidboxtest.Email, "wrong")
	require.Error(t, err)
	assert.True(t, aidbox.IsAuthorization(err))
}

func TestClientIntegration(t *testing.T) {
	t.Parallel()

	server := aidboxtest.NewServer(t)
	server.AddAttributes("Patient", "name", "birthDate")
	server.AddAttributes("Practitioner", "name")
	server.AddResource("Practitioner", map[string]any{"id": "dr1", "name": "House"})
	server.AddResource("Patient", map[string]any{"id": "p1", "name": "Jane", "birthDate": "1990-01-01"})

	ctx := context.Background()

	cli, err := aidboxclient.NewWithPassword(ctx, server.URL, aidboxtest.Email, aidboxtest.Password)
	require.NoError(t, err)

	defer cli.Close()

	first, err := cli.Resources("Patient").Where("name", "Jane").First(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "<Resource Patient/p1>", first.String())

	ref := aidbox.NewReference(cli, "Practitioner", "dr1")

	doctor, err := ref.Resolve(ctx)
	require.NoError(t, err)

	name, err := doctor.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "House", name.String())

	none, err := cli.Resources("Patient").Where("name", "Nobody").First(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)
}
