package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ent0n29/voiceeval/internal/config"
)

func runCommand(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func setServiceEnv(t *testing.T) {
	t.Helper()
	for _, def := range config.DefaultRoles() {
		t.Setenv(config.AssistantEnvKey(def.ID), "")
	}
	t.Setenv("VAPI_PUBLIC_KEY", "pk-test")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_BIND_ADDR", "127.0.0.1:0")
	t.Setenv("APP_METRICS_NAMESPACE", "test_cmd")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, appName+" version: "+version+"\n", out)
}

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "roles", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRolesCommand(t *testing.T) {
	setServiceEnv(t)
	t.Setenv("ASSISTANT_ID_TEAM_LEAD", "asst-tl")

	out, err := runCommand(t, context.Background(), "roles")
	require.NoError(t, err)
	assert.Contains(t, out, "team_lead")
	assert.Contains(t, out, "asst-tl")
	assert.Contains(t, out, "ASSISTANT_ID_SALES_MANAGER")
	assert.Contains(t, out, "1 of 4 roles offered")
}

func TestServeFailsWithoutPublicKey(t *testing.T) {
	setServiceEnv(t)
	t.Setenv("VAPI_PUBLIC_KEY", "")

	_, err := runCommand(t, context.Background(), "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VAPI_PUBLIC_KEY")
}

func TestServeStopsWhenContextEnds(t *testing.T) {
	setServiceEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := runCommand(t, ctx, "serve")
		done <- err
	}()
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(20 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
