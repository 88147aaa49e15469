package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlagCommandLine() {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
}

func TestLoadAppliesFlagDefaultsWithNoFile(t *testing.T) {
	resetFlagCommandLine()
	cfg, verify, err := Load([]string{"cmd"})
	require.NoError(t, err)
	assert.False(t, verify)
	assert.Equal(t, "localhost:50051", cfg.Transport.Endpoint)
	assert.Equal(t, 8, cfg.Transport.MaxConcurrentStreams)
	assert.Equal(t, 256, cfg.Buffer.Capacity)
}

func TestLoadOverlaysYAMLFile(t *testing.T) {
	resetFlagCommandLine()
	dir := t.TempDir()
	path := filepath.Join(dir, "dp-query.yaml")
	yamlBody := "transport:\n  endpoint: tempo-federated:50051\n  max_retries: 7\nbuffer:\n  capacity: 64\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	cfg, _, err := Load([]string{"cmd", "-config.file", path})
	require.NoError(t, err)
	assert.Equal(t, "tempo-federated:50051", cfg.Transport.Endpoint)
	assert.Equal(t, 7, cfg.Transport.MaxRetries)
	assert.Equal(t, 64, cfg.Buffer.Capacity)
}

func TestLoadEnvVarOverridesYAML(t *testing.T) {
	resetFlagCommandLine()
	dir := t.TempDir()
	path := filepath.Join(dir, "dp-query.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport:\n  endpoint: from-yaml:50051\n"), 0o644))

	t.Setenv("DP_API_TRANSPORT_ENDPOINT", "from-env:50051")

	cfg, _, err := Load([]string{"cmd", "-config.file", path})
	require.NoError(t, err)
	assert.Equal(t, "from-env:50051", cfg.Transport.Endpoint)
}

func TestLoadFlagOverridesEnvAndYAML(t *testing.T) {
	resetFlagCommandLine()
	dir := t.TempDir()
	path := filepath.Join(dir, "dp-query.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport:\n  endpoint: from-yaml:50051\n"), 0o644))

	t.Setenv("DP_API_TRANSPORT_ENDPOINT", "from-env:50051")

	cfg, _, err := Load([]string{"cmd", "-config.file", path, "-transport.endpoint", "from-flag:50051"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag:50051", cfg.Transport.Endpoint)
}

func TestLoadExpandsEnvInConfigFile(t *testing.T) {
	resetFlagCommandLine()
	t.Setenv("DP_QUERY_TEST_ENDPOINT", "expanded-host:50051")
	dir := t.TempDir()
	path := filepath.Join(dir, "dp-query.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport:\n  endpoint: ${DP_QUERY_TEST_ENDPOINT}\n"), 0o644))

	cfg, _, err := Load([]string{"cmd", "-config.file", path, "-config.expand-env"})
	require.NoError(t, err)
	assert.Equal(t, "expanded-host:50051", cfg.Transport.Endpoint)
}

func TestLoadReportsConfigVerifyFlag(t *testing.T) {
	resetFlagCommandLine()
	_, verify, err := Load([]string{"cmd", "-config.verify"})
	require.NoError(t, err)
	assert.True(t, verify)
}

func TestValidateCollectsMissingRequiredFields(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport.endpoint")
}

func TestCheckConfigWarnsOnSuspectValues(t *testing.T) {
	cfg := &Config{}
	cfg.Transport.MaxConcurrentStreams = 0
	cfg.Buffer.Capacity = 0
	cfg.Transport.CallTimeout = 0

	warnings := cfg.CheckConfig()
	assert.Len(t, warnings, 3)
}

func TestExampleYAMLRendersDefaults(t *testing.T) {
	out, err := ExampleYAML()
	require.NoError(t, err)
	assert.Contains(t, out, "endpoint: localhost:50051")
}
