package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/nmapconv/internal/errors"
	"github.com/anstrom/nmapconv/internal/logging"
)

const sshScan = `<?xml version="1.0"?>
<nmaprun>
  <host>
    <status state="up" reason="syn-ack" reason_ttl="64"/>
    <address addr="10.0.0.1" addrtype="ipv4"/>
    <ports>
      <port portid="22" protocol="tcp">
        <state state="open"/>
        <service name="ssh" product="OpenSSH" version="9.6"/>
      </port>
    </ports>
  </host>
  <runstats><hosts up="1" down="0" total="1"/></runstats>
</nmaprun>
`

// executeCommand runs a fresh root command. A --config pointing at a missing
// file is prepended unless the caller passes one, so that a config.yaml in
// the working directory never leaks into tests.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	hasConfig := false
	for _, arg := range args {
		if arg == "--config" || strings.HasPrefix(arg, "--config=") {
			hasConfig = true
		}
	}
	if !hasConfig {
		args = append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...)
	}

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "nmapconv XML_FILE JSON_FILE", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Version)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	pretty := cmd.Flags().Lookup("pretty")
	require.NotNil(t, pretty)
	assert.Equal(t, "false", pretty.DefValue)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "summary")
	assert.Contains(t, names, "version")
}

func TestConvertCommand(t *testing.T) {
	t.Run("compact output", func(t *testing.T) {
		dir := t.TempDir()
		src := writeFile(t, dir, "scan.xml", sshScan)
		dst := filepath.Join(dir, "scan.json")

		stdout, stderr, err := executeCommand(t, src, dst)
		require.NoError(t, err)

		assert.Equal(t, "Successfully converted "+src+" to "+dst+"\n", stdout)
		assert.Empty(t, stderr)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), `{"scan_info":{},"hosts":[`))
		assert.Contains(t, string(data), `"service":{"name":"ssh","product":"OpenSSH","version":"9.6"`)
	})

	t.Run("pretty flag", func(t *testing.T) {
		dir := t.TempDir()
		src := writeFile(t, dir, "scan.xml", sshScan)
		dst := filepath.Join(dir, "scan.json")

		_, _, err := executeCommand(t, src, dst, "--pretty")
		require.NoError(t, err)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "{\n  \"hosts\": ["))
	})

	t.Run("pretty from config file", func(t *testing.T) {
		dir := t.TempDir()
		src := writeFile(t, dir, "scan.xml", sshScan)
		dst := filepath.Join(dir, "scan.json")
		cfg := writeFile(t, dir, "config.yaml", "output:\n  pretty: true\n  indent: \"\\t\"\n")

		_, _, err := executeCommand(t, "--config", cfg, src, dst)
		require.NoError(t, err)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "{\n\t\"hosts\": ["))
	})

	t.Run("pretty from environment", func(t *testing.T) {
		t.Setenv("NMAPCONV_OUTPUT_PRETTY", "true")

		dir := t.TempDir()
		src := writeFile(t, dir, "scan.xml", sshScan)
		dst := filepath.Join(dir, "scan.json")

		_, _, err := executeCommand(t, src, dst)
		require.NoError(t, err)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "{\n  \"hosts\": ["))
	})

	t.Run("verbose logs to stderr", func(t *testing.T) {
		dir := t.TempDir()
		src := writeFile(t, dir, "scan.xml", sshScan)

		stdout, stderr, err := executeCommand(t, "-v", src, filepath.Join(dir, "scan.json"))
		require.NoError(t, err)

		assert.Contains(t, stdout, "Successfully converted")
		assert.Contains(t, stderr, "Conversion completed")
		assert.Contains(t, stderr, "conversion_id=")
		assert.NotContains(t, stdout, "Conversion completed")
	})
}

func TestConvertCommandFailures(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(t *testing.T, dir string) (src, dst string)
		expectedCode errors.ErrorCode
		diagnostic   func(src, dst string) string
		outputExists bool
	}{
		{
			name: "input not found",
			setup: func(_ *testing.T, dir string) (string, string) {
				return filepath.Join(dir, "missing.xml"), filepath.Join(dir, "out.json")
			},
			expectedCode: errors.CodeFileNotFound,
			diagnostic:   func(src, _ string) string { return "File not found: " + src },
		},
		{
			name: "malformed input",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeFile(t, dir, "bad.xml", "<nmaprun><host>"), filepath.Join(dir, "out.json")
			},
			expectedCode: errors.CodeParse,
			diagnostic:   func(_, _ string) string { return "Error parsing XML: " },
		},
		{
			name: "unwritable destination",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeFile(t, dir, "scan.xml", sshScan), filepath.Join(dir, "missing", "out.json")
			},
			expectedCode: errors.CodeWrite,
			diagnostic:   func(_, _ string) string { return "Error writing JSON file: " },
		},
		{
			name: "destination is a directory",
			setup: func(t *testing.T, dir string) (string, string) {
				out := filepath.Join(dir, "out")
				require.NoError(t, os.Mkdir(out, 0o750))
				return writeFile(t, dir, "scan.xml", sshScan), out
			},
			expectedCode: errors.CodeWrite,
			diagnostic:   func(_, _ string) string { return "Error writing JSON file: " },
			outputExists: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := tt.setup(t, t.TempDir())

			stdout, stderr, err := executeCommand(t, src, dst)
			require.Error(t, err)

			assert.True(t, errors.IsCode(err, tt.expectedCode), "unexpected error: %v", err)
			assert.True(t, strings.HasPrefix(errors.Diagnostic(err), tt.diagnostic(src, dst)),
				"unexpected diagnostic: %s", errors.Diagnostic(err))
			assert.Empty(t, stdout)
			assert.Empty(t, stderr, "default logging should stay quiet")

			_, statErr := os.Stat(dst)
			if tt.outputExists {
				assert.NoError(t, statErr)
			} else {
				assert.True(t, os.IsNotExist(statErr))
			}
		})
	}
}

func TestConvertCommandArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"one argument", []string{"scan.xml"}},
		{"three arguments", []string{"a.xml", "b.json", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "arg(s)")
		})
	}
}

func TestConvertCommandInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "scan.xml", sshScan)
	dst := filepath.Join(dir, "scan.json")
	cfg := writeFile(t, dir, "config.yaml", "logging:\n  level: loud\n")

	_, _, err := executeCommand(t, "--config", cfg, src, dst)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConvertCommandMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "scan.xml", sshScan)
	prom := filepath.Join(dir, "nmapconv.prom")
	cfg := writeFile(t, dir, "config.yaml", "metrics:\n  enabled: true\n  textfile: "+prom+"\n")

	_, _, err := executeCommand(t, "--config", cfg, src, filepath.Join(dir, "scan.json"))
	require.NoError(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `nmapconv_convert_total{status="success"} 1`)
	assert.Contains(t, string(data), "nmapconv_convert_hosts_total 1")
	assert.Contains(t, string(data), "nmapconv_convert_ports_total 1")

	t.Run("failure is counted", func(t *testing.T) {
		_, _, err := executeCommand(t, "--config", cfg, filepath.Join(dir, "missing.xml"), filepath.Join(dir, "x.json"))
		require.Error(t, err)

		data, err := os.ReadFile(prom)
		require.NoError(t, err)
		assert.Contains(t, string(data), `nmapconv_convert_total{status="not_found"} 1`)
	})
}

func TestConvertCommandLogFile(t *testing.T) {
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	dir := t.TempDir()
	src := writeFile(t, dir, "scan.xml", sshScan)
	logFile := filepath.Join(dir, "logs", "nmapconv.log")
	cfg := writeFile(t, dir, "config.yaml", "logging:\n  level: info\n  output: "+logFile+"\n")

	cmd, opts := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--config", cfg, src, filepath.Join(dir, "scan.json")})

	require.NoError(t, cmd.Execute())
	require.NotNil(t, opts.logger)
	opts.closeLogging()
	opts.logger.Info("after close")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Conversion completed")
	assert.NotContains(t, string(data), "after close")
	assert.Empty(t, errOut.String())
}

func TestSummaryCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "scan.xml", sshScan)

	t.Run("table", func(t *testing.T) {
		stdout, _, err := executeCommand(t, "summary", src)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Total hosts: 1, Up: 1, Down: 0, Open ports: 1")
		assert.Contains(t, stdout, "22/tcp")
		assert.Contains(t, stdout, "OpenSSH 9.6")
	})

	t.Run("markdown", func(t *testing.T) {
		stdout, _, err := executeCommand(t, "summary", src, "--format", "markdown")
		require.NoError(t, err)
		assert.Contains(t, stdout, "# Scan Summary")
		assert.Contains(t, stdout, "## 10.0.0.1")
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, _, err := executeCommand(t, "summary", src, "--format", "html")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported summary format")
	})

	t.Run("missing report", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.xml")
		_, _, err := executeCommand(t, "summary", missing)
		require.Error(t, err)
		assert.Equal(t, "File not found: "+missing, errors.Diagnostic(err))
	})

	t.Run("requires one argument", func(t *testing.T) {
		_, _, err := executeCommand(t, "summary")
		require.Error(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	originalVersion, originalCommit, originalBuildTime := version, commit, buildTime
	defer SetVersion(originalVersion, originalCommit, originalBuildTime)

	SetVersion("1.2.3", "abc1234", "2024-01-02")

	stdout, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "nmapconv version 1.2.3\n  commit: abc1234\n  built:  2024-01-02\n", stdout)
	assert.Equal(t, "1.2.3 (commit: abc1234, built: 2024-01-02)", getVersion())
}
