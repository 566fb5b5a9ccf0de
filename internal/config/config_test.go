package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile writes a YAML config into a temp dir and returns its path
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)

				assert.Equal(t, "investments_VC.csv", cfg.Dataset.Path)
				assert.Equal(t, "ISO-8859-1", cfg.Dataset.Encoding)
				assert.Equal(t, "IND", cfg.Dataset.TargetCountry)
				assert.Equal(t, 2000, cfg.Dataset.DefaultYearMin)
				assert.Equal(t, 2024, cfg.Dataset.DefaultYearMax)
				assert.Equal(t, 10, cfg.Dataset.TopN)

				assert.Equal(t, "filtered_indian_startups", cfg.Export.BaseName)
				assert.Equal(t, 10*time.Minute, cfg.Export.ArtifactTTL)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"STARTUPDASH_SERVER_PORT":              "9090",
				"STARTUPDASH_DATASET_TARGET_COUNTRY":   "USA",
				"STARTUPDASH_DATASET_TOP_N":            "5",
				"STARTUPDASH_EXPORT_ARTIFACT_TTL":      "1m",
				"STARTUPDASH_SECURITY_ALLOWED_ORIGINS": "http://a.test,http://b.test",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "USA", cfg.Dataset.TargetCountry)
				assert.Equal(t, 5, cfg.Dataset.TopN)
				assert.Equal(t, time.Minute, cfg.Export.ArtifactTTL)
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
			},
		},
		{
			name: "file values are kept when env is unset",
			file: "server:\n  port: 7070\ndataset:\n  path: /srv/data.csv\n  default_year_min: 1995\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "/srv/data.csv", cfg.Dataset.Path)
				assert.Equal(t, 1995, cfg.Dataset.DefaultYearMin)
				assert.Equal(t, 2024, cfg.Dataset.DefaultYearMax)
			},
		},
		{
			name: "env wins over file",
			file: "server:\n  port: 7070\n",
			env:  map[string]string{"STARTUPDASH_SERVER_PORT": "6060"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6060, cfg.Server.Port)
			},
		},
		{
			name: "unprefixed shell variables are ignored",
			file: "dataset:\n  path: /srv/investments_VC.csv\n",
			env: map[string]string{
				"PATH":        "/usr/bin:/bin",
				"HOST":        "build-box-17",
				"PORT":        "3000",
				"LEVEL":       "debug",
				"OUTPUT":      "file",
				"ENCODING":    "UTF-8",
				"ENABLED":     "false",
				"ENVIRONMENT": "staging",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/srv/investments_VC.csv", cfg.Dataset.Path)
				assert.Equal(t, "", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, "ISO-8859-1", cfg.Dataset.Encoding)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, "development", cfg.Observability.Environment)
			},
		},
		{
			name: "split word variables",
			env: map[string]string{
				"STARTUPDASH_DATASET_PATH":                "/data/vc.csv",
				"STARTUPDASH_SERVER_HOST":                 "0.0.0.0",
				"STARTUPDASH_SECURITY_ENABLE_CORS":        "false",
				"STARTUPDASH_SECURITY_RATE_LIMIT_ENABLED": "false",
				"STARTUPDASH_OBSERVABILITY_SAMPLE_RATIO":  "0.5",
				"STARTUPDASH_WEBSOCKET_MAX_MESSAGE_SIZE":  "8192",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/data/vc.csv", cfg.Dataset.Path)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.False(t, cfg.Security.EnableCORS)
				assert.False(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 0.5, cfg.Observability.SampleRatio)
				assert.Equal(t, int64(8192), cfg.WebSocket.MaxMessageSize)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"STARTUPDASH_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "inverted default years",
			file:    "dataset:\n  default_year_min: 2030\n  default_year_max: 2020\n",
			wantErr: true,
		},
		{
			name:    "unsupported trace exporter",
			env:     map[string]string{"STARTUPDASH_OBSERVABILITY_TRACE_EXPORTER": "jaeger"},
			wantErr: true,
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"STARTUPDASH_SERVER_READ_TIMEOUT": "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			} else {
				// Point at an empty file so a stray config.yaml in the tree is not picked up
				path = writeConfigFile(t, "")
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
}

func TestAddress(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Address())

	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9000
	assert.Equal(t, "127.0.0.1:9000", cfg.Address())
}
