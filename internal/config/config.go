package config

import (
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Backend string

const (
	BackendLocal  Backend = "local"  // In-process OpenAir parser (default)
	BackendRemote Backend = "remote" // Remote conversion web service
)

type (
	Config struct {
		HTTP
		Global
		Source
		Converter
		FTP
		Publish
		Sync
		Audit
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		Debug                    bool
	}
	Source struct {
		URL     string
		Timeout time.Duration
	}
	Converter struct {
		Backend      Backend
		URL          string // Remote conversion endpoint
		Timeout      time.Duration
		TempDir      string // Empty means os.TempDir()
		SkipFailures bool   // Local parser: skip malformed records instead of failing
	}
	FTP struct {
		Host          string
		Port          int
		User          string
		Password      string
		Timeout       time.Duration
		StagedUploads bool // Upload to a .tmp name and rename into place
	}
	Publish struct {
		PayloadFileName  string
		MetadataFileName string
		Directories      []string
		TargetsFile      string // Optional YAML file overriding Directories
	}
	Sync struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Audit struct {
		Dir           string // Empty disables run audit files
		RetentionDays int    // Audit files older than this are pruned daily
	}
	Auth struct {
		TriggerTokenHash string // bcrypt hash; empty leaves /run open
	}
)

// Addr returns host:port of the FTP endpoint.
func (f FTP) Addr() string {
	if _, _, err := net.SplitHostPort(f.Host); err == nil {
		return f.Host
	}
	return net.JoinHostPort(f.Host, strconv.Itoa(f.Port))
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("debug", false)

	v.SetDefault("source_url", DefaultSourceURL)
	v.SetDefault("fetch_timeout", "30s")

	v.SetDefault("converter_backend", string(BackendLocal))
	v.SetDefault("converter_url", "")
	v.SetDefault("converter_timeout", "60s")
	v.SetDefault("converter_temp_dir", "")
	v.SetDefault("converter_skip_failures", true)

	// FTP credentials keep the legacy *_HEATMAP names
	v.SetDefault("ftp_server_name_heatmap", "")
	v.SetDefault("ftp_login_heatmap", "")
	v.SetDefault("ftp_password_heatmap", "")
	v.SetDefault("ftp_port", 21)
	v.SetDefault("ftp_timeout", "30s")
	v.SetDefault("ftp_staged_uploads", false)

	v.SetDefault("payload_file_name", DefaultPayloadFileName)
	v.SetDefault("metadata_file_name", DefaultMetadataFileName)
	v.SetDefault("publish_directories", strings.Join(DefaultPublishDirectories, ","))
	v.SetDefault("targets_file", "")

	v.SetDefault("sync_enabled", false)
	v.SetDefault("sync_schedule", "0 3 * * *") // Daily at 03:00

	v.SetDefault("audit_dir", "")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("trigger_token_hash", "")

	backend := Backend(strings.ToLower(v.GetString("CONVERTER_BACKEND")))
	if backend != BackendLocal && backend != BackendRemote {
		log.Printf("WARNING: unknown CONVERTER_BACKEND %q, falling back to %q", backend, BackendLocal)
		backend = BackendLocal
	}

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			Debug:                    v.GetBool("DEBUG"),
		},
		Source: Source{
			URL:     v.GetString("SOURCE_URL"),
			Timeout: v.GetDuration("FETCH_TIMEOUT"),
		},
		Converter: Converter{
			Backend:      backend,
			URL:          v.GetString("CONVERTER_URL"),
			Timeout:      v.GetDuration("CONVERTER_TIMEOUT"),
			TempDir:      v.GetString("CONVERTER_TEMP_DIR"),
			SkipFailures: v.GetBool("CONVERTER_SKIP_FAILURES"),
		},
		FTP: FTP{
			Host:          v.GetString("FTP_SERVER_NAME_HEATMAP"),
			Port:          v.GetInt("FTP_PORT"),
			User:          v.GetString("FTP_LOGIN_HEATMAP"),
			Password:      v.GetString("FTP_PASSWORD_HEATMAP"),
			Timeout:       v.GetDuration("FTP_TIMEOUT"),
			StagedUploads: v.GetBool("FTP_STAGED_UPLOADS"),
		},
		Publish: Publish{
			PayloadFileName:  v.GetString("PAYLOAD_FILE_NAME"),
			MetadataFileName: v.GetString("METADATA_FILE_NAME"),
			Directories:      splitList(v.GetString("PUBLISH_DIRECTORIES")),
			TargetsFile:      v.GetString("TARGETS_FILE"),
		},
		Sync: Sync{
			Enabled:  v.GetBool("SYNC_ENABLED"),
			Schedule: v.GetString("SYNC_SCHEDULE"),
		},
		Audit: Audit{
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Auth: Auth{
			TriggerTokenHash: v.GetString("TRIGGER_TOKEN_HASH"),
		},
	}
}
