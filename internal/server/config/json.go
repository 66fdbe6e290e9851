package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/diary/internal/flagx"
	"github.com/dmitrijs2005/diary/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "72h" and integer nanoseconds are accepted. Pointer
// fields distinguish "absent" from an explicit zero value.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SessionValidityDuration      timex.Duration `json:"session_validity_duration"`
	ConfirmationValidityDuration timex.Duration `json:"confirmation_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	SMTPAddr                     string         `json:"smtp_addr"`
	MailFrom                     string         `json:"mail_from"`
	BaseURL                      string         `json:"base_url"`
	NATSURL                      string         `json:"nats_url"`
	PageSize                     int            `json:"page_size"`
	KeepBlankCustomFields        *bool          `json:"keep_blank_custom_fields"`
}

// parseJson overlays values from the JSON file named by -c / -config onto
// config. Keys missing from the file leave the current values untouched.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SMTPAddr, c.SMTPAddr)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.BaseURL, c.BaseURL)
	setString(&config.NATSURL, c.NATSURL)

	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.ConfirmationValidityDuration.Duration > 0 {
		config.ConfirmationValidityDuration = c.ConfirmationValidityDuration.Duration
	}
	if c.PageSize > 0 {
		config.PageSize = c.PageSize
	}
	if c.KeepBlankCustomFields != nil {
		config.KeepBlankCustomFields = *c.KeepBlankCustomFields
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
