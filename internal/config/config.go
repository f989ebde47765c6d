// Package config defines the process-wide, read-only-after-init
// configuration, embedding go-zero's rest.RestConf.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zeromicro/go-zero/rest"

	"github.com/sampleforge/vault/third_party/cache"
	"github.com/sampleforge/vault/third_party/database"
	"github.com/sampleforge/vault/third_party/search"
)

// Config is the full process configuration. It is loaded once at
// startup with conf.MustLoad and passed by pointer into every
// subsystem that needs it; nothing mutates it afterward.
type Config struct {
	rest.RestConf

	Database    database.PostgresConfig
	Redis       cache.RedisConfig
	MeiliSearch search.MeiliSearchConfig
	Token       TokenConfig
	Mail        MailConfig

	// AdminLogin names the account bootstrapped with manage_users on
	// first run (cmd/vaultseed) and exempted from maintenance-mode
	// lockout.
	AdminLogin string `json:",env=ADMIN_LOGIN"`

	RecaptchaSecret     string `json:",optional,env=RECAPTCHA_SECRET"`
	EnableRegistration  bool   `json:",default=false,env=ENABLE_REGISTRATION"`
	EnableMaintenance   bool   `json:",default=false,env=ENABLE_MAINTENANCE"`
}

// TokenConfig holds the process-wide token-signing secret and the issuer stamped into every minted token.
type TokenConfig struct {
	SecretKey string `json:",env=SECRET_KEY"`
	Issuer    string `json:",default=sampleforge-vault"`
}

// MailConfig carries the Notifier's SMTP transport settings and the
// base URL interpolated into mail templates.
type MailConfig struct {
	From        string `json:",env=MAIL_FROM"`
	SMTP        string `json:",env=MAIL_SMTP"`
	BaseURL     string `json:",env=BASE_URL"`
	TemplateDir string `json:",default=./templates/mail"`
}

// SMTPHostPort splits the "host" or "host:port" form, defaulting the
// port to 25.
func (m MailConfig) SMTPHostPort() (host string, port int, err error) {
	if !strings.Contains(m.SMTP, ":") {
		return m.SMTP, 25, nil
	}
	host, portStr, err := splitHostPort(m.SMTP)
	if err != nil {
		return "", 0, err
	}
	port, err = strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("mail_smtp: invalid port %q: %w", portStr, err)
	}
	return host, port, nil
}

func splitHostPort(hostport string) (host, port string, err error) {
	idx := strings.LastIndex(hostport, ":")
	if idx < 0 {
		return "", "", fmt.Errorf("mail_smtp: missing port separator in %q", hostport)
	}
	return hostport[:idx], hostport[idx+1:], nil
}

// Validate checks the required configuration keys are present.
func (c *Config) Validate() error {
	type requirement struct {
		key     string
		missing bool
	}
	reqs := []requirement{
		{"secret_key", c.Token.SecretKey == ""},
		{"mail_from", c.Mail.From == ""},
		{"mail_smtp", c.Mail.SMTP == ""},
		{"base_url", c.Mail.BaseURL == ""},
		{"admin_login", c.AdminLogin == ""},
	}
	var bad []string
	for _, r := range reqs {
		if r.missing {
			bad = append(bad, r.key)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("config: missing required keys: %s", strings.Join(bad, ", "))
	}
	if _, _, err := c.Mail.SMTPHostPort(); err != nil {
		return err
	}
	return nil
}
