package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "propscout"

// APIKey resolves a source's API key: environment first (the deployment
// path), OS keyring second (the local-dev path). Empty string when neither
// is set; callers treat that as "not configured", never as an error.
func APIKey(envVar string) string {
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v
	}
	if pw, err := keyring.Get(KeyringService, envVar); err == nil {
		return strings.TrimSpace(pw)
	}
	return ""
}

// SetAPIKey stores a key in the OS keyring under the env-var name, so env
// and keyring lookups share one identifier.
func SetAPIKey(envVar, key string) error {
	if strings.TrimSpace(envVar) == "" {
		return errors.New("secret name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, envVar, key)
}

// MailPassword fetches the IMAP password for the mail-alert source.
func MailPassword(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	pw, err := keyring.Get(KeyringService, account)
	if err != nil || strings.TrimSpace(pw) == "" {
		return "", errors.New("IMAP password not found in keychain")
	}
	return pw, nil
}

// SetMailPassword stores the IMAP password.
func SetMailPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}
