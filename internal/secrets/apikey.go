package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"prospector-engine/internal/config"
)

const (
	// “Service” groups this app’s secrets in the OS keychain.
	KeyringService = "prospector"

	// Env fallback for headless deployments without a keychain.
	APIKeyEnv = "PHANTOMBUSTER_API_KEY"
)

// GetAgentKey resolves the agent API key: keychain first, env fallback.
func GetAgentKey(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		key, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(key) != "" {
			return key, nil
		}
	}

	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		return key, nil
	}

	return "", errors.New("agent API key not found (set it in the keychain or via " + APIKeyEnv + ")")
}

func SetAgentKey(keyringAccount string, key string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("API key is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, key)
}

func DeleteAgentKey(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

// AgentKeyringAccount names the keychain entry for the configured agent.
func AgentKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf("prospector:agent:%s", cfg.Agent.ID)
}
