package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/vault/api"
)

// ErrSecretNotFound is returned when the path or the key within it is missing.
var ErrSecretNotFound = errors.New("vault: secret not found")

type SecretManager struct {
	client *api.Client
}

func NewSecretManager(address, token string) (*SecretManager, error) {
	config := api.DefaultConfig()
	if config.Error != nil {
		return nil, fmt.Errorf("vault: default config: %w", config.Error)
	}
	config.Address = address
	config.Timeout = 10 * time.Second
	config.MaxRetries = 1

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("vault: new client: %w", err)
	}

	if token != "" {
		client.SetToken(token)
	}

	return &SecretManager{client: client}, nil
}

// ReadString reads key from the secret at path. KV v2 paths
// (secret/data/...) and KV v1 paths are both accepted.
func (sm *SecretManager) ReadString(ctx context.Context, path, key string) (string, error) {
	secret, err := sm.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, path)
	}

	data := secret.Data
	if nested, ok := secret.Data["data"].(map[string]interface{}); ok {
		data = nested
	}

	value, ok := data[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s#%s", ErrSecretNotFound, path, key)
	}
	return value, nil
}

// ReadStripeSecretKey loads the processor credential at startup.
func (sm *SecretManager) ReadStripeSecretKey(ctx context.Context, path, key string) (string, error) {
	if key == "" {
		key = "secret_key"
	}
	return sm.ReadString(ctx, path, key)
}
