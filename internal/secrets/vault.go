package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vaultapi "github.com/hashicorp/vault/api"
)

// VaultOptions configures the Vault-backed secret provider.
type VaultOptions struct {
	Address     string
	Token       string
	Namespace   string
	SecretPath  string // e.g. secret/data/leadline/auth
	SecretField string // key inside the secret, default "jwt_secret"
}

const defaultVaultSecretField = "jwt_secret"

// Vault reads the signing secret from a Vault KV mount.
type Vault struct {
	client *vaultapi.Client
	path   string
	field  string
}

func NewVault(opts VaultOptions) (*Vault, error) {
	address := strings.TrimSpace(opts.Address)
	if address == "" {
		return nil, errors.New("vault address is required")
	}
	path := strings.Trim(strings.TrimSpace(opts.SecretPath), "/")
	if path == "" {
		return nil, errors.New("vault secret path is required")
	}
	field := strings.TrimSpace(opts.SecretField)
	if field == "" {
		field = defaultVaultSecretField
	}

	cfg := vaultapi.DefaultConfig()
	cfg.Address = address

	client, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client setup: %w", err)
	}
	if token := strings.TrimSpace(opts.Token); token != "" {
		client.SetToken(token)
	}
	if namespace := strings.TrimSpace(opts.Namespace); namespace != "" {
		client.SetNamespace(namespace)
	}

	return &Vault{client: client, path: path, field: field}, nil
}

func (v *Vault) JWTSecret(ctx context.Context) (string, error) {
	secret, err := v.client.Logical().ReadWithContext(ctx, v.path)
	if err != nil {
		return "", fmt.Errorf("vault read %s: %w", v.path, err)
	}
	if secret == nil || len(secret.Data) == 0 {
		return "", fmt.Errorf("vault secret %s is empty", v.path)
	}

	data := secret.Data
	// KV v2 nests the payload under "data".
	if nested, ok := data["data"].(map[string]any); ok {
		data = nested
	}

	value, _ := data[v.field].(string)
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("vault secret %s has no %q field", v.path, v.field)
	}
	return value, nil
}
