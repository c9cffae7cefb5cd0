// internal/core/ports/secrets.go
package ports

import "context"

// SecretsManager defines the port for signing-key retrieval. Implementations
// fetch lazily and cache with a TTL; they are safe for concurrent use.
type SecretsManager interface {
	GetSecret(ctx context.Context, key string) (string, error)
	GetSecrets(ctx context.Context, keys []string) (map[string]string, error)
	RefreshSecrets(ctx context.Context) error
}
