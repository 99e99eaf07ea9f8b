package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/clientdesk/backend/repository"
)

type importGuard struct {
	client    *redislib.Client
	prefix    string
	retention time.Duration
}

// NewImportGuard creates a Redis-backed fingerprint guard. A batch whose
// source+content fingerprint was already applied within the retention window
// is reported as a duplicate instead of being merged a second time.
func NewImportGuard(client *redislib.Client, retention time.Duration) repository.ImportGuard {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &importGuard{
		client:    client,
		prefix:    "import:batch:",
		retention: retention,
	}
}

func (g *importGuard) Applied(ctx context.Context, fingerprint string) (bool, error) {
	count, err := g.client.Exists(ctx, g.key(fingerprint)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (g *importGuard) MarkApplied(ctx context.Context, fingerprint string) error {
	return g.client.Set(ctx, g.key(fingerprint), time.Now().UTC().Format(time.RFC3339), g.retention).Err()
}

func (g *importGuard) key(fingerprint string) string {
	return fmt.Sprintf("%s%s", g.prefix, fingerprint)
}
