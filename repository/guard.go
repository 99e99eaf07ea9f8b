package repository

import "context"

// ImportGuard remembers content fingerprints of applied batches so re-running
// the same source file does not double-count monetary totals and product
// quantities.
type ImportGuard interface {
	Applied(ctx context.Context, fingerprint string) (bool, error)
	MarkApplied(ctx context.Context, fingerprint string) error
}
