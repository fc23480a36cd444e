package sheets

import (
	"context"

	"budget/internal/core"
)

// Ports for outbound adapters.
type (
	// MirrorWriter appends an expense row to the off-site mirror.
	MirrorWriter interface {
		Append(ctx context.Context, username string, e core.Expense) (rowRef string, err error)
	}
)
