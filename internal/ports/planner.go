package ports

import "context"

// Planner is the external planning/tool-calling process. Ask never returns
// an empty answer together with a nil error; a bridge failure degrades to a
// fallback text plus a non-nil error for logging.
type Planner interface {
	Ask(ctx context.Context, instruction string) (string, error)
}
