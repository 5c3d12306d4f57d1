package planner

import (
	"context"
	"errors"

	"planner/internal/kv"
	"planner/internal/log"
)

// readJSON loads the value at key. Missing and malformed values both yield
// the zero value; malformed ones are logged.
func readJSON[T any](ctx context.Context, p *Planner, key string) (T, error) {
	v, _, err := kv.GetJSON[T](ctx, p.store, key)
	if errors.Is(err, kv.ErrMalformed) {
		p.logger.WarnContext(ctx, "Malformed stored value, using default",
			log.FieldKey, key,
			log.FieldError, err)
		return v, nil
	}
	return v, err
}
