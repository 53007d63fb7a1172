package evaluations

import (
	"context"
	"fmt"
	"strings"
)

// NewStore opens the store for the configured driver.
func NewStore(ctx context.Context, driver, databaseURL string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "memory":
		return NewInMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(databaseURL)
	case "postgres", "":
		return NewPostgresStore(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}
