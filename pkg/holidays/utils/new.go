package holidaysutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/trickle/pkg/holidays"
	"github.com/papercomputeco/trickle/pkg/holidays/inmemory"
	"github.com/papercomputeco/trickle/pkg/holidays/sqlstore"
)

type NewStoreOpts struct {
	Driver string
	DSN    string
	Logger *slog.Logger
}

func NewStore(ctx context.Context, o *NewStoreOpts) (holidays.Store, error) {
	switch o.Driver {
	case "", "memory":
		return inmemory.NewStore(), nil
	case "sqlite":
		dsn := o.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		return sqlstore.NewSQLite(ctx, dsn, o.Logger)
	case "postgres":
		if o.DSN == "" {
			return nil, fmt.Errorf("postgres holiday store requires a dsn")
		}
		return sqlstore.NewPostgres(ctx, o.DSN, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported holiday store driver: %s", o.Driver)
	}
}
