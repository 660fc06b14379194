package main

import (
	"context"
	"fmt"

	"github.com/taskly/taskly-go/internal/config"
	"github.com/taskly/taskly-go/internal/docstore"
	"github.com/taskly/taskly-go/internal/repository"
	"github.com/taskly/taskly-go/internal/store"
)

type storeSet struct {
	users store.UserStore
	tasks store.TaskStore
	close func(context.Context) error
}

// openStores connects the backend selected by STORE_DRIVER and prepares its
// schema or indexes.
func openStores(ctx context.Context, cfg config.Config) (storeSet, error) {
	switch cfg.StoreDriver {
	case "mysql":
		db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return storeSet{}, err
		}
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return storeSet{}, err
		}
		return storeSet{
			users: repository.NewUserRepository(db),
			tasks: repository.NewTaskRepository(db),
			close: func(context.Context) error { return db.Close() },
		}, nil

	case "mongo":
		client, db, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storeSet{}, err
		}
		if err := docstore.EnsureIndexes(ctx, db); err != nil {
			client.Disconnect(ctx)
			return storeSet{}, err
		}
		return storeSet{
			users: docstore.NewUserStore(db),
			tasks: docstore.NewTaskStore(db),
			close: client.Disconnect,
		}, nil

	default:
		return storeSet{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
