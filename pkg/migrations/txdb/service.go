// Package txdb holds all the migrations for the transaction database
package txdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations is the registry all numbered migration files append to.
var Migrations = migrate.NewMigrations()

// Migrate runs all pending migrations for the transaction database
func Migrate(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}

	if group.IsZero() {
		log.Println("transaction DB is up to date")
	} else {
		log.Printf("transaction DB migrated to %s\n", group)
	}

	return nil
}

// Rollback reverts the last migration group of the transaction database
func Rollback(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, Migrations)

	group, err := migrator.Rollback(ctx)
	if err != nil {
		return err
	}

	if group.IsZero() {
		log.Println("nothing to roll back")
	} else {
		log.Printf("rolled back %s\n", group)
	}

	return nil
}
