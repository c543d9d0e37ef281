// Command import loads a legacy JSON database into the SQLite store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"smm-bot/internal/infra/sqlite3"
	"smm-bot/internal/storage"
)

func main() {
	dbPath := flag.String("db", "./data/smm.db", "path to SQLite database")
	file := flag.String("file", "./database.json", "path to the legacy JSON database")
	dryRun := flag.Bool("dry-run", false, "show what would be imported without writing to DB")
	flag.Parse()

	if err := run(context.Background(), *dbPath, *file, *dryRun); err != nil {
		log.Fatalf("import failed: %v", err)
	}
}

func run(ctx context.Context, dbPath, file string, dryRun bool) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "open legacy file")
	}
	defer f.Close()

	state, err := storage.DecodeLegacy(f)
	if err != nil {
		return errors.Wrap(err, "decode legacy file")
	}

	fmt.Printf("Read %d users, %d deposits, %d orders from %s\n",
		len(state.Users), len(state.Deposits), len(state.Orders), file)

	if dryRun {
		fmt.Println("Dry run: nothing written")
		return nil
	}

	db, err := sqlite3.New(ctx, sqlite3.WithPath(dbPath))
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer db.Close()

	st := storage.New(db.DB)
	if err := st.Migrate(ctx); err != nil {
		return errors.Wrap(err, "migrate")
	}
	if err := st.Restore(ctx, state); err != nil {
		return errors.Wrap(err, "restore")
	}

	fmt.Printf("Imported into %s\n", dbPath)
	return nil
}
