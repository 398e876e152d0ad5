package database_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wonny/claimlens/pkg/config"
	"github.com/wonny/claimlens/pkg/database"
)

// Example demonstrates how to use the database package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	info, err := db.DescribeTable(ctx, cfg.Dataset.Table)
	if err != nil {
		log.Fatalf("Failed to describe table: %v", err)
	}
	fmt.Printf("%s: %d rows, %d columns\n", info.Name, info.Rows, len(info.Columns))
}
