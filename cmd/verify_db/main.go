package main

import (
	"context"
	"fmt"
	"log"

	"github.com/david/grant-curator/internal/db"
)

// Quick sanity check of catalog health after migrations or bulk changes.
func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	var total, normalized, withEmbedding, withMission int
	err = pool.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE timeline_status <> ''),
			count(embedding),
			count(*) FILTER (WHERE mission <> '')
		FROM grants
	`).Scan(&total, &normalized, &withEmbedding, &withMission)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	fmt.Printf("Total grants: %d\n", total)
	fmt.Printf("Normalized: %d\n", normalized)
	fmt.Printf("With embedding: %d\n", withEmbedding)
	fmt.Printf("With mission text: %d\n", withMission)

	rows, err := pool.Query(ctx, "SELECT status, count(*) FROM contributions GROUP BY status ORDER BY status")
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()

	fmt.Println("Contributions:")
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		fmt.Printf("  %s: %d\n", status, count)
	}
}
