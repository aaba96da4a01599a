package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/grant-curator/internal/db"
)

// Prints the moderation queue so a reviewer can scan it from a terminal
// without hitting the API.
func main() {
	status := flag.String("status", "pending", "contribution status to list")
	limit := flag.Int("limit", 25, "max rows")
	flag.Parse()

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	contributions, err := store.ListContributions(ctx, db.ListContributionsParams{
		Status: *status,
		Limit:  *limit,
	})
	if err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Grant", "Field", "Status", "Source", "Submitted"})

	for _, c := range contributions {
		grantRef := "(proposed)"
		if c.GrantID != nil {
			grantRef = c.GrantID.String()[:8]
		} else if c.ProposedGrant != nil && c.ProposedGrant.Title != "" {
			grantRef = truncate(c.ProposedGrant.Title, 28)
		}

		t.AppendRow(table.Row{
			c.ID.String()[:8],
			grantRef,
			c.FieldName,
			string(c.Status),
			truncate(c.SourceURL, 40),
			c.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	t.Render()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
