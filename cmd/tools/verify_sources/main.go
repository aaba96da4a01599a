package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/david/grant-curator/internal/sourcecheck"
)

// Fetches a source URL the way the moderation preview endpoint does and
// dumps what a reviewer would see. Useful when a funder site renders oddly.
func main() {
	timeout := flag.Duration("timeout", 45*time.Second, "fetch timeout")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("usage: verify_sources <url> [url...]")
	}

	svc := sourcecheck.NewService(nil)

	for _, target := range flag.Args() {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		preview, err := svc.Preview(ctx, target)
		cancel()
		if err != nil {
			log.Printf("FAIL %s: %v", target, err)
			continue
		}

		fmt.Printf("== %s\n", target)
		fmt.Printf("   status=%d content-type=%s\n", preview.StatusCode, preview.ContentType)
		if preview.Title != "" {
			fmt.Printf("   title: %s\n", preview.Title)
		}
		if len(preview.DateCandidates) > 0 {
			fmt.Printf("   dates: %s\n", strings.Join(preview.DateCandidates, ", "))
		}
		if preview.Excerpt != "" {
			excerpt := preview.Excerpt
			if len(excerpt) > 400 {
				excerpt = excerpt[:400] + "…"
			}
			fmt.Printf("   excerpt:\n%s\n", indent(excerpt, "     "))
		}
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
