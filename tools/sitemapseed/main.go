package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/openrsl/rslserver/internal/discovery"
	"github.com/openrsl/rslserver/internal/rsl"
)

// sitemapseed fetches a site's sitemap and prints a generated draft RSL
// document for its pages.
func main() {
	sitemapURL := flag.String("sitemap", "", "explicit sitemap URL (default <site>/sitemap.xml)")
	maxPages := flag.Int("max-pages", 100, "cap on sitemap entries")
	userAgent := flag.String("user-agent", "RSL Server Bot v1.0", "user agent for fetches")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: sitemapseed [flags] <site-url>\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	siteURL := flag.Arg(0)

	d := discovery.NewDiscoverer(&discovery.Config{
		SiteURL:    siteURL,
		SitemapURL: *sitemapURL,
		UserAgent:  *userAgent,
		MaxPages:   *maxPages,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pages, err := d.FetchSitemap(ctx)
	if err != nil {
		log.Fatalf("Error fetching sitemap: %v", err)
	}

	fmt.Fprintf(os.Stderr, "Total URLs found: %d\n", len(pages))

	draft := discovery.SeedDocument(pages)
	fmt.Print(rsl.Generate(draft))
}
