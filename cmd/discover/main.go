// Command discover crawls a public site and prints its ranked pages as JSON.
//
// Usage:
//
//	discover -url https://shop.example -query "espresso grinder" -types blog,product
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/enhancemyseo/enhancemyseo/internal/discovery"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

func main() {
	defaults := discovery.DefaultConfig()
	var (
		siteURL      = flag.String("url", "", "Site to discover (required)")
		query        = flag.String("query", "", "Optional relevance query")
		limit        = flag.Int("limit", 10, "Maximum pages to print")
		typesInput   = flag.String("types", "", "Comma-separated page types (blog,product,service,category,about,other)")
		budget       = flag.Duration("budget", defaults.Budget, "Total crawl budget")
		maxFetch     = flag.Int("max-fetch", defaults.MaxFetch, "Maximum pages fetched for content")
		allowPrivate = flag.Bool("allow-private", false, "Permit loopback and private hosts")
		verbose      = flag.Bool("v", false, "Log crawl progress to stderr")
	)
	flag.Parse()

	if *siteURL == "" {
		fmt.Fprintln(os.Stderr, "-url is required")
		flag.Usage()
		os.Exit(2)
	}

	types, err := parseTypes(*typesInput)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	d := discovery.New(discovery.Config{
		Budget:       *budget,
		MaxFetch:     *maxFetch,
		AllowPrivate: *allowPrivate,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *budget+d.Config().PageTimeout)
	defer cancel()

	result, err := d.Discover(ctx, discovery.Request{
		URL:   *siteURL,
		Query: *query,
		Limit: *limit,
		Types: types,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "discover:", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}

func parseTypes(input string) ([]model.PageType, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	var types []model.PageType
	for _, part := range strings.Split(input, ",") {
		t := model.PageType(strings.ToLower(strings.TrimSpace(part)))
		if t == "" {
			continue
		}
		if !t.IsValid() {
			return nil, fmt.Errorf("invalid page type: %s", part)
		}
		types = append(types, t)
	}
	return types, nil
}
