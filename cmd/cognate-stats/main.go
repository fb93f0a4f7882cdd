package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cognicore/cognate/pkg/cognate/analytics"
	"github.com/cognicore/cognate/pkg/cognate/store"
	"github.com/cognicore/cognate/pkg/cognate/store/sqlite"
)

// Report is the JSON written by --out.
type Report struct {
	Stories      int                     `json:"stories"`
	Averages     []analytics.WordAverage `json:"cognate_averages"`
	Distribution analytics.Distribution  `json:"distribution"`
}

func main() {
	var (
		dbPath   = flag.String("db", "", "Story database path (required)")
		minCount = flag.Int("min-count", analytics.DefaultMinCount, "Ignore cognates seen in fewer sentences")
		top      = flag.Int("top", 0, "Print only the N best words (0 = all)")
		limit    = flag.Int("limit", 0, "Only read the N most recent stories (0 = all)")
		outPath  = flag.String("out", "", "Write the full report as JSON to this file")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}

	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	report, err := buildReport(ctx, st, *limit, *minCount)
	if err != nil {
		log.Fatal(err)
	}

	if *outPath != "" {
		if err := writeReport(*outPath, report); err != nil {
			log.Fatal(err)
		}
		log.Printf("Cognate averages saved to %s", *outPath)
	}
	printReport(os.Stdout, report, *top)
}

func buildReport(ctx context.Context, st store.Store, limit, minCount int) (Report, error) {
	stories, err := st.ListStories(ctx, limit)
	if err != nil {
		return Report{}, fmt.Errorf("list stories: %w", err)
	}
	return Report{
		Stories:      len(stories),
		Averages:     analytics.Sorted(analytics.CognateAverages(stories, minCount)),
		Distribution: analytics.SentenceDistribution(stories),
	}, nil
}

func writeReport(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printReport(w io.Writer, r Report, top int) {
	fmt.Fprintf(w, "Stories: %d  Sentences: %d\n\n", r.Stories, r.Distribution.Total)

	fmt.Fprintln(w, "Cognate Words Sorted by Average Score:")
	words := r.Averages
	if top > 0 && len(words) > top {
		words = words[:top]
	}
	for _, a := range words {
		fmt.Fprintf(w, "%s: %.2f (%d)\n", a.Word, a.Average, a.Count)
	}

	fmt.Fprintln(w, "\nBy difficulty:")
	for lvl, s := range r.Distribution.ByLevel {
		fmt.Fprintf(w, "  %d: %d sentences, %.1f words, %.1f cognates\n", lvl, s.Sentences, s.AverageLength, s.AverageCognates)
	}
}
