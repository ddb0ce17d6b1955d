package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/brandlift/mediaplanner/internal/planner"
	"github.com/brandlift/mediaplanner/internal/report"
)

// render-plan-report turns a saved session snapshot (the JSON emitted
// by brand-analysis or GET /v1/session) into a markdown, HTML, or PDF
// media plan.
func main() {
	in := flag.String("in", "", "Path to snapshot JSON (default stdin)")
	out := flag.String("out", "plan.pdf", "Output path (.md, .html, or .pdf)")
	flag.Parse()

	var blob []byte
	var err error
	if *in == "" {
		blob, err = io.ReadAll(os.Stdin)
	} else {
		blob, err = os.ReadFile(*in)
	}
	if err != nil {
		log.Fatal(err)
	}

	var snap planner.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		log.Fatalf("parse snapshot: %v", err)
	}

	markdown := report.BuildMarkdown(snap)

	switch {
	case strings.HasSuffix(*out, ".md"):
		err = os.WriteFile(*out, []byte(markdown), 0o644)
	case strings.HasSuffix(*out, ".html"):
		var html string
		html, err = report.BuildHTML(markdown)
		if err == nil {
			err = os.WriteFile(*out, []byte(html), 0o644)
		}
	default:
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		var pdf []byte
		pdf, err = report.NewChromiumPDFRenderer().Render(ctx, markdown)
		if err == nil {
			err = os.WriteFile(*out, pdf, 0o644)
		}
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s", *out)
}
