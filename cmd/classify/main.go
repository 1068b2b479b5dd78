// Command classify sends image files to the classification service once and
// prints the label with the suggestions the app would show for it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moodlift/internal/classify"
	"moodlift/internal/config"
	"moodlift/internal/frames"
	"moodlift/internal/suggest"
	"moodlift/internal/telemetry"
)

type result struct {
	File        string   `json:"file"`
	Label       string   `json:"label,omitempty"`
	Glyph       string   `json:"glyph,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Eligible    bool     `json:"eligible_for_games"`
	Error       string   `json:"error,omitempty"`
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	endpoint := flag.String("url", cfg.ClassifierURL, "classification service endpoint")
	timeout := flag.Duration("timeout", cfg.ClassifierTimeout, "per-request timeout")
	asJSON := flag.Bool("json", false, "print one JSON object per file")
	verbose := flag.Bool("v", false, "log requests to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: classify [flags] image...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	client, err := classify.NewHTTPClient(classify.Config{Endpoint: *endpoint, Timeout: *timeout})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	var c classify.Classifier = client
	if *verbose {
		c = classify.Chain(client, classify.Log(telemetry.NewLogger(os.Stderr, cfg.Level()), "cli"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := false
	enc := json.NewEncoder(os.Stdout)
	for _, path := range flag.Args() {
		res := classifyFile(ctx, c, path)
		if res.Error != "" {
			failed = true
		}
		if *asJSON {
			_ = enc.Encode(res)
			continue
		}
		printResult(res)
	}
	if failed {
		os.Exit(1)
	}
}

func classifyFile(ctx context.Context, c classify.Classifier, path string) result {
	res := result{File: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	label, err := c.Classify(ctx, frames.FromBytes(data, time.Now()))
	if err != nil {
		res.Error = err.Error()
		if errors.Is(err, classify.ErrTransport) {
			res.Error = "classification service unavailable: " + err.Error()
		}
		return res
	}
	res.Label = label
	if label == classify.LabelNoFace {
		return res
	}
	s := suggest.For(label)
	res.Glyph = s.Glyph
	res.Suggestions = s.Items
	res.Eligible = suggest.EligibleForUpliftGame(label)
	return res
}

func printResult(res result) {
	switch {
	case res.Error != "":
		fmt.Printf("%s: error: %s\n", res.File, res.Error)
	case res.Label == classify.LabelNoFace:
		fmt.Printf("%s: no face found\n", res.File)
	default:
		fmt.Printf("%s: %s %s\n", res.File, res.Label, res.Glyph)
		for _, s := range res.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
		if res.Eligible {
			fmt.Println("  games: offered")
		}
	}
}
