// Package main resolves a YAML battle scenario offline and prints each
// round's log.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/scenario"
)

func main() {
	path := flag.String("scenario", "", "path to a scenario YAML file (required)")
	rounds := flag.Int("rounds", 0, "maximum rounds to resolve (0 = until combat ends)")
	quiet := flag.Bool("quiet", false, "print only the final summary")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: simulate -scenario <file> [-rounds N] [-quiet]")
		os.Exit(1)
	}

	start := time.Now()
	sc, err := scenario.LoadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	res, err := sc.Simulate(*rounds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("== %s ==\n", sc.Name)
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	if !*quiet {
		for _, r := range res.Rounds {
			fmt.Println()
			fmt.Println(strings.Join(r.Lines, "\n"))
		}
	}
	fmt.Println()
	fmt.Println(plain(res.Final.String()))
	fmt.Printf("\nRemaining health: %s %d, %s %d\n",
		res.Final.Attacker, res.Remaining(combat.Attacker),
		res.Final.Defender, res.Remaining(combat.Defender))
	fmt.Printf("simulated %d rounds in %s\n", len(res.Rounds), time.Since(start).Round(time.Microsecond))
}

// plain drops the chat code fences and backticks from a summary.
func plain(summary string) string {
	var out []string
	for _, l := range strings.Split(summary, "\n") {
		if strings.HasPrefix(l, "```") {
			continue
		}
		out = append(out, strings.ReplaceAll(l, "`", ""))
	}
	return strings.Join(out, "\n")
}
