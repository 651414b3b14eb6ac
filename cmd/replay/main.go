// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/relabs-tech/movement_detection/internal/app"
	"github.com/relabs-tech/movement_detection/internal/motion"
)

func main() {
	policyName := flag.String("policy", "distance", "motion policy: distance or step")
	seed := flag.Bool("seed", false, "seed the reference from the first sample (step policy)")
	flag.Parse()

	logger := app.NewLogger(os.Stderr, slog.LevelInfo)

	p, err := motion.PolicyByName(*policyName)
	if err != nil {
		logger.Error("bad policy", "err", err)
		os.Exit(2)
	}
	if *seed {
		p.SeedReference = true
	}

	var in io.Reader = os.Stdin
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			logger.Error("open replay file", "err", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	sum, err := app.RunReplay(in, p, os.Stdout)
	if err != nil {
		logger.Error("replay failed", "err", err)
		os.Exit(1)
	}
	fmt.Printf("samples=%d rejected=%d moving=%d total=%.3f\n", sum.Samples, sum.Rejected, sum.Moving, sum.Total)
}
