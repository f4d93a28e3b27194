// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command bchsweep derives Bitcoin Cash deposit addresses and sweeps their
// balance to a destination address.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, nil); err != nil {
		if isHelp(err) {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}

		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by the commands.
type app struct {
	cfg *config
	out io.Writer

	// httpClient overrides the HTTP client of the indexer client when
	// set.
	httpClient *http.Client

	registry *prometheus.Registry
	ctx      context.Context
}

// run parses args, dispatches the selected command and writes its result to
// out.
func run(args []string, out io.Writer, httpClient *http.Client) error {
	cfg := defaultConfig()
	a := &app{
		cfg:        &cfg,
		out:        out,
		httpClient: httpClient,
		registry:   newRegistry(),
		ctx:        context.Background(),
	}

	parser, err := parseConfig(&cfg, args, a.addCommands)
	if err != nil {
		return err
	}
	parser.CommandHandler = a.execute

	_, err = parser.ParseArgs(args)

	return err
}

// execute prepares logging and metrics once all options are parsed and then
// runs cmd.
func (a *app) execute(cmd flags.Commander, args []string) error {
	if cmd == nil {
		return nil
	}

	if err := a.cfg.finish(); err != nil {
		return err
	}
	defer closeLogRotator()

	if a.cfg.PrometheusListen != "" {
		stop, err := startMetricsServer(a.registry, a.cfg.PrometheusListen)
		if err != nil {
			return fmt.Errorf("unable to serve metrics: %w", err)
		}
		defer stop()
	}

	ctx, cancel := signal.NotifyContext(
		a.ctx, os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()
	a.ctx = ctx

	return cmd.Execute(args)
}
