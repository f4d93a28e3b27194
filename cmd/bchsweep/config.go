// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/bchsweep/indexer"
	"github.com/btcsuite/bchsweep/netparams"
	"github.com/btcsuite/bchsweep/pkg/bchunit"
	"github.com/btcsuite/bchsweep/sweep"
	"github.com/btcsuite/bchsweep/utxo"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "bchsweep.conf"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "bchsweep.log"
	defaultNetwork        = "mainnet"
	defaultTimeout        = indexer.DefaultTimeout

	// defaultEndpoint is used when no endpoint is configured.
	defaultEndpoint = "https://bch2.trezor.io/api/v1"
)

var (
	defaultAppDataDir = btcutil.AppDataDir("bchsweep", false)
	defaultConfigFile = filepath.Join(defaultAppDataDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultAppDataDir, defaultLogDirname)
)

// config defines the global options of the command line.
type config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	LogDir     string `long:"logdir" description:"Directory to log output; empty disables file logging"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical} or <subsystem>=<level>,..."`
	NoFileLog  bool   `long:"nofilelogging" description:"Disable logging to the log file"`

	Network        string        `long:"network" description:"Network to operate on {mainnet, testnet}"`
	Endpoints      []string      `long:"endpoint" description:"Indexer base URL; may be given multiple times"`
	FeePerByte     int64         `long:"feeperbyte" description:"Fee rate in sat/byte"`
	FeePerKB       int64         `long:"feeperkb" description:"Fee rate in sat/kb, rounded up to whole sat/byte; overrides --feeperbyte"`
	MinRelayFee    int64         `long:"minrelayfee" description:"Minimum absolute fee in satoshis"`
	MaxConcurrency int           `long:"maxconcurrency" description:"Maximum concurrent transaction fetches"`
	DebugMaxUTXOs  int           `long:"debugmaxutxos" description:"Sweep at most this many UTXOs (testing only)"`
	Timeout        time.Duration `long:"timeout" description:"Per request indexer timeout"`
	UserAgent      string        `long:"useragent" description:"User-Agent sent to indexers"`

	PrometheusListen string `long:"prometheuslisten" description:"Serve Prometheus metrics on this address, e.g. localhost:9120"`
}

// defaultConfig returns the config used before any file or flag is parsed.
func defaultConfig() config {
	return config{
		ConfigFile:     defaultConfigFile,
		LogDir:         defaultLogDir,
		DebugLevel:     defaultLogLevel,
		Network:        defaultNetwork,
		FeePerByte:     int64(bchunit.DefaultSatPerByte),
		MinRelayFee:    int64(bchunit.DefaultMinRelayFee),
		MaxConcurrency: utxo.DefaultMaxConcurrency,
		Timeout:        defaultTimeout,
		UserAgent:      indexer.DefaultUserAgent,
	}
}

// sweepConfig converts the command line options into a sweep config.
func (c *config) sweepConfig() sweep.Config {
	endpoints := c.Endpoints
	if len(endpoints) == 0 {
		endpoints = []string{defaultEndpoint}
	}

	feePerByte := bchunit.SatPerByte(c.FeePerByte)
	if c.FeePerKB > 0 {
		feePerByte = bchunit.SatPerKByte(c.FeePerKB).FeePerByte()
	}

	return sweep.Config{
		Network:        c.Network,
		Endpoints:      endpoints,
		FeePerByte:     feePerByte,
		MinRelayFee:    btcutil.Amount(c.MinRelayFee),
		MaxConcurrency: c.MaxConcurrency,
		DebugMaxUTXOs:  c.DebugMaxUTXOs,
	}
}

// cleanAndExpandPath expands environment variables and a leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultAppDataDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	return filepath.Clean(os.ExpandEnv(path))
}

// parseConfig fills cfg from, in increasing order of precedence, the
// defaults, the config file and the command line, and returns the parser
// ready to dispatch the selected command. A missing config file is only an
// error when the path was given explicitly.
func parseConfig(cfg *config, args []string,
	addCommands func(*flags.Parser) error) (*flags.Parser, error) {

	// Pre-parse the command line options to see if an alternative config
	// file was specified. Help is left to the full parser so that the
	// commands are listed.
	preCfg := *cfg
	preParser := flags.NewParser(
		&preCfg, flags.HelpFlag|flags.PassDoubleDash|flags.IgnoreUnknown,
	)
	if _, err := preParser.ParseArgs(args); err != nil && !isHelp(err) {
		return nil, err
	}

	parser := flags.NewParser(cfg, flags.HelpFlag|flags.PassDoubleDash)
	if err := addCommands(parser); err != nil {
		return nil, err
	}

	configFile := cleanAndExpandPath(preCfg.ConfigFile)
	err := flags.NewIniParser(parser).ParseFile(configFile)
	if err != nil {
		optional := preCfg.ConfigFile == defaultConfigFile
		if !optional || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error parsing config file %v: "+
				"%w", configFile, err)
		}
	}

	return parser, nil
}

// isHelp reports whether err is the go-flags help request.
func isHelp(err error) bool {
	var flagsErr *flags.Error
	return errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp
}

// finish validates the parsed options and applies them to the logging
// system.
func (c *config) finish() error {
	c.LogDir = cleanAndExpandPath(c.LogDir)

	if _, err := netparams.ByName(c.Network); err != nil {
		return err
	}

	if err := parseAndSetDebugLevels(c.DebugLevel); err != nil {
		return err
	}

	if c.FeePerByte < 0 {
		return errors.New("feeperbyte must not be negative")
	}
	if c.FeePerKB < 0 {
		return errors.New("feeperkb must not be negative")
	}
	if c.MinRelayFee < 0 {
		return errors.New("minrelayfee must not be negative")
	}

	if !c.NoFileLog && c.LogDir != "" {
		logFile := filepath.Join(c.LogDir, c.Network, defaultLogFilename)
		if err := initLogRotator(logFile); err != nil {
			return err
		}
	}

	if len(c.Endpoints) == 0 {
		log.Warnf("No endpoint configured, using the default %v. "+
			"Running your own indexer is strongly recommended",
			defaultEndpoint)
	}

	return nil
}
