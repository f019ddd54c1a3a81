package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/yaseen-research/codex/app/config"
	"github.com/yaseen-research/codex/app/corpus"
	"github.com/yaseen-research/codex/app/index"
	"github.com/yaseen-research/codex/app/masaq"
	"github.com/yaseen-research/codex/app/notes"
	"github.com/yaseen-research/codex/app/research"
	"github.com/yaseen-research/codex/app/search"
	"github.com/yaseen-research/codex/app/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "server":
		runServer()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: codex <command> [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  server        Start the codex server")
}

func runServer() {
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	var address, dataDir string
	var port, rateLimit, gzipLevel int
	var behindLB bool
	flags.StringVarP(&address, "address", "a", "localhost", "Server address to bind")
	flags.IntVarP(&port, "port", "p", 5000, "Server port to bind")
	flags.StringVarP(&dataDir, "data-dir", "d", "",
		"data directory to read config.json and dataset files")
	flags.IntVar(&rateLimit, "rate-limit", 0, "Requests per second per client (0 disables)")
	flags.IntVar(&gzipLevel, "gzip-level", 0, "Gzip compression level (0 disables)")
	flags.BoolVar(&behindLB, "behind-load-balancer", false, "Trust forwarded client IPs")

	flags.Parse(os.Args[2:])

	if dataDir == "" {
		slog.Error("--data-dir not provided, stopping")
		os.Exit(1)
	}

	conf, err := config.Load(dataDir)
	if err != nil {
		slog.Error("error while loading configuration", "err", err)
		os.Exit(1)
	}

	corp, err := corpus.LoadFile(conf.Path(conf.CorpusFile))
	if err != nil {
		slog.Error("error while loading corpus", "err", err)
		os.Exit(1)
	}

	ds, err := masaq.LoadFile(conf.Path(conf.MasaqFile))
	if err != nil {
		slog.Error("error while loading masaq dataset", "err", err)
		os.Exit(1)
	}

	store, err := research.OpenSQLiteStore(conf.Path(conf.ResearchDB))
	if err != nil {
		slog.Error("error while opening research store", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	engine := search.New(corp, index.Build(corp), ds)
	ns := notes.NewService(conf.Path(conf.NotesDir), conf.Path(conf.LibraryDir))
	controller := server.NewCodexController(engine, store, ns, conf)

	fmt.Printf("Starting server on %s:%d\n", address, port)
	server.StartServer(controller, conf, config.ServerRuntimeConfig{
		Address:            address,
		Port:               port,
		RateLimit:          rateLimit,
		GzipLevel:          gzipLevel,
		BehindLoadBalancer: behindLB,
	})
}
