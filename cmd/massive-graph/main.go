// Command massive-graph is a demo harness for the in-memory document
// storage and indexing core: it wires config, store, and pipeline
// together and exercises them from a small set of pflag subcommands.
// It does not listen on the network or talk to other nodes — it
// exists to drive the storage core end to end from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/econic-ai/massive-graph/internal/config"
	"github.com/econic-ai/massive-graph/internal/docstore"
	"github.com/econic-ai/massive-graph/internal/id"
	"github.com/econic-ai/massive-graph/internal/pipeline"
	"github.com/econic-ai/massive-graph/internal/store"
	"github.com/econic-ai/massive-graph/internal/wire"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.FromEnv()
	setupLogging(cfg.LogLevel)

	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch args[0] {
	case "serve":
		return cmdServe(cfg, args[1:])
	case "put":
		return cmdPut(cfg, args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "massive-graph: unknown command %q\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: massive-graph <command> [flags]

Commands:
  serve   Run the pipeline in the foreground, applying deltas until interrupted
  put     Apply a single delta against a fresh in-memory store and print the result
  help    Show this message`)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}

// cmdPut creates a single user/document, applies one OpSet delta to it,
// and prints the resulting version. It is the smallest possible
// end-to-end exercise of store.Store without standing up a pipeline.
func cmdPut(cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	payload := fs.StringP("payload", "p", "", "payload bytes to set (required)")
	docType := fs.Uint8("doc-type", 1, "document type tag")
	schemaFamily := fs.Uint32("schema-family", 1, "schema family id")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *payload == "" {
		fmt.Fprintln(os.Stderr, "put: --payload is required")
		return 2
	}

	st := store.New(store.Config{
		StrictUsers:        false,
		ChunkClass:         cfg.ChunkClass,
		StreamPageCapacity: cfg.StreamPageCapacity,
	})

	userID := id.RandomID16()
	docID := id.RandomID16()
	if _, err := st.CreateDocument(userID, docID, *docType, *schemaFamily, time.Now().UnixNano()); err != nil {
		fmt.Fprintf(os.Stderr, "put: create document: %v\n", err)
		return 1
	}

	delta := wire.Delta{DocID: docID, Op: wire.OpSet, Payload: []byte(*payload)}
	header, err := st.ApplyDelta(userID, delta, id.RandomID8(), id.RandomID16())
	if err != nil {
		fmt.Fprintf(os.Stderr, "put: apply delta: %v\n", err)
		return 1
	}

	doc, err := st.GetDocument(userID, docID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "put: get document: %v\n", err)
		return 1
	}

	fmt.Printf("user=%s doc=%s delta=%s status=%s version=%d payload=%q\n",
		userID, docID, header.DeltaID, header.Status(), doc.CurrentVersion().VersionID, doc.CurrentPayload())
	return 0
}

// cmdServe starts a pipeline against a fresh store, creates one demo
// document, and blocks until interrupted, submitting one OpSet delta per
// second and logging each delta's final status at debug level. Its
// purpose is to demonstrate Start/Shutdown and the
// per-document worker loop running under real signal handling.
func cmdServe(cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	workers := fs.IntP("workers", "w", cfg.WorkerThreads, "pipeline worker count")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	st := store.New(store.Config{
		StrictUsers:        false,
		ChunkClass:         cfg.ChunkClass,
		StreamPageCapacity: cfg.StreamPageCapacity,
	})

	userID := id.RandomID16()
	docID := id.RandomID16()
	if _, err := st.CreateDocument(userID, docID, 1, 1, time.Now().UnixNano()); err != nil {
		log.Error().Err(err).Msg("create demo document")
		return 1
	}

	p := pipeline.New(st, *workers, 256)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Shutdown()

	log.Info().Int("workers", *workers).Str("user", userID.String()).Str("doc", docID.String()).
		Msg("massive-graph pipeline started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	seq := 0
	for {
		select {
		case <-stop:
			log.Info().Msg("massive-graph shutting down")
			return 0
		case <-tick.C:
			seq++
			deltaID := id.RandomID8()
			sub := pipeline.Submission{
				UserID:     userID,
				Delta:      wire.Delta{DocID: docID, Op: wire.OpSet, Payload: []byte(fmt.Sprintf("tick-%d", seq))},
				DeltaID:    deltaID,
				ExecutorID: id.RandomID16(),
			}
			if err := p.SubmitDelta(sub); err != nil {
				log.Error().Err(err).Msg("submit delta")
				continue
			}
			logDeltaOutcome(p, deltaID)
		}
	}
}

func logDeltaOutcome(p *pipeline.Pipeline, deltaID id.ID8) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status, err := p.GetDeltaStatus(deltaID)
		if err != nil {
			return
		}
		if status == docstore.DeltaApplied || status == docstore.DeltaRejected || status == docstore.DeltaFailed {
			log.Debug().Str("delta", deltaID.String()).Str("status", status.String()).Msg("delta settled")
			return
		}
		time.Sleep(time.Millisecond)
	}
}
