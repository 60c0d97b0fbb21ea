package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tacoworks/tollgate/internal/adapter"
	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/internal/workers"
	"github.com/tacoworks/tollgate/models"
)

const usage = `tollgate-cli [global flags] <command> [flags]

Commands:
  balance                      show the current token balance
  history [-limit n] [-type t] list recent credit transactions
  authorize -resource name     spend tokens on a metered resource
  push [-file path]            upload a sync payload (stdin by default)
  pull [-file path]            download the latest payload (stdout by default)
  meta                         show sync metadata without the payload
  snapshot -version n [-file path]
                               download one historical payload version
  watch [-file path]           poll for newer versions until interrupted
`

// App is the CLI runtime behind every command.
type App struct {
	adapter       adapter.ServerAdapter
	state         *StateStore
	syncApp       string
	deviceID      string
	watchInterval time.Duration
	in            io.Reader
	out           io.Writer
	logger        *logger.Logger
}

// NewApp wires the command dispatcher. The device id comes from config when
// set, otherwise from the state file, otherwise a fresh one is generated and
// persisted so the same device keeps its identity across invocations.
func NewApp(serverAdapter adapter.ServerAdapter, cfg *config.ClientConfig, logger *logger.Logger) (Client, error) {
	state := NewStateStore(cfg.Sync.StateFile)

	loaded, err := state.Load()
	if err != nil {
		return nil, fmt.Errorf("load sync state: %w", err)
	}

	deviceID := cfg.Sync.DeviceID
	if deviceID == "" {
		deviceID = loaded.DeviceID
	}
	if deviceID == "" {
		deviceID = utils.NewUUIDGenerator().Generate()
	}
	if loaded.DeviceID != deviceID {
		loaded.DeviceID = deviceID
		if err := state.Save(loaded); err != nil {
			return nil, fmt.Errorf("persist device id: %w", err)
		}
	}

	return &App{
		adapter:       serverAdapter,
		state:         state,
		syncApp:       cfg.Sync.App,
		deviceID:      deviceID,
		watchInterval: cfg.Workers.WatchInterval,
		in:            os.Stdin,
		out:           os.Stdout,
		logger:        logger,
	}, nil
}

// Run dispatches one command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errors.New("no command given")
	}

	if a.adapter.Token() == "" {
		return errors.New("no session token configured (set ADAPTER_SESSION_TOKEN or the config file's adapter.session_token)")
	}

	command, rest := args[0], args[1:]
	switch command {
	case "balance":
		return a.runBalance(ctx)
	case "history":
		return a.runHistory(ctx, rest)
	case "authorize":
		return a.runAuthorize(ctx, rest)
	case "push":
		return a.runPush(ctx, rest)
	case "pull":
		return a.runPull(ctx, rest)
	case "meta":
		return a.runMeta(ctx)
	case "snapshot":
		return a.runSnapshot(ctx, rest)
	case "watch":
		return a.runWatch(ctx, rest)
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *App) runBalance(ctx context.Context) error {
	balance, err := a.adapter.GetBalance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "balance: %s\n", balance)
	return nil
}

func (a *App) runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(a.out)
	limit := fs.Int("limit", 0, "maximum number of transactions to list")
	txType := fs.String("type", "", "filter by transaction type (purchase or use)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	transactions, err := a.adapter.GetHistory(ctx, *limit, *txType)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		fmt.Fprintln(a.out, "no transactions")
		return nil
	}

	for _, tx := range transactions {
		fmt.Fprintf(a.out, "%s  %-8s  %+6d  balance %d",
			tx.CreatedAt.Format(time.RFC3339), tx.Type, tx.Amount, tx.BalanceAfter)
		if tx.Description != "" {
			fmt.Fprintf(a.out, "  %s", tx.Description)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

func (a *App) runAuthorize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("authorize", flag.ContinueOnError)
	fs.SetOutput(a.out)
	resource := fs.String("resource", "", "metered resource name to authorize")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *resource == "" {
		return errors.New("authorize needs -resource")
	}

	result, err := a.adapter.Authorize(ctx, models.AuthorizeRequest{
		ResourceName: *resource,
		DeviceID:     a.deviceID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "authorized %s (balance %s)\n", *resource, result.Balance)
	return nil
}

func (a *App) runPush(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("push", flag.ContinueOnError)
	fs.SetOutput(a.out)
	file := fs.String("file", "", "payload file to push (stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	payload, err := a.readPayload(*file)
	if err != nil {
		return err
	}

	// Canonical form keeps local checksums comparable with server ones.
	var compact bytes.Buffer
	if err := json.Compact(&compact, payload); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	state, err := a.state.Load()
	if err != nil {
		return err
	}

	req := models.SyncWriteRequest{
		Data:     json.RawMessage(compact.Bytes()),
		DeviceID: a.deviceID,
	}
	if known := state.Apps[a.syncApp]; known.Version > 0 {
		req.ExpectedVersion = &known.Version
	}

	meta, err := a.adapter.WriteSync(ctx, a.syncApp, req)
	if errors.Is(err, adapter.ErrVersionConflict) {
		return fmt.Errorf("%w; run pull to pick up the newer version first", err)
	}
	if err != nil {
		return err
	}

	state.Apps[a.syncApp] = AppState{Version: meta.Version, Checksum: meta.Checksum}
	if err := a.state.Save(state); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "pushed %s version %d (%d bytes)\n", a.syncApp, meta.Version, meta.Size)
	return nil
}

func (a *App) runPull(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pull", flag.ContinueOnError)
	fs.SetOutput(a.out)
	file := fs.String("file", "", "file to write the payload to (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	doc, err := a.adapter.ReadSync(ctx, a.syncApp)
	if err != nil {
		return err
	}

	if err := a.writePayload(*file, doc.Data); err != nil {
		return err
	}

	state, err := a.state.Load()
	if err != nil {
		return err
	}
	state.Apps[a.syncApp] = AppState{Version: doc.Meta.Version, Checksum: doc.Meta.Checksum}
	if err := a.state.Save(state); err != nil {
		return err
	}

	if *file != "" {
		fmt.Fprintf(a.out, "pulled %s version %d into %s\n", a.syncApp, doc.Meta.Version, *file)
	}
	return nil
}

func (a *App) runMeta(ctx context.Context) error {
	meta, err := a.adapter.ReadSyncMeta(ctx, a.syncApp)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "app:       %s\n", a.syncApp)
	fmt.Fprintf(a.out, "version:   %d\n", meta.Version)
	fmt.Fprintf(a.out, "modified:  %s\n", meta.LastModified.Format(time.RFC3339))
	fmt.Fprintf(a.out, "device:    %s\n", meta.DeviceID)
	fmt.Fprintf(a.out, "checksum:  %s\n", meta.Checksum)
	fmt.Fprintf(a.out, "size:      %d\n", meta.Size)
	return nil
}

func (a *App) runSnapshot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	fs.SetOutput(a.out)
	version := fs.Int64("version", 0, "payload version to download")
	file := fs.String("file", "", "file to write the payload to (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *version <= 0 {
		return errors.New("snapshot needs a positive -version")
	}

	snapshot, err := a.adapter.ReadSyncSnapshot(ctx, a.syncApp, *version)
	if err != nil {
		return err
	}

	if err := a.writePayload(*file, snapshot.Data); err != nil {
		return err
	}
	if *file != "" {
		fmt.Fprintf(a.out, "snapshot %s version %d into %s\n", a.syncApp, snapshot.Version, *file)
	}
	return nil
}

func (a *App) runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(a.out)
	file := fs.String("file", "", "file to write newer payloads to (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	fmt.Fprintf(a.out, "watching %s every %s\n", a.syncApp, a.watchInterval)

	workers.NewWorkers(&watchWorker{
		app:      a,
		file:     *file,
		interval: a.watchInterval,
	}).Run(ctx)
	return nil
}

// readPayload reads from the given file, or stdin when file is empty.
func (a *App) readPayload(file string) ([]byte, error) {
	if file == "" {
		data, err := io.ReadAll(a.in)
		if err != nil {
			return nil, fmt.Errorf("read payload from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read payload file: %w", err)
	}
	return data, nil
}

// writePayload writes to the given file, or to stdout when file is empty.
// Stdout gets a trailing newline so pulled payloads are pipe-friendly.
func (a *App) writePayload(file string, data []byte) error {
	if file == "" {
		if _, err := a.out.Write(data); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
		fmt.Fprintln(a.out)
		return nil
	}
	if err := writeFileAtomic(file, data); err != nil {
		return fmt.Errorf("write payload file %s: %w", file, err)
	}
	return nil
}
