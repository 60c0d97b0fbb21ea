package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tacoworks/tollgate/internal/adapter"
)

// watchWorker polls sync metadata and pulls the payload whenever the server
// has a newer version than the state file records.
type watchWorker struct {
	app      *App
	file     string
	interval time.Duration
}

// Run checks once immediately, then on every tick until ctx is cancelled.
// A failed check is logged and the loop keeps polling.
func (w *watchWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.app.pullIfNewer(ctx, w.file); err != nil {
			w.app.logger.Warn().Err(err).Str("app", w.app.syncApp).Msg("watch tick failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// pullIfNewer fetches metadata and downloads the payload only when the
// server version is ahead of the locally recorded one.
func (a *App) pullIfNewer(ctx context.Context, file string) error {
	state, err := a.state.Load()
	if err != nil {
		return err
	}

	meta, err := a.adapter.ReadSyncMeta(ctx, a.syncApp)
	if errors.Is(err, adapter.ErrNotFound) {
		// A server that has nothing stored yet is not an error.
		return nil
	}
	if err != nil {
		return err
	}

	if meta.Version <= state.Apps[a.syncApp].Version {
		return nil
	}

	doc, err := a.adapter.ReadSync(ctx, a.syncApp)
	if err != nil {
		return err
	}

	if err := a.writePayload(file, doc.Data); err != nil {
		return err
	}

	state.Apps[a.syncApp] = AppState{Version: doc.Meta.Version, Checksum: doc.Meta.Checksum}
	if err := a.state.Save(state); err != nil {
		return err
	}

	if file != "" {
		fmt.Fprintf(a.out, "pulled %s version %d (device %s)\n", a.syncApp, doc.Meta.Version, doc.Meta.DeviceID)
	}
	return nil
}
