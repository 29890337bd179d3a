// pawd is the pet progress engine CLI: local-first pet state with a
// background sync daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawsync/pawsync/internal/collab"
	"github.com/pawsync/pawsync/internal/config"
	"github.com/pawsync/pawsync/internal/localstore"
	"github.com/pawsync/pawsync/internal/progress"
	"github.com/pawsync/pawsync/internal/remote"
	"github.com/pawsync/pawsync/internal/syncd"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pawd",
	Short: "Local-first virtual pet progress engine",
	Long: `pawd keeps virtual pet progress (feeding, adventures, sleep, quests,
levels, evolution) in a local SQLite database and syncs it with the
remote document store in the background.

All commands work offline; mutations queue and flush on the next
connected session or daemon run.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default pawsync.yaml in . or ~/.config/pawsync)")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(adoptCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(adventureCmd)
	rootCmd.AddCommand(sleepCmd)
	rootCmd.AddCommand(wakeCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(resetCmd)
}

// engine bundles the pieces a command needs and knows how to shut them down.
type engine struct {
	cfg   *config.Config
	store *localstore.Store
	svc   *progress.Service
	coord *syncd.Coordinator
	log   *log.Logger
}

// openEngine wires store, remote client and coordinator from configuration.
// A missing or unreachable remote degrades to offline mode instead of
// failing: mutations queue in the local database.
func openEngine() (*engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := log.New(os.Stderr, "[pawd] ", log.LstdFlags)

	store, err := localstore.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	var (
		coord  *syncd.Coordinator
		syncer progress.Syncer
	)
	if cfg.RemoteURL != "" && cfg.AccountID != "" {
		remoteStore, conn := dialRemote(cfg, logger)
		syncCfg := syncd.DefaultConfig()
		syncCfg.PullInterval = cfg.PullInterval
		syncCfg.WatchDebounce = cfg.WatchDebounce
		syncCfg.Logger = logger
		coord, err = syncd.New(store, remoteStore, collab.StaticAccount(cfg.AccountID), conn, syncCfg)
		if err != nil {
			store.Close()
			return nil, err
		}
		syncer = coord
	}

	svc, err := progress.New(store, syncer, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &engine{cfg: cfg, store: store, svc: svc, coord: coord, log: logger}, nil
}

func dialRemote(cfg *config.Config, logger *log.Logger) (syncd.RemoteStore, collab.Connectivity) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := remote.Dial(ctx, cfg.RemoteURL, logger)
	if err != nil {
		logger.Printf("Remote store unreachable, running offline: %v", err)
		return remote.Offline{}, collab.AlwaysOffline{}
	}
	return client, collab.AlwaysOnline{}
}

// close waits for in-flight uploads, drains the pending queue if it can,
// then releases the database.
func (e *engine) close() {
	if e.coord != nil {
		if err := e.coord.Stop(); err != nil {
			e.log.Printf("Warning: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := e.coord.FlushPending(ctx); err != nil {
			e.log.Printf("Pending mutations kept for the next session: %v", err)
		}
		cancel()
	}
	if err := e.store.Close(); err != nil {
		e.log.Printf("Warning: %v", err)
	}
}
