package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pawsync/pawsync/internal/localstore"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background sync daemon",
	Long: `Run the sync daemon in the foreground until interrupted.

The daemon flushes queued mutations, reconciles with the remote store on
an interval, watches the local database for writes by other processes,
and reacts to connectivity changes. Requires remote_url and account_id
to be configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		if eng.coord == nil {
			return fmt.Errorf("daemon requires remote_url and account_id to be configured")
		}
		if eng.cfg.LogFile != "" {
			eng.log.SetOutput(&lumberjack.Logger{
				Filename:   eng.cfg.LogFile,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     30, // days
				Compress:   true,
			})
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events := eng.store.Subscribe()
		defer eng.store.Unsubscribe(events)
		go logChanges(eng.log, events)

		eng.log.Printf("Daemon starting (db=%s remote=%s)", eng.cfg.DBPath, eng.cfg.RemoteURL)
		return eng.coord.Start(ctx)
	},
}

// logChanges mirrors local store activity into the daemon log.
func logChanges(logger *log.Logger, events <-chan localstore.ChangeEvent) {
	for ev := range events {
		switch ev.Kind {
		case localstore.ChangeRecord:
			if ev.Record == nil {
				logger.Printf("Record removed: %s", ev.PetID)
				continue
			}
			logger.Printf("Record changed: %s (level %d, updated %s)",
				ev.Record.PetID, ev.Record.Level.CurrentLevel, ev.Record.General.LastUpdatedAt.Format("15:04:05.000"))
		case localstore.ChangeSettings:
			logger.Printf("Settings changed: selected=%s", ev.Settings.CurrentSelectedPetID)
		}
	}
}
