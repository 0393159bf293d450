package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/niritools/taskbar/config"
	"github.com/niritools/taskbar/internal/pidfile"
	"github.com/niritools/taskbar/internal/taskbar"
	"github.com/niritools/taskbar/logging"
	"github.com/niritools/taskbar/pkg/paths"
)

// reloadDebounce coalesces the event bursts editors produce on save.
const reloadDebounce = 500 * time.Millisecond

func newStartCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon",
		Long:  "Start the taskbar daemon in foreground mode.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger("niri-taskbard")
			pidPath := paths.PidFilePath()
			sockPath := paths.SocketPath()

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("failed to prepare directories: %w", err)
			}

			// 1. Acquire lock
			if err := pidfile.Acquire(pidPath); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				if err := pidfile.Release(pidPath); err != nil {
					logger.Errorf("Failed to release pidfile: %v", err)
				}
			}()

			// 2. Load configuration
			var cfg *config.Config
			var err error
			if configPath != "" {
				cfg, err = config.Load(configPath)
			} else {
				cfg, err = config.LoadDefault()
			}
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			// 3. Store, engine, server
			st := taskbar.NewStore()
			eng := taskbar.NewEngine(st, cfg)
			srv := taskbar.NewServer(eng)

			// 4. Config watcher. An explicit --config path is not watched.
			if configPath == "" {
				watcher, err := config.NewWatcher(reloadDebounce, eng.SetConfig)
				if err != nil {
					logger.WithError(err).Warn("Config watching unavailable")
				} else {
					watcher.Start()
					defer watcher.Stop()
				}
			}

			// 5. Handle signals
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			go func() {
				<-stop
				logger.Info("Received stop signal")
				cancel()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Errorf("Server shutdown error: %v", err)
				}
			}()

			// 6. Start engine. A dead compositor stream takes the daemon
			// down; the service manager restarts it with the compositor.
			engineErr := make(chan error, 1)
			go func() {
				engineErr <- eng.Start(ctx)
			}()
			go func() {
				if err := <-engineErr; err != nil && ctx.Err() == nil {
					logger.Errorf("Engine stopped: %v", err)
					stop <- syscall.SIGTERM
				}
			}()

			// 7. Serve (blocking)
			logger.WithField("pid", os.Getpid()).Info("Starting daemon")
			if err := srv.ListenAndServe(sockPath); err != nil && ctx.Err() == nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a config file (disables watching)")
	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := paths.PidFilePath()

			running, pid, err := pidfile.IsRunning(pidPath)
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}

			if !running {
				fmt.Println("Daemon is not running")
				return nil
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("failed to find process %d: %w", pid, err)
			}

			if err := process.Signal(syscall.SIGTERM); err != nil {
				return fmt.Errorf("failed to send stop signal: %w", err)
			}

			fmt.Printf("Sent SIGTERM to process %d\n", pid)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := paths.PidFilePath()
			running, pid, err := pidfile.IsRunning(pidPath)
			if err != nil {
				return fmt.Errorf("error: %w", err)
			}

			if running {
				fmt.Printf("Running (PID: %d)\nSocket: %s\n", pid, paths.SocketPath())
			} else {
				fmt.Println("Stopped")
				os.Exit(1)
			}
			return nil
		},
	}
}
