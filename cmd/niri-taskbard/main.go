// niri-taskbard is the taskbar state daemon for the niri compositor. It
// mirrors the compositor's window state, correlates desktop notifications to
// windows, and serves both to the rendering layer over a unix socket.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/niritools/taskbar/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "niri-taskbard",
		Short:         "Taskbar state daemon for the niri compositor",
		Version:       version.GetInfo().String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newStatusCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
