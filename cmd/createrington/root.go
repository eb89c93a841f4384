package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "createrington",
		Short:         "Createrington community platform server",
		Long:          "Runs the Createrington Minecraft community platform: Discord bots, HTTP API, websocket gateway and schedulers.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to configuration file")
	root.AddCommand(newStartCmd())

	return root
}
