package command

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	var configDir string

	rootCmd := &cobra.Command{
		Use:           "bacgate",
		Short:         "BACnet/IP server device",
		Long:          `bacgate exposes a fixed set of BACnet objects over BACnet/IP and mirrors value changes to optional sinks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "config", "配置目录, 目录下所有 yaml 文件会被合并")

	rootCmd.AddCommand(NewServeCommand(&configDir))
	rootCmd.AddCommand(NewObjectsCommand(&configDir))
	return rootCmd
}

func printStartupLogo(w io.Writer) {
	logo := `
	 ____    _    ____            _
	| __ )  / \  / ___|__ _  __ _| |_ ___
	|  _ \ / _ \| |   / _' |/ _' | __/ _ \
	| |_) / ___ \ |__| (_| | (_| | ||  __/
	|____/_/   \_\____\__, |\__,_|\__\___|
	                  |___/
`
	fmt.Fprint(w, logo)
}
