package command

import (
	"fmt"

	"bacgate/internal/object"
	"bacgate/internal/pkg"

	"github.com/spf13/cobra"
)

// NewObjectsCommand 创建 objects 子命令, 以 yaml 打印启动时的对象集合
func NewObjectsCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "objects",
		Short: "Print the startup object set as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := pkg.InitCommon(*configDir)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			store, err := object.NewDefaultStore(config.Device.Instance)
			if err != nil {
				return err
			}
			out, err := store.Snapshot()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
