package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bacgate/internal"
	"bacgate/internal/pkg"
	"bacgate/internal/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exitError 携带进程退出码
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// ExitCode 返回错误对应的进程退出码
func ExitCode(err error) int {
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	if err != nil {
		return 1
	}
	return 0
}

// syncLog 安全地同步日志，忽略与标准输出相关的错误
func syncLog(log *zap.Logger) {
	// 同步标准输出时可能返回 "invalid argument" 或 "The handle is invalid"
	err := log.Sync()
	if err != nil && !strings.Contains(err.Error(), "invalid argument") && !strings.Contains(err.Error(), "The handle is invalid") {
		log.Error("程序退出时同步日志失败", zap.Error(err))
	}
}

// NewServeCommand 创建 serve 子命令, 运行设备直到输入 q 或收到终止信号
func NewServeCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the BACnet/IP device",
		Long:  `Run the BACnet/IP device until 'q' is entered on stdin or SIGINT/SIGTERM is received.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 1. 初始化配置
			config, err := pkg.InitCommon(*configDir)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}

			// 2. 初始化log
			log := pkg.NewLogger(&config.Log)
			defer syncLog(log)
			log.Info("程序启动", zap.String("version", config.Version))
			log.Debug("配置信息", zap.Any("common", config))

			// 3. 创建上下文
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			errChan := make(chan error, 10) // 全局错误通道, 缓存大小为10
			ctx = pkg.WithErrChan(ctx, errChan)
			ctx = pkg.WithConfig(ctx, config)
			ctx = pkg.WithLogger(ctx, log)
			ctx = pkg.WithMetrics(ctx, pkg.NewMetrics())

			rt, err := internal.NewRuntime(ctx)
			if err != nil {
				log.Error("初始化失败", zap.Error(err))
				return &exitError{code: 1, err: err}
			}
			defer rt.Close()
			printStartupLogo(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "BACnet engine %s, bacgate %s. Enter Q to quit.\n", rt.Engine.Version(), config.Version)

			// 4. 主循环
			done := make(chan struct{})
			go func() {
				rt.Run(ctx, scheduler.StartConsole(cmd.InOrStdin()))
				close(done)
			}()

			// 5. 监听终止信号与运行期错误
			si := make(chan os.Signal, 1)
			signal.Notify(si, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(si)
			select {
			case <-done:
				log.Info("收到退出指令")
				return nil
			case <-si:
				log.Info("Caught exit signal, exiting...")
				cancel()
				<-done
				return nil
			case bad := <-errChan:
				log.Error("Error occurred", zap.Error(bad))
				cancel()
				// 等待其他可能的错误
				go func() {
					for err := range errChan {
						log.Error("Error occurred before shutdown", zap.Error(err))
					}
				}()
				select {
				case <-done:
				case <-time.After(time.Second):
				}
				return &exitError{code: 1, err: bad}
			}
		},
	}
}
