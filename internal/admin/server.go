package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"bacgate/internal/admin/router"
	"bacgate/internal/object"
	"bacgate/internal/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server 管理接口的 HTTP 服务
type Server struct {
	srv      *http.Server
	listener net.Listener
	logger   *zap.Logger
}

// NewServer 监听 admin::url, 监听失败属于启动期错误
func NewServer(ctx context.Context, store *object.Store) (*Server, error) {
	config := pkg.ConfigFromContext(ctx)
	logger := pkg.LoggerFromContext(ctx)
	gin.SetMode(gin.ReleaseMode)

	listener, err := net.Listen("tcp", config.Admin.Url)
	if err != nil {
		return nil, fmt.Errorf("管理接口监听 %s 失败: %w", config.Admin.Url, err)
	}
	handler := router.SetupRouter(store, pkg.MetricsFromContext(ctx), config.Version, logger)
	return &Server{
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second},
		listener: listener,
		logger:   logger,
	}, nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start 在后台提供服务, ctx 取消时优雅关闭, 运行期错误经 errChan 上报
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.logger.Info("管理接口已启动", zap.String("addr", s.Addr()))
		if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("管理接口异常退出", zap.Error(err))
			pkg.ReportErr(ctx, fmt.Errorf("管理接口异常退出: %w", err))
		}
	}()
	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			s.logger.Error("管理接口关闭失败", zap.Error(err))
		}
	}()
}

// Shutdown 最多等待 5 秒处理完在途请求
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
