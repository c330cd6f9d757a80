package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Danosky8082/EdTech/config"
	"github.com/Danosky8082/EdTech/internal/api/handler"
	"github.com/Danosky8082/EdTech/internal/api/router"
	"github.com/Danosky8082/EdTech/internal/repository"
	"github.com/Danosky8082/EdTech/internal/service"
	"github.com/Danosky8082/EdTech/pkg/database"
	"github.com/Danosky8082/EdTech/pkg/filestore"
	"github.com/Danosky8082/EdTech/pkg/jwt"
	"github.com/Danosky8082/EdTech/pkg/logger"
	"github.com/Danosky8082/EdTech/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 日志
	zapLogger, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zapLogger.Sync()

	// 数据库
	db, err := database.NewDB(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 迁移
	sqlDB, err := db.DB()
	if err != nil {
		zapLogger.Fatal("获取底层数据库连接失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, zapLogger); err != nil {
		zapLogger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// Redis（可选：连接失败降级运行，登出黑名单失效）
	rdb, err := redis.NewClient(&cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Warn("Redis 连接失败，降级运行", zap.Error(err))
		rdb = nil
	}

	// 文件存储
	store, err := filestore.NewStore(&cfg.Upload)
	if err != nil {
		zapLogger.Fatal("初始化文件存储失败", zap.Error(err))
	}

	// 组装依赖
	jwtManager := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, cfg, jwtManager, rdb, store, zapLogger)
	h := handler.NewHandler(svc, zapLogger)
	r := router.Setup(cfg, h, repo, jwtManager, rdb, zapLogger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("HTTP 服务启动", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP 服务异常退出", zap.Error(err))
		}
	}()

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("收到退出信号，开始优雅关闭")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("HTTP 服务关闭失败", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			zapLogger.Error("Redis 连接关闭失败", zap.Error(err))
		}
	}
	if err := sqlDB.Close(); err != nil {
		zapLogger.Error("数据库连接关闭失败", zap.Error(err))
	}

	zapLogger.Info("服务已退出")
}
