// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rag-smart-go/internal/config"
	"rag-smart-go/internal/handler"
	"rag-smart-go/internal/middleware"
	"rag-smart-go/internal/model"
	"rag-smart-go/internal/repository"
	"rag-smart-go/internal/service"
	"rag-smart-go/internal/store"
	"rag-smart-go/pkg/database"
	"rag-smart-go/pkg/embedding"
	"rag-smart-go/pkg/es"
	"rag-smart-go/pkg/llm"
	"rag-smart-go/pkg/log"
	"rag-smart-go/pkg/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 按配置选择存储后端, 只初始化该后端所需的基础设施。
	// 后端在启动时决定一次, 请求处理过程中不再检查开关。
	embeddingClient := embedding.NewClient(cfg.Embedding)

	var docStore store.DocumentStore
	switch cfg.Storage.Backend {
	case config.BackendCloud:
		database.InitMySQL(cfg.Database.MySQL.DSN)
		if err := database.DB.AutoMigrate(&model.Document{}, &model.ChunkRecord{}); err != nil {
			log.Fatal("数据库表结构迁移失败", err)
		}
		database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		storage.InitMinIO(cfg.MinIO)
		if err := es.InitES(cfg.Elasticsearch, cfg.Embedding.Dimensions); err != nil {
			log.Fatalf("es 初始化失败 %s", err)
		}

		docRepo := repository.NewDocumentRepository(database.DB)
		chunkRepo := repository.NewChunkRepository(database.DB)
		docStore = store.NewCloudStore(docRepo, chunkRepo, embeddingClient, database.RDB, cfg.Elasticsearch, cfg.MinIO, cfg.RAG)
	case config.BackendLocal:
		localStore, err := store.NewLocalStore(cfg.Storage, cfg.RAG, embeddingClient)
		if err != nil {
			log.Fatal("本地存储后端初始化失败", err)
		}
		docStore = localStore
	default:
		log.Fatalf("未知的存储后端: %s (可选值: local, cloud)", cfg.Storage.Backend)
	}
	log.Infof("存储后端初始化完成: %s", docStore.Backend())

	// 4. 初始化 Service 与 Handler (依赖注入)
	llmClient := llm.NewClient(cfg.LLM)
	ragService := service.NewRAGService(docStore, llmClient, cfg.RAG.TopK)

	ragHandler := handler.NewRAGHandler(ragService)
	docHandler := handler.NewDocumentHandler(docStore)
	sysHandler := handler.NewSystemHandler(docStore)

	// 5. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), middleware.CORS(), gin.Recovery())

	// 6. 注册路由
	r.GET("/query/", ragHandler.Query)
	r.POST("/upload/", docHandler.Upload)
	r.GET("/documents/", docHandler.List)
	r.DELETE("/documents/:docId", docHandler.Delete)
	r.GET("/health", sysHandler.Health)
	r.GET("/config", sysHandler.Config)

	// 7. 挂载浏览器客户端静态文件
	if cfg.Server.StaticDir != "" {
		r.Static("/static", cfg.Server.StaticDir)
		r.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(cfg.Server.StaticDir, "index.html"))
		})
	}

	// 8. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s, 后端: %s", srv.Addr, docStore.Backend())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
