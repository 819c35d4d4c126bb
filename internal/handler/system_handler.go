package handler

import (
	"net/http"

	"rag-smart-go/internal/config"
	"rag-smart-go/internal/store"

	"github.com/gin-gonic/gin"
)

// serviceVersion 是对外暴露的服务版本号。
const serviceVersion = "2.0"

// SystemHandler 负责健康检查与配置查询接口。
type SystemHandler struct {
	store store.DocumentStore
}

// NewSystemHandler 创建一个新的 SystemHandler 实例。
func NewSystemHandler(docStore store.DocumentStore) *SystemHandler {
	return &SystemHandler{
		store: docStore,
	}
}

// Health 处理健康检查请求。
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"backend": h.store.Backend(),
		"version": serviceVersion,
	})
}

// Config 返回当前生效的配置概要：后端类型与外部服务的配置状态。
func (h *SystemHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"backend":           h.store.Backend(),
		"openai_configured": config.Conf.Embedding.APIKey != "" || config.Conf.LLM.APIKey != "",
		"cloud_configured":  config.Conf.CloudConfigured(),
	})
}
