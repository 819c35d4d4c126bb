// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"rag-smart-go/internal/service"
	"rag-smart-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// RAGHandler 负责处理问答查询相关的 API 请求。
type RAGHandler struct {
	ragService service.RAGService
}

// NewRAGHandler 创建一个新的 RAGHandler 实例。
func NewRAGHandler(ragService service.RAGService) *RAGHandler {
	return &RAGHandler{
		ragService: ragService,
	}
}

// Query 处理 RAG 查询请求。
// 回答生成层自身绝不抛错, 失败以字符串形式出现在 response 字段中。
func (h *RAGHandler) Query(c *gin.Context) {
	query := c.Query("query")
	log.Infof("[RAGHandler] 收到查询请求, query: %s", query)

	if query == "" {
		log.Warnf("[RAGHandler] 查询请求失败: query 参数为空")
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	response := h.ragService.Answer(c.Request.Context(), query)
	c.JSON(http.StatusOK, gin.H{
		"query":    query,
		"response": response,
	})
}
