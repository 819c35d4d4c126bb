package handler

import (
	"io"
	"net/http"
	"strings"

	"rag-smart-go/internal/model"
	"rag-smart-go/internal/store"
	"rag-smart-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// allowedExtensions 是上传接口接受的纯文本扩展名。
var allowedExtensions = []string{".txt", ".md", ".text"}

// DocumentHandler 负责处理所有与文档管理相关的 API 请求。
type DocumentHandler struct {
	store store.DocumentStore
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(docStore store.DocumentStore) *DocumentHandler {
	return &DocumentHandler{
		store: docStore,
	}
}

// Upload 处理文档上传请求：校验文件名与扩展名, 读取内容后交给存储后端做
// 一次完整的添加事务, 并返回结构化结果。
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warnf("[DocumentHandler] 上传请求缺少文件: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Filename is required"})
		return
	}

	filename := fileHeader.Filename
	if filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Filename is required"})
		return
	}

	if !hasAllowedExtension(filename) {
		log.Warnf("[DocumentHandler] 不支持的文件类型: %s", filename)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only text files (.txt, .md, .text) are supported"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("[DocumentHandler] 打开上传文件失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading document: " + err.Error()})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		log.Error("[DocumentHandler] 读取上传文件失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading document: " + err.Error()})
		return
	}

	log.Infof("[DocumentHandler] 收到上传请求, filename: %s, size: %d", filename, len(content))
	result := h.store.Add(c.Request.Context(), content, filename)

	status := http.StatusOK
	if result.Status == model.StatusError {
		// 上游/服务类失败在组件边界已转换为 error 状态, HTTP 边界映射为 500
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{
		"filename":    filename,
		"status":      result.Status,
		"message":     result.Message,
		"document_id": result.DocumentID,
		"chunk_count": result.ChunkCount,
		"backend":     h.store.Backend(),
	})
}

// List 处理获取全部文档列表的请求。
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.store.List(c.Request.Context())
	if err != nil {
		log.Error("[DocumentHandler] 获取文档列表失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(docs),
		"documents": docs,
		"backend":   h.store.Backend(),
	})
}

// Delete 处理删除文档的请求。未知的文档 ID 返回 404。
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID := c.Param("docId")
	log.Infof("[DocumentHandler] 收到删除请求, document_id: %s", docID)

	result := h.store.Remove(c.Request.Context(), docID)
	if result.Status == model.StatusError {
		if result.NotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": result.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Message})
		return
	}

	c.JSON(http.StatusOK, result)
}

// hasAllowedExtension 校验文件扩展名是否在允许列表内。
func hasAllowedExtension(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
