// Package store 定义了文档存储后端的统一契约及其两个实现。
// 后端在启动时根据配置选择一次，之后所有请求都通过同一个 DocumentStore 实例。
package store

import (
	"context"
	"errors"

	"rag-smart-go/internal/model"
)

// ErrNoIndex 表示尚未有任何文档被添加，向量索引不存在。
// 上层将它转换为提示用户先上传文档的信息，而不是堆栈错误。
var ErrNoIndex = errors.New("no vector store available, please add documents first")

// DocumentStore 是文档存储后端的统一接口。
// 两个实现：本地扁平索引（local）与云端 MySQL+MinIO+Elasticsearch（cloud）。
type DocumentStore interface {
	// Exists 按内容哈希判断文档是否已存在，存在时返回其文档 ID。
	Exists(ctx context.Context, content []byte) (bool, string, error)
	// Add 执行一次完整的添加事务：哈希、去重、分块、向量化、索引写入、元数据落盘。
	// 上游失败不抛出，以 error 状态的结构化结果返回。
	Add(ctx context.Context, content []byte, filename string) *model.AddResult
	// List 返回全部文档的元数据。
	List(ctx context.Context) ([]model.Document, error)
	// Remove 删除指定文档。未知 ID 返回带 NotFound 标记的 error 结果。
	Remove(ctx context.Context, documentID string) *model.RemoveResult
	// Search 返回与查询最相似的前 topK 个分块，按得分降序。
	Search(ctx context.Context, query string, topK int) ([]model.RetrievedChunk, error)
	// Backend 返回后端名称，用于 API 响应。
	Backend() string
}
