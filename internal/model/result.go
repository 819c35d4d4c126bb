package model

// 存储操作的状态值。
const (
	StatusSuccess   = "success"
	StatusDuplicate = "duplicate"
	StatusError     = "error"
)

// AddResult 是 add_document 操作的结构化结果。
// 上游失败不抛出，而是在此处转换为 error 状态与描述信息。
type AddResult struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	DocumentID string `json:"document_id,omitempty"`
	ChunkCount int    `json:"chunk_count,omitempty"`
}

// RemoveResult 是 remove_document 操作的结构化结果。
// NotFound 区分"文档不存在"与其他删除失败，供 HTTP 层映射 404 与 500。
type RemoveResult struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	NotFound bool   `json:"-"`
}
