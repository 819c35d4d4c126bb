package model

// ChunkRecord 对应于数据库中的 document_chunks 表。
// 每一行持有分块文本、序列化后的向量以及一小段 JSON 元数据。
type ChunkRecord struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID string `gorm:"type:varchar(32);not null;index;column:document_id" json:"document_id"`
	ChunkIndex int    `gorm:"not null;column:chunk_index" json:"chunk_index"`
	Content    string `gorm:"type:text;column:content" json:"content"`
	Embedding  string `gorm:"type:json;column:embedding" json:"-"`
	Metadata   string `gorm:"type:json;column:metadata" json:"metadata"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ChunkRecord) TableName() string {
	return "document_chunks"
}

// EsChunk 定义了存储在 Elasticsearch 中的分块文档结构。
// VectorID 为 documentID 与 chunkIndex 的组合，保证索引操作幂等。
type EsChunk struct {
	VectorID   string    `json:"vector_id"`
	DocumentID string    `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Vector     []float32 `json:"vector"`
	SourceFile string    `json:"source_file"`
}

// RetrievedChunk 是一次相似度检索命中的结果。
type RetrievedChunk struct {
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	SourceFile string  `json:"source_file"`
	Score      float64 `json:"score"`
}
