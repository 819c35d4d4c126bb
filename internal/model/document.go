// Package model 定义了与数据库表和 API 响应对应的 Go 结构体。
package model

// Document 代表一个已上传并完成向量化的文档的元数据。
// 它既是 cloud 后端 documents 表的 ORM 模型，也是 API 返回给前端的结构。
// DocumentID 由文件内容哈希确定性派生，相同字节的文件永远得到相同的 ID。
type Document struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	DocumentID       string    `gorm:"type:varchar(32);not null;uniqueIndex;column:document_id" json:"document_id"`
	OriginalFilename string    `gorm:"type:varchar(255);not null;column:original_filename" json:"original_filename"`
	FileHash         string    `gorm:"type:varchar(64);not null;uniqueIndex;column:file_hash" json:"file_hash"`
	StorageLocation  string    `gorm:"type:varchar(512);column:storage_location" json:"storage_location"`
	ChunkCount       int       `gorm:"not null;default:0;column:chunk_count" json:"chunk_count"`
	CreatedAt        LocalTime `gorm:"column:created_at" json:"created_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Document) TableName() string {
	return "documents"
}
