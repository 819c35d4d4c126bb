// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"rag-smart-go/internal/model"

	"gorm.io/gorm"
)

// DocumentRepository 接口定义了文档元数据相关的数据持久化操作。
type DocumentRepository interface {
	Create(doc *model.Document) error
	FindByFileHash(fileHash string) (*model.Document, error)
	FindByDocumentID(documentID string) (*model.Document, error)
	FindAll() ([]model.Document, error)
	DeleteByDocumentID(documentID string) error
}

// documentRepository 是 DocumentRepository 接口的 GORM 实现。
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建一个新的 DocumentRepository 实例。
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create 在数据库中插入一条新的文档元数据记录。
func (r *documentRepository) Create(doc *model.Document) error {
	return r.db.Create(doc).Error
}

// FindByFileHash 根据文件内容哈希检索文档记录，用于重复检测。
func (r *documentRepository) FindByFileHash(fileHash string) (*model.Document, error) {
	var doc model.Document
	err := r.db.Where("file_hash = ?", fileHash).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByDocumentID 根据文档 ID 检索文档记录。
func (r *documentRepository) FindByDocumentID(documentID string) (*model.Document, error) {
	var doc model.Document
	err := r.db.Where("document_id = ?", documentID).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindAll 返回全部文档记录，按创建时间倒序。
func (r *documentRepository) FindAll() ([]model.Document, error) {
	var docs []model.Document
	err := r.db.Order("created_at desc").Find(&docs).Error
	return docs, err
}

// DeleteByDocumentID 删除指定文档的元数据记录。
func (r *documentRepository) DeleteByDocumentID(documentID string) error {
	return r.db.Where("document_id = ?", documentID).Delete(&model.Document{}).Error
}
