package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rag-smart-go/internal/config"
	"rag-smart-go/internal/model"
	"rag-smart-go/internal/pipeline"
	"rag-smart-go/internal/repository"
	"rag-smart-go/pkg/embedding"
	"rag-smart-go/pkg/es"
	"rag-smart-go/pkg/log"
	"rag-smart-go/pkg/storage"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// dedupCacheTTL 是 Redis 中 file_hash -> document_id 缓存的过期时间。
const dedupCacheTTL = 24 * time.Hour

// CloudStore 是 DocumentStore 的云端实现：
// MySQL 保存文档元数据与分块+向量行，MinIO 保存原始文件字节，
// 相似度检索委托给 Elasticsearch 对向量列的服务端最近邻查询，
// Redis 缓存按哈希的重复检测查询。
type CloudStore struct {
	docRepo         repository.DocumentRepository
	chunkRepo       repository.ChunkRepository
	embeddingClient embedding.Client
	rdb             *redis.Client
	esIndexName     string
	bucketName      string
	chunkSize       int
	chunkOverlap    int
}

// NewCloudStore 创建云端存储后端。
func NewCloudStore(
	docRepo repository.DocumentRepository,
	chunkRepo repository.ChunkRepository,
	embeddingClient embedding.Client,
	rdb *redis.Client,
	esCfg config.ElasticsearchConfig,
	minioCfg config.MinIOConfig,
	ragCfg config.RAGConfig,
) *CloudStore {
	return &CloudStore{
		docRepo:         docRepo,
		chunkRepo:       chunkRepo,
		embeddingClient: embeddingClient,
		rdb:             rdb,
		esIndexName:     esCfg.IndexName,
		bucketName:      minioCfg.BucketName,
		chunkSize:       ragCfg.ChunkSize,
		chunkOverlap:    ragCfg.ChunkOverlap,
	}
}

// Backend 返回后端名称。
func (s *CloudStore) Backend() string {
	return config.BackendCloud
}

func dedupCacheKey(fileHash string) string {
	return "dedup:" + fileHash
}

// Exists 按内容哈希做远程查找：先查 Redis 缓存，未命中再查 MySQL。
// 查询基础设施出错时按"不存在"降级处理并记录告警，与参考行为一致。
func (s *CloudStore) Exists(ctx context.Context, content []byte) (bool, string, error) {
	fileHash := pipeline.ContentHash(content)
	return s.existsByHash(ctx, fileHash)
}

func (s *CloudStore) existsByHash(ctx context.Context, fileHash string) (bool, string, error) {
	if docID, err := s.rdb.Get(ctx, dedupCacheKey(fileHash)).Result(); err == nil && docID != "" {
		return true, docID, nil
	} else if err != nil && err != redis.Nil {
		log.Warnf("[CloudStore] Redis 重复检测缓存查询失败: %v", err)
	}

	doc, err := s.docRepo.FindByFileHash(fileHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, "", nil
		}
		log.Warnf("[CloudStore] 重复检测查询失败, 按不存在处理: %v", err)
		return false, "", nil
	}

	if err := s.rdb.Set(ctx, dedupCacheKey(fileHash), doc.DocumentID, dedupCacheTTL).Err(); err != nil {
		log.Warnf("[CloudStore] 写入重复检测缓存失败: %v", err)
	}
	return true, doc.DocumentID, nil
}

// Add 执行完整的云端添加事务。
// 各步骤之间没有跨行事务保证：分块写入失败时文档行会成为孤儿，
// 视为非致命的不一致，可通过删除后重试恢复。
func (s *CloudStore) Add(ctx context.Context, content []byte, filename string) *model.AddResult {
	fileHash := pipeline.ContentHash(content)
	log.Infof("[CloudStore] 开始添加文档, filename: %s, hash: %s", filename, fileHash)

	// 1. 远程重复检测
	exists, existingID, _ := s.existsByHash(ctx, fileHash)
	if exists {
		log.Infof("[CloudStore] 文档已存在, 跳过: %s", existingID)
		return &model.AddResult{
			Status:     model.StatusDuplicate,
			Message:    fmt.Sprintf("Document already exists with ID: %s", existingID),
			DocumentID: existingID,
		}
	}

	docID := pipeline.DocumentID(fileHash)

	// 2. 上传原始文件到对象存储, 对象键为 {document_id}/{filename}
	objectName := fmt.Sprintf("%s/%s", docID, filename)
	if err := storage.UploadObject(ctx, s.bucketName, objectName, content, "text/plain"); err != nil {
		log.Errorf("[CloudStore] 上传原始文件到对象存储失败: %v", err)
		return &model.AddResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error adding document: %v", err),
		}
	}

	// 3. 文本分块
	chunks := pipeline.SplitText(string(content), s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return &model.AddResult{
			Status:  model.StatusError,
			Message: "Error adding document: document produced no chunks",
		}
	}
	log.Infof("[CloudStore] 文本分块完成, 共 %d 个分块", len(chunks))

	// 4. 批量向量化
	vectors, err := s.embeddingClient.CreateEmbeddings(ctx, chunks)
	if err != nil {
		log.Errorf("[CloudStore] 向量化失败: %v", err)
		return &model.AddResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error adding document: %v", err),
		}
	}

	// 5. 插入文档元数据行
	doc := &model.Document{
		DocumentID:       docID,
		OriginalFilename: filename,
		FileHash:         fileHash,
		StorageLocation:  objectName,
		ChunkCount:       len(chunks),
		CreatedAt:        model.LocalTime(time.Now()),
	}
	if err := s.docRepo.Create(doc); err != nil {
		log.Errorf("[CloudStore] 插入文档元数据行失败: %v", err)
		return &model.AddResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error adding document: %v", err),
		}
	}

	// 6. 批量插入分块行：文本 + 向量 JSON + 元数据 blob
	chunkRows := make([]*model.ChunkRecord, 0, len(chunks))
	for i, chunk := range chunks {
		embeddingJSON, err := json.Marshal(vectors[i])
		if err != nil {
			return &model.AddResult{
				Status:  model.StatusError,
				Message: fmt.Sprintf("Error adding document: %v", err),
			}
		}
		metadataJSON, _ := json.Marshal(map[string]interface{}{"filename": filename, "chunk": i})
		chunkRows = append(chunkRows, &model.ChunkRecord{
			DocumentID: docID,
			ChunkIndex: i,
			Content:    chunk,
			Embedding:  string(embeddingJSON),
			Metadata:   string(metadataJSON),
		})
	}
	if err := s.chunkRepo.BatchCreate(chunkRows); err != nil {
		// 文档行已写入而分块失败：留下孤儿行, 删除后重试即可恢复
		log.Errorf("[CloudStore] 批量插入分块行失败, 文档行 %s 成为孤儿: %v", docID, err)
		return &model.AddResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error adding document: %v", err),
		}
	}

	// 7. 将分块向量索引到 Elasticsearch
	for i, chunk := range chunks {
		esChunk := model.EsChunk{
			VectorID:   fmt.Sprintf("%s_%d", docID, i),
			DocumentID: docID,
			ChunkIndex: i,
			Content:    chunk,
			Vector:     vectors[i],
			SourceFile: filename,
		}
		if err := es.IndexChunk(ctx, s.esIndexName, esChunk); err != nil {
			log.Errorf("[CloudStore] 索引分块 %d 到 Elasticsearch 失败: %v", i, err)
			return &model.AddResult{
				Status:  model.StatusError,
				Message: fmt.Sprintf("Error adding document: %v", err),
			}
		}
	}

	// 8. 填充重复检测缓存
	if err := s.rdb.Set(ctx, dedupCacheKey(fileHash), docID, dedupCacheTTL).Err(); err != nil {
		log.Warnf("[CloudStore] 写入重复检测缓存失败: %v", err)
	}

	log.Infof("[CloudStore] 文档添加成功, id: %s, 分块数: %d", docID, len(chunks))
	return &model.AddResult{
		Status:     model.StatusSuccess,
		Message:    fmt.Sprintf("Document added successfully with %d chunks", len(chunks)),
		DocumentID: docID,
		ChunkCount: len(chunks),
	}
}

// List 返回全部文档行，按创建时间倒序。
func (s *CloudStore) List(ctx context.Context) ([]model.Document, error) {
	return s.docRepo.FindAll()
}

// Remove 删除对象存储 blob、ES 向量、分块行和文档行。
// blob 删除是尽力而为：失败只记录日志，不阻塞元数据删除。
func (s *CloudStore) Remove(ctx context.Context, documentID string) *model.RemoveResult {
	doc, err := s.docRepo.FindByDocumentID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.RemoveResult{
				Status:   model.StatusError,
				Message:  fmt.Sprintf("Document %s not found", documentID),
				NotFound: true,
			}
		}
		return &model.RemoveResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error deleting document: %v", err),
		}
	}

	// 尽力而为地删除对象存储中的原始文件, 失败记录后忽略
	if err := storage.RemoveObject(ctx, s.bucketName, doc.StorageLocation); err != nil {
		log.Warnf("[CloudStore] 删除对象存储文件失败 (已忽略), object: %s, err: %v", doc.StorageLocation, err)
	}

	if err := es.DeleteByDocumentID(ctx, s.esIndexName, documentID); err != nil {
		log.Errorf("[CloudStore] 删除 Elasticsearch 向量失败: %v", err)
		return &model.RemoveResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error deleting document: %v", err),
		}
	}

	if err := s.chunkRepo.DeleteByDocumentID(documentID); err != nil {
		log.Errorf("[CloudStore] 删除分块行失败: %v", err)
		return &model.RemoveResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error deleting document: %v", err),
		}
	}

	if err := s.docRepo.DeleteByDocumentID(documentID); err != nil {
		log.Errorf("[CloudStore] 删除文档行失败: %v", err)
		return &model.RemoveResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error deleting document: %v", err),
		}
	}

	// 清理重复检测缓存
	if err := s.rdb.Del(ctx, dedupCacheKey(doc.FileHash)).Err(); err != nil {
		log.Warnf("[CloudStore] 清理重复检测缓存失败: %v", err)
	}

	log.Infof("[CloudStore] 文档删除成功, id: %s", documentID)
	return &model.RemoveResult{
		Status:  model.StatusSuccess,
		Message: fmt.Sprintf("Document %s deleted successfully", documentID),
	}
}

// Search 向量化查询并委托 Elasticsearch 做服务端最近邻检索。
// 空索引返回空结果集而非错误，由上层转换为提示信息。
func (s *CloudStore) Search(ctx context.Context, query string, topK int) ([]model.RetrievedChunk, error) {
	queryVector, err := s.embeddingClient.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}

	results, err := es.KnnSearch(ctx, s.esIndexName, queryVector, topK)
	if err != nil {
		return nil, err
	}
	return results, nil
}
