package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rag-smart-go/internal/config"
	"rag-smart-go/internal/model"
	"rag-smart-go/internal/pipeline"
	"rag-smart-go/pkg/embedding"
	"rag-smart-go/pkg/log"
	"rag-smart-go/pkg/vectorindex"
)

const indexFileName = "index.gob"

// LocalStore 是 DocumentStore 的本地实现：
// 进程内扁平向量索引持久化到磁盘，元数据保存在一个 JSON 边表文件中。
// 整个 add 路径由单写者互斥锁保护，使并发上传下的
// 读取-合并-保存循环串行执行。
type LocalStore struct {
	mu              sync.Mutex
	embeddingClient embedding.Client
	dataDir         string
	indexDir        string
	metadataPath    string
	chunkSize       int
	chunkOverlap    int

	index    *vectorindex.Index
	metadata map[string]model.Document
}

// NewLocalStore 创建本地存储后端，加载已有的索引与元数据。
func NewLocalStore(storageCfg config.StorageConfig, ragCfg config.RAGConfig, embeddingClient embedding.Client) (*LocalStore, error) {
	s := &LocalStore{
		embeddingClient: embeddingClient,
		dataDir:         storageCfg.DataDir,
		indexDir:        storageCfg.IndexDir,
		metadataPath:    storageCfg.MetadataPath,
		chunkSize:       ragCfg.ChunkSize,
		chunkOverlap:    ragCfg.ChunkOverlap,
		metadata:        make(map[string]model.Document),
	}

	if err := os.MkdirAll(s.dataDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	if err := os.MkdirAll(s.indexDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("创建索引目录失败: %w", err)
	}

	if err := s.loadMetadata(); err != nil {
		return nil, err
	}
	s.loadIndex()

	return s, nil
}

// Backend 返回后端名称。
func (s *LocalStore) Backend() string {
	return config.BackendLocal
}

func (s *LocalStore) indexPath() string {
	return filepath.Join(s.indexDir, indexFileName)
}

// loadMetadata 从 JSON 边表文件加载文档元数据。
func (s *LocalStore) loadMetadata() error {
	data, err := os.ReadFile(s.metadataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("读取元数据文件失败: %w", err)
	}
	if err := json.Unmarshal(data, &s.metadata); err != nil {
		return fmt.Errorf("解析元数据文件失败: %w", err)
	}
	return nil
}

// saveMetadata 将文档元数据持久化到 JSON 边表文件。
func (s *LocalStore) saveMetadata() error {
	data, err := json.MarshalIndent(s.metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化元数据失败: %w", err)
	}
	return os.WriteFile(s.metadataPath, data, 0644)
}

// loadIndex 加载已持久化的向量索引。文件损坏时记录日志并按索引不存在处理。
func (s *LocalStore) loadIndex() {
	if _, err := os.Stat(s.indexPath()); err != nil {
		return
	}
	ix, err := vectorindex.Load(s.indexPath())
	if err != nil {
		log.Errorf("[LocalStore] 加载向量索引失败, 将按空索引处理: %v", err)
		return
	}
	s.index = ix
	log.Infof("[LocalStore] 已加载向量索引, 条目数: %d, 文档数: %d", ix.Len(), len(s.metadata))
}

// Exists 计算内容哈希并在元数据边表中线性查找相同的 file_hash。
// 预期规模是几十到几百个文档，线性扫描足够。
func (s *LocalStore) Exists(ctx context.Context, content []byte) (bool, string, error) {
	fileHash := pipeline.ContentHash(content)

	s.mu.Lock()
	defer s.mu.Unlock()
	for docID, doc := range s.metadata {
		if doc.FileHash == fileHash {
			return true, docID, nil
		}
	}
	return false, "", nil
}

// Add 执行完整的本地添加事务。
// 去重之后的任何失败都被捕获并以 error 状态返回；部分写入不回滚，
// 调用方应将 error 状态视为"重试整个操作"。
func (s *LocalStore) Add(ctx context.Context, content []byte, filename string) *model.AddResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	fileHash := pipeline.ContentHash(content)
	log.Infof("[LocalStore] 开始添加文档, filename: %s, hash: %s", filename, fileHash)

	// 1. 重复检测：命中时不产生任何副作用
	for docID, doc := range s.metadata {
		if doc.FileHash == fileHash {
			log.Infof("[LocalStore] 文档已存在, 跳过: %s", docID)
			return &model.AddResult{
				Status:     model.StatusDuplicate,
				Message:    fmt.Sprintf("Document already exists with ID: %s", docID),
				DocumentID: docID,
			}
		}
	}

	docID := pipeline.DocumentID(fileHash)

	// 2. 将原始文件保存到数据目录
	filePath := filepath.Join(s.dataDir, filename)
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		log.Errorf("[LocalStore] 保存原始文件失败: %v", err)
		return &model.AddResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error processing document: %v", err),
		}
	}

	// 3. 文本分块并打上来源标签
	chunks := pipeline.SplitText(string(content), s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return &model.AddResult{
			Status:  model.StatusError,
			Message: "Error processing document: document produced no chunks",
		}
	}
	log.Infof("[LocalStore] 文本分块完成, 共 %d 个分块", len(chunks))

	// 4. 批量向量化
	vectors, err := s.embeddingClient.CreateEmbeddings(ctx, chunks)
	if err != nil {
		log.Errorf("[LocalStore] 向量化失败: %v", err)
		return &model.AddResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error processing document: %v", err),
		}
	}

	// 5. 合并写入向量索引：索引不存在则创建，存在则追加，绝不替换既有条目
	entries := make([]vectorindex.Entry, 0, len(chunks))
	for i, chunk := range chunks {
		entries = append(entries, vectorindex.Entry{
			DocumentID: docID,
			ChunkIndex: i,
			Content:    chunk,
			SourceFile: filename,
			Vector:     vectors[i],
		})
	}
	if s.index == nil {
		s.index = vectorindex.New()
	}
	s.index.Add(entries)

	// 6. 持久化索引
	if err := s.index.Save(s.indexPath()); err != nil {
		log.Errorf("[LocalStore] 持久化向量索引失败: %v", err)
		return &model.AddResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error processing document: %v", err),
		}
	}

	// 7. 更新并持久化元数据边表
	s.metadata[docID] = model.Document{
		DocumentID:       docID,
		OriginalFilename: filename,
		FileHash:         fileHash,
		StorageLocation:  filePath,
		ChunkCount:       len(chunks),
		CreatedAt:        model.LocalTime(time.Now()),
	}
	if err := s.saveMetadata(); err != nil {
		log.Errorf("[LocalStore] 持久化元数据失败: %v", err)
		return &model.AddResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error processing document: %v", err),
		}
	}

	log.Infof("[LocalStore] 文档添加成功, id: %s, 分块数: %d", docID, len(chunks))
	return &model.AddResult{
		Status:     model.StatusSuccess,
		Message:    fmt.Sprintf("Document added successfully with %d chunks", len(chunks)),
		DocumentID: docID,
		ChunkCount: len(chunks),
	}
}

// List 返回元数据边表中的全部文档，顺序不保证。
func (s *LocalStore) List(ctx context.Context) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]model.Document, 0, len(s.metadata))
	for _, doc := range s.metadata {
		docs = append(docs, doc)
	}
	return docs, nil
}

// Remove 只删除元数据边表中的条目。
// 本地索引不支持按条目删除，已入库的向量会留在索引中直到索引重建，
// 这是有意保留的限制，删除后的漂移会被记录。
func (s *LocalStore) Remove(ctx context.Context, documentID string) *model.RemoveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.metadata[documentID]; !ok {
		return &model.RemoveResult{
			Status:   model.StatusError,
			Message:  fmt.Sprintf("Document %s not found", documentID),
			NotFound: true,
		}
	}

	delete(s.metadata, documentID)
	if err := s.saveMetadata(); err != nil {
		log.Errorf("[LocalStore] 删除后持久化元数据失败: %v", err)
		return &model.RemoveResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("Error deleting document: %v", err),
		}
	}

	log.Warnf("[LocalStore] 文档 %s 已从元数据移除, 其向量仍留在索引中, 需重建索引才能彻底清除", documentID)
	return &model.RemoveResult{
		Status:  model.StatusSuccess,
		Message: fmt.Sprintf("Document %s removed from metadata. Rebuild vector store to fully remove.", documentID),
	}
}

// Search 向量化查询并在扁平索引上做余弦相似度检索。
// 从未添加过任何文档时返回 ErrNoIndex。
func (s *LocalStore) Search(ctx context.Context, query string, topK int) ([]model.RetrievedChunk, error) {
	s.mu.Lock()
	empty := s.index == nil || s.index.Len() == 0
	s.mu.Unlock()
	if empty {
		return nil, ErrNoIndex
	}

	queryVector, err := s.embeddingClient.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}

	s.mu.Lock()
	scored := s.index.Search(queryVector, topK)
	s.mu.Unlock()

	results := make([]model.RetrievedChunk, 0, len(scored))
	for _, e := range scored {
		results = append(results, model.RetrievedChunk{
			DocumentID: e.DocumentID,
			ChunkIndex: e.ChunkIndex,
			Content:    e.Content,
			SourceFile: e.SourceFile,
			Score:      e.Score,
		})
	}
	return results, nil
}
