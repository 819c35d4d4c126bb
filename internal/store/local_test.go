package store

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"rag-smart-go/internal/config"
	"rag-smart-go/internal/model"
)

// freqEmbedder 是测试用的确定性向量化客户端：
// 向量是文本的字符频率直方图，相同文本得到相同向量，
// 共享罕见字符的文本之间余弦相似度更高。
type freqEmbedder struct{}

func letterFreq(text string) []float32 {
	v := make([]float32, 128)
	for _, r := range text {
		v[int(r)%128]++
	}
	return v
}

func (freqEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return letterFreq(text), nil
}

func (freqEmbedder) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vectors = append(vectors, letterFreq(t))
	}
	return vectors, nil
}

// failingEmbedder 总是返回错误，用于覆盖向量化失败的路径。
type failingEmbedder struct{}

func (failingEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding service unavailable")
}

func (failingEmbedder) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("embedding service unavailable")
}

func testStorageConfig(t *testing.T) config.StorageConfig {
	t.Helper()
	base := t.TempDir()
	return config.StorageConfig{
		Backend:      config.BackendLocal,
		DataDir:      filepath.Join(base, "data"),
		IndexDir:     filepath.Join(base, "vector_store"),
		MetadataPath: filepath.Join(base, "metadata.json"),
	}
}

func newTestStore(t *testing.T, storageCfg config.StorageConfig) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(storageCfg, config.RAGConfig{TopK: 2, ChunkSize: 200, ChunkOverlap: 20}, freqEmbedder{})
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	return s
}

func TestLocalStore_AddChunksAndIdentity(t *testing.T) {
	s := newTestStore(t, testStorageConfig(t))
	content := []byte(strings.Repeat("abcde", 100)) // 500 字符, 窗口 200 / 重叠 20 -> 3 个分块

	result := s.Add(context.Background(), content, "doc.txt")
	if result.Status != model.StatusSuccess {
		t.Fatalf("Add() status = %s, message = %s", result.Status, result.Message)
	}
	if result.ChunkCount != 3 {
		t.Errorf("Add() chunk_count = %d, want 3", result.ChunkCount)
	}
	if result.Message != "Document added successfully with 3 chunks" {
		t.Errorf("Add() message = %q", result.Message)
	}
	if !regexp.MustCompile(`^doc_[0-9a-f]{16}$`).MatchString(result.DocumentID) {
		t.Errorf("Add() document_id = %q, 不符合 doc_ + 16 位十六进制的格式", result.DocumentID)
	}
}

func TestLocalStore_DuplicateDetection(t *testing.T) {
	s := newTestStore(t, testStorageConfig(t))
	content := []byte("the same file content uploaded twice")

	first := s.Add(context.Background(), content, "first.txt")
	if first.Status != model.StatusSuccess {
		t.Fatalf("第一次 Add() status = %s", first.Status)
	}

	// 相同字节、不同文件名仍然命中去重
	second := s.Add(context.Background(), content, "renamed.txt")
	if second.Status != model.StatusDuplicate {
		t.Fatalf("第二次 Add() status = %s, want duplicate", second.Status)
	}
	if second.DocumentID != first.DocumentID {
		t.Errorf("重复上传返回的 ID = %s, want %s", second.DocumentID, first.DocumentID)
	}
	if second.Message != "Document already exists with ID: "+first.DocumentID {
		t.Errorf("重复上传 message = %q", second.Message)
	}

	// 去重命中不产生新文档
	docs, _ := s.List(context.Background())
	if len(docs) != 1 {
		t.Errorf("重复上传后文档数 = %d, want 1", len(docs))
	}
}

func TestLocalStore_ExistsByContentHash(t *testing.T) {
	s := newTestStore(t, testStorageConfig(t))
	content := []byte("some document body")

	if found, _, _ := s.Exists(context.Background(), content); found {
		t.Error("空库中 Exists() = true, want false")
	}

	result := s.Add(context.Background(), content, "a.txt")
	found, docID, err := s.Exists(context.Background(), content)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !found || docID != result.DocumentID {
		t.Errorf("Exists() = (%v, %s), want (true, %s)", found, docID, result.DocumentID)
	}
}

func TestLocalStore_SearchWithoutDocuments(t *testing.T) {
	s := newTestStore(t, testStorageConfig(t))

	_, err := s.Search(context.Background(), "anything", 2)
	if !errors.Is(err, ErrNoIndex) {
		t.Errorf("空库 Search() error = %v, want ErrNoIndex", err)
	}
}

func TestLocalStore_AdditiveMergeAcrossDocuments(t *testing.T) {
	s := newTestStore(t, testStorageConfig(t))

	// 第一个文档使用罕见字符, 第二个文档是普通文本
	phrase := "zqzq jxjx zqzq jxjx zqzq"
	first := s.Add(context.Background(), []byte(phrase), "rare.txt")
	if first.Status != model.StatusSuccess {
		t.Fatalf("第一次 Add() status = %s", first.Status)
	}
	second := s.Add(context.Background(), []byte("plain common words about nothing in particular"), "plain.txt")
	if second.Status != model.StatusSuccess {
		t.Fatalf("第二次 Add() status = %s", second.Status)
	}

	// 第二次添加是合并式的: 第一个文档的分块仍可被检索到
	results, err := s.Search(context.Background(), phrase, 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() results = %d, want 1", len(results))
	}
	if results[0].DocumentID != first.DocumentID {
		t.Errorf("检索命中 = %s, want 第一个文档 %s", results[0].DocumentID, first.DocumentID)
	}
	if !strings.Contains(results[0].Content, "zqzq") {
		t.Errorf("检索到的分块不包含原文短语: %q", results[0].Content)
	}
}

func TestLocalStore_RemoveUnknownDocument(t *testing.T) {
	s := newTestStore(t, testStorageConfig(t))

	result := s.Remove(context.Background(), "doc_0000000000000000")
	if result.Status != model.StatusError || !result.NotFound {
		t.Errorf("Remove() = %+v, want error/not-found", result)
	}
	if result.Message != "Document doc_0000000000000000 not found" {
		t.Errorf("Remove() message = %q", result.Message)
	}
}

func TestLocalStore_RemoveDropsFromList(t *testing.T) {
	s := newTestStore(t, testStorageConfig(t))
	added := s.Add(context.Background(), []byte("to be removed"), "gone.txt")

	result := s.Remove(context.Background(), added.DocumentID)
	if result.Status != model.StatusSuccess {
		t.Fatalf("Remove() status = %s, message = %s", result.Status, result.Message)
	}
	wantMsg := "Document " + added.DocumentID + " removed from metadata. Rebuild vector store to fully remove."
	if result.Message != wantMsg {
		t.Errorf("Remove() message = %q, want %q", result.Message, wantMsg)
	}

	docs, _ := s.List(context.Background())
	for _, d := range docs {
		if d.DocumentID == added.DocumentID {
			t.Error("删除后的文档仍出现在列表中")
		}
	}
}

func TestLocalStore_PersistsAcrossRestart(t *testing.T) {
	storageCfg := testStorageConfig(t)

	s1 := newTestStore(t, storageCfg)
	added := s1.Add(context.Background(), []byte("content that must survive a restart"), "persist.txt")
	if added.Status != model.StatusSuccess {
		t.Fatalf("Add() status = %s", added.Status)
	}

	// 在同一组路径上重建存储, 模拟进程重启
	s2 := newTestStore(t, storageCfg)
	docs, err := s2.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 1 || docs[0].DocumentID != added.DocumentID {
		t.Fatalf("重启后 List() = %+v, want 原文档", docs)
	}

	results, err := s2.Search(context.Background(), "content that must survive a restart", 1)
	if err != nil {
		t.Fatalf("重启后 Search() error = %v", err)
	}
	if len(results) != 1 || results[0].DocumentID != added.DocumentID {
		t.Errorf("重启后检索不到已持久化的分块: %+v", results)
	}
}

func TestLocalStore_EmbeddingFailureReportsError(t *testing.T) {
	storageCfg := testStorageConfig(t)
	s, err := NewLocalStore(storageCfg, config.RAGConfig{TopK: 2, ChunkSize: 200, ChunkOverlap: 20}, failingEmbedder{})
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	result := s.Add(context.Background(), []byte("will not embed"), "fail.txt")
	if result.Status != model.StatusError {
		t.Fatalf("Add() status = %s, want error", result.Status)
	}
	if !strings.HasPrefix(result.Message, "Error processing document:") {
		t.Errorf("Add() message = %q", result.Message)
	}
}
