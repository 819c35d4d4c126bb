// Package vectorindex 实现了一个进程内的扁平向量索引。
// 索引对全部条目做暴力余弦相似度计算，并以 gob 格式持久化到磁盘。
// 条目只追加不删除：上层通过重建索引来实现真正的删除。
package vectorindex

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"sort"
)

// Entry 是索引中的一个条目：一个分块的向量及其文本与来源信息。
type Entry struct {
	DocumentID string
	ChunkIndex int
	Content    string
	SourceFile string
	Vector     []float32
}

// ScoredEntry 是一次检索命中的条目及其相似度得分。
type ScoredEntry struct {
	Entry
	Score float64
}

// Index 持有全部索引条目。它本身不做并发控制，调用方负责串行化写入。
type Index struct {
	Entries []Entry
}

// New 创建一个空索引。
func New() *Index {
	return &Index{}
}

// Load 从磁盘加载一个已持久化的索引。
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开索引文件失败: %w", err)
	}
	defer f.Close()

	var ix Index
	if err := gob.NewDecoder(f).Decode(&ix); err != nil {
		return nil, fmt.Errorf("解码索引文件失败: %w", err)
	}
	return &ix, nil
}

// Save 将索引写入磁盘。
func (ix *Index) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建索引文件失败: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(ix); err != nil {
		return fmt.Errorf("编码索引失败: %w", err)
	}
	return nil
}

// Add 将新条目追加到索引中。追加是合并式的，绝不替换既有条目。
func (ix *Index) Add(entries []Entry) {
	ix.Entries = append(ix.Entries, entries...)
}

// Len 返回索引中的条目数。
func (ix *Index) Len() int {
	return len(ix.Entries)
}

// Search 对查询向量做暴力余弦相似度检索，按得分降序返回前 topK 个条目。
func (ix *Index) Search(vector []float32, topK int) []ScoredEntry {
	if topK <= 0 || len(ix.Entries) == 0 {
		return nil
	}

	scored := make([]ScoredEntry, 0, len(ix.Entries))
	for _, e := range ix.Entries {
		scored = append(scored, ScoredEntry{Entry: e, Score: cosineSimilarity(vector, e.Vector)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK]
}

// cosineSimilarity 计算两个向量的余弦相似度，零向量的相似度为 0。
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
