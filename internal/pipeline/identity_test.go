package pipeline

import (
	"regexp"
	"testing"
)

func TestContentHash_Deterministic(t *testing.T) {
	data := []byte("the same bytes")
	if ContentHash(data) != ContentHash([]byte("the same bytes")) {
		t.Error("相同字节序列的哈希不一致")
	}
	if ContentHash(data) == ContentHash([]byte("different bytes")) {
		t.Error("不同字节序列得到了相同的哈希")
	}
}

func TestContentHash_Length(t *testing.T) {
	hash := ContentHash([]byte("hello"))
	if len(hash) != 64 {
		t.Errorf("ContentHash() length = %d, want 64", len(hash))
	}
}

func TestDocumentID_Format(t *testing.T) {
	hash := ContentHash([]byte("hello"))
	docID := DocumentID(hash)

	pattern := regexp.MustCompile(`^doc_[0-9a-f]{16}$`)
	if !pattern.MatchString(docID) {
		t.Errorf("DocumentID() = %q, 不符合 doc_ + 16 位十六进制的格式", docID)
	}
}

func TestDocumentID_StableAcrossCalls(t *testing.T) {
	content := []byte("a document body")
	id1 := DocumentID(ContentHash(content))
	id2 := DocumentID(ContentHash(content))
	if id1 != id2 {
		t.Errorf("相同内容派生出了不同的文档 ID: %s vs %s", id1, id2)
	}
}
