package pipeline

import (
	"strings"
	"testing"
)

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	text := "short text under one window"
	chunks := SplitText(text, 200, 20)
	if len(chunks) != 1 {
		t.Fatalf("SplitText() chunks = %d, want 1", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("SplitText() chunk = %q, want the whole text", chunks[0])
	}
}

func TestSplitText_ChunkCount(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		size      int
		overlap   int
		wantCount int
	}{
		{name: "exactly one window", length: 200, size: 200, overlap: 20, wantCount: 1},
		{name: "one char past a window", length: 201, size: 200, overlap: 20, wantCount: 2},
		{name: "500 chars default config", length: 500, size: 200, overlap: 20, wantCount: 3},
		{name: "two full steps", length: 380, size: 200, overlap: 20, wantCount: 2},
		{name: "empty text", length: 0, size: 200, overlap: 20, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("a", tt.length)
			chunks := SplitText(text, tt.size, tt.overlap)
			if len(chunks) != tt.wantCount {
				t.Errorf("SplitText(len=%d) chunks = %d, want %d", tt.length, len(chunks), tt.wantCount)
			}
		})
	}
}

func TestSplitText_EveryRuneCovered(t *testing.T) {
	// 使用互不相同的字符, 检查拼接去重后能还原原文
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteRune(rune('A' + i%26))
	}
	text := sb.String()

	chunks := SplitText(text, 200, 20)
	if len(chunks) != 3 {
		t.Fatalf("SplitText() chunks = %d, want 3", len(chunks))
	}

	// 相邻分块重叠 20 个字符, 去掉每个后续分块的前 20 个字符后拼接应还原原文
	reconstructed := chunks[0]
	for _, c := range chunks[1:] {
		reconstructed += c[20:]
	}
	if reconstructed != text {
		t.Errorf("重叠去除后拼接结果与原文不一致: got len %d, want len %d", len(reconstructed), len(text))
	}
}

func TestSplitText_OverlapWindows(t *testing.T) {
	text := strings.Repeat("x", 380)
	chunks := SplitText(text, 200, 20)
	if len(chunks) != 2 {
		t.Fatalf("SplitText() chunks = %d, want 2", len(chunks))
	}
	if len(chunks[0]) != 200 {
		t.Errorf("第一个分块长度 = %d, want 200", len(chunks[0]))
	}
	if len(chunks[1]) != 200 {
		t.Errorf("最后一个分块长度 = %d, want 200", len(chunks[1]))
	}
}

func TestSplitText_LastChunkMayBeShorter(t *testing.T) {
	text := strings.Repeat("x", 500)
	chunks := SplitText(text, 200, 20)
	last := chunks[len(chunks)-1]
	if len(last) != 140 {
		t.Errorf("最后一个分块长度 = %d, want 140", len(last))
	}
}

func TestSplitText_InvalidOverlapFallsBack(t *testing.T) {
	text := strings.Repeat("x", 450)
	// overlap >= size 时退化为简单等宽切分
	chunks := SplitText(text, 200, 200)
	if len(chunks) != 3 {
		t.Fatalf("SplitText() fallback chunks = %d, want 3", len(chunks))
	}
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total != 450 {
		t.Errorf("fallback 切分总长度 = %d, want 450", total)
	}
}

func TestSplitText_RuneBoundaries(t *testing.T) {
	// 多字节字符不能被切断
	text := strings.Repeat("中文分块测试", 60) // 360 runes
	chunks := SplitText(text, 200, 20)
	for i, c := range chunks {
		for _, r := range c {
			if r == '�' {
				t.Fatalf("分块 %d 含有被切断的多字节字符", i)
			}
		}
	}
}
