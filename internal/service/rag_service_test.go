package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rag-smart-go/internal/model"
	"rag-smart-go/internal/store"
)

// fakeStore 是测试用的 DocumentStore：Search 返回预设的分块或错误。
type fakeStore struct {
	chunks    []model.RetrievedChunk
	searchErr error
	gotQuery  string
	gotTopK   int
}

func (f *fakeStore) Exists(ctx context.Context, content []byte) (bool, string, error) {
	return false, "", nil
}

func (f *fakeStore) Add(ctx context.Context, content []byte, filename string) *model.AddResult {
	return &model.AddResult{Status: model.StatusSuccess}
}

func (f *fakeStore) List(ctx context.Context) ([]model.Document, error) {
	return nil, nil
}

func (f *fakeStore) Remove(ctx context.Context, documentID string) *model.RemoveResult {
	return &model.RemoveResult{Status: model.StatusSuccess}
}

func (f *fakeStore) Search(ctx context.Context, query string, topK int) ([]model.RetrievedChunk, error) {
	f.gotQuery = query
	f.gotTopK = topK
	return f.chunks, f.searchErr
}

func (f *fakeStore) Backend() string {
	return "local"
}

// fakeLLM 记录收到的 prompt 并返回预设的回答或错误。
type fakeLLM struct {
	answer    string
	err       error
	gotPrompt string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.gotPrompt = prompt
	return f.answer, f.err
}

func TestAnswer_NoIndexYet(t *testing.T) {
	docStore := &fakeStore{searchErr: store.ErrNoIndex}
	svc := NewRAGService(docStore, &fakeLLM{}, 2)

	got := svc.Answer(context.Background(), "any question")
	want := "Error: no vector store available, please add documents first. Please upload at least one document first."
	if got != want {
		t.Errorf("Answer() = %q, want %q", got, want)
	}
}

func TestAnswer_NoChunksRetrieved(t *testing.T) {
	svc := NewRAGService(&fakeStore{}, &fakeLLM{}, 2)

	got := svc.Answer(context.Background(), "unknown topic")
	want := "I don't have enough information to answer that question. Please upload relevant documents first."
	if got != want {
		t.Errorf("Answer() = %q, want %q", got, want)
	}
}

func TestAnswer_PromptAssembly(t *testing.T) {
	docStore := &fakeStore{chunks: []model.RetrievedChunk{
		{DocumentID: "doc_a", Content: "first chunk"},
		{DocumentID: "doc_b", Content: "second chunk"},
	}}
	llmClient := &fakeLLM{answer: "the composed answer"}
	svc := NewRAGService(docStore, llmClient, 2)

	got := svc.Answer(context.Background(), "what is it?")
	if got != "the composed answer" {
		t.Fatalf("Answer() = %q", got)
	}

	wantPrompt := "Use the following information to answer the question:\n\n" +
		"first chunk\nsecond chunk\n\nQuestion: what is it?"
	if llmClient.gotPrompt != wantPrompt {
		t.Errorf("提交给 LLM 的 prompt = %q, want %q", llmClient.gotPrompt, wantPrompt)
	}
	if docStore.gotTopK != 2 {
		t.Errorf("检索 topK = %d, want 2", docStore.gotTopK)
	}
}

func TestAnswer_SearchFailure(t *testing.T) {
	docStore := &fakeStore{searchErr: errors.New("backend is down")}
	svc := NewRAGService(docStore, &fakeLLM{}, 2)

	got := svc.Answer(context.Background(), "q")
	if got != "An error occurred: backend is down" {
		t.Errorf("Answer() = %q", got)
	}
}

func TestAnswer_CompletionFailure(t *testing.T) {
	docStore := &fakeStore{chunks: []model.RetrievedChunk{{Content: "some context"}}}
	llmClient := &fakeLLM{err: errors.New("rate limited")}
	svc := NewRAGService(docStore, llmClient, 2)

	got := svc.Answer(context.Background(), "q")
	if !strings.HasPrefix(got, "An error occurred:") {
		t.Errorf("Answer() = %q, want 'An error occurred:' 前缀", got)
	}
}

func TestNewRAGService_DefaultTopK(t *testing.T) {
	docStore := &fakeStore{chunks: []model.RetrievedChunk{{Content: "c"}}}
	svc := NewRAGService(docStore, &fakeLLM{answer: "ok"}, 0)

	svc.Answer(context.Background(), "q")
	if docStore.gotTopK != 2 {
		t.Errorf("topK 非法时未回退到默认值 2, got %d", docStore.gotTopK)
	}
}
