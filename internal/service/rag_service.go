// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rag-smart-go/internal/store"
	"rag-smart-go/pkg/llm"
	"rag-smart-go/pkg/log"
)

// noInformationMessage 是检索结果为空时返回给用户的固定提示。
const noInformationMessage = "I don't have enough information to answer that question. Please upload relevant documents first."

// promptTemplate 是提交给 LLM 的固定模板。
const promptTemplate = "Use the following information to answer the question:\n\n%s\n\nQuestion: %s"

// RAGService 定义了检索增强问答的接口。
type RAGService interface {
	// Answer 对查询做检索增强回答。检索或生成的任何失败都被转换为
	// 面向用户的字符串而不是错误：问答路径绝不向 HTTP 层抛 500。
	Answer(ctx context.Context, query string) string
}

type ragService struct {
	store     store.DocumentStore
	llmClient llm.Client
	topK      int
}

// NewRAGService 创建一个新的 RAGService 实例。
func NewRAGService(docStore store.DocumentStore, llmClient llm.Client, topK int) RAGService {
	if topK <= 0 {
		topK = 2
	}
	return &ragService{
		store:     docStore,
		llmClient: llmClient,
		topK:      topK,
	}
}

// Answer 协调一次完整的 RAG 流程：检索 top-k 分块、拼接上下文、调用补全服务。
func (s *ragService) Answer(ctx context.Context, query string) string {
	log.Infof("[RAGService] 开始处理查询: '%s', topK: %d", query, s.topK)

	// 1. 检索与查询最相似的分块
	chunks, err := s.store.Search(ctx, query, s.topK)
	if err != nil {
		if errors.Is(err, store.ErrNoIndex) {
			// 空索引是一个需要向用户解释的状态, 不是堆栈错误
			log.Warnf("[RAGService] 向量索引为空, 提示用户先上传文档")
			return fmt.Sprintf("Error: %v. Please upload at least one document first.", err)
		}
		log.Errorf("[RAGService] 检索失败: %v", err)
		return fmt.Sprintf("An error occurred: %v", err)
	}

	// 2. 零命中时直接返回固定提示, 不调用补全服务
	if len(chunks) == 0 {
		log.Infof("[RAGService] 检索结果为空, 返回固定提示")
		return noInformationMessage
	}
	log.Infof("[RAGService] 检索到 %d 个分块", len(chunks))

	// 3. 以换行拼接分块文本, 套入固定模板
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Content)
	}
	contextBlock := strings.Join(texts, "\n")
	prompt := fmt.Sprintf(promptTemplate, contextBlock, query)

	// 4. 调用补全服务, 只取第一条生成结果
	answer, err := s.llmClient.Complete(ctx, prompt)
	if err != nil {
		log.Errorf("[RAGService] 调用补全服务失败: %v", err)
		return fmt.Sprintf("An error occurred: %v", err)
	}

	log.Infof("[RAGService] 查询处理完成, 回答长度: %d", len(answer))
	return answer
}
