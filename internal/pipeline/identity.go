// Package pipeline 定义了文档处理的基础步骤：内容哈希与文本分块。
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ContentHash 计算文件内容的 SHA-256 摘要，返回十六进制字符串。
// 相同的字节序列永远得到相同的摘要，用于重复检测与文档 ID 派生。
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DocumentID 从内容摘要派生文档 ID：取摘要前 16 位十六进制字符并加上 doc_ 前缀。
func DocumentID(fileHash string) string {
	return fmt.Sprintf("doc_%s", fileHash[:16])
}
