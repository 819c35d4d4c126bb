package pipeline

// SplitText 将长文本按指定大小和重叠进行滑动窗口切分。
// 切分以 rune 为单位，步长为 chunkSize - chunkOverlap；
// 最后一个分块可以短于 chunkSize，窗口到达文本末尾即停止。
// 短于一个窗口的文本恰好产生一个等于全文的分块。
func SplitText(text string, chunkSize int, chunkOverlap int) []string {
	if chunkSize <= chunkOverlap || chunkOverlap <= 0 {
		// 重叠参数非法时退化为简单等宽切分
		return simpleSplit(text, chunkSize)
	}

	var chunks []string
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := chunkSize - chunkOverlap
	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

func simpleSplit(text string, chunkSize int) []string {
	var chunks []string
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	for i := 0; i < len(runes); i += chunkSize {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
