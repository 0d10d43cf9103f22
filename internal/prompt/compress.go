package prompt

import "strings"

// compressionMargin is held back from the budget to absorb estimation
// drift between per-block sums and the final joined prompt.
const compressionMargin = 64

// omittedNotice replaces the context section when not even one source
// block fits the remaining budget.
const omittedNotice = "（由于长度限制，相关文献内容已省略）"

// Compress fits prompt within budget tokens. Prompts already within
// budget pass through untouched. Otherwise the context section is
// rebuilt block by block, highest-ranked first, stopping before the
// block that would overflow; blocks are never cut in the middle. When
// nothing fits, the context section becomes a fixed omission notice.
func Compress(prompt string, budget int) string {
	if EstimateTokens(prompt) <= budget {
		return prompt
	}

	pre, blocks, post, ok := splitContext(prompt)
	if !ok {
		// No context section to trim; nothing else is droppable.
		return prompt
	}

	skeleton := pre + contextHeader + "\n" + omittedNotice + post
	remaining := budget - EstimateTokens(skeleton) - compressionMargin

	var kept []string
	for _, block := range blocks {
		cost := EstimateTokens(block)
		if cost > remaining {
			break
		}
		kept = append(kept, block)
		remaining -= cost
	}

	if len(kept) == 0 {
		return skeleton
	}
	return pre + contextHeader + "\n\n" + strings.Join(kept, "\n\n") + post
}

// splitContext breaks a built prompt into the text before the context
// section, the per-source blocks, and the text after it. Returns
// ok=false when the prompt has no recognizable context section.
func splitContext(prompt string) (pre string, blocks []string, post string, ok bool) {
	start := strings.Index(prompt, contextHeader)
	if start < 0 {
		return "", nil, "", false
	}

	bodyStart := start + len(contextHeader)
	end := len(prompt)
	// The context section runs until the next section header.
	for _, header := range []string{historyHeader, questionHeader} {
		if idx := strings.Index(prompt[bodyStart:], header); idx >= 0 && bodyStart+idx < end {
			end = bodyStart + idx
		}
	}

	pre = prompt[:start]
	post = "\n\n" + strings.TrimLeft(prompt[end:], "\n")
	if end == len(prompt) {
		post = ""
	}

	body := strings.TrimSpace(prompt[bodyStart:end])
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || block == emptyContext {
			continue
		}
		blocks = append(blocks, block)
	}
	return pre, blocks, post, true
}
