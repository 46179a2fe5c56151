package ai

import (
	"fmt"
	"regexp"
	"strings"

	"pantry-chef/internal/pkg/common"
)

// 模型輸出的 JSON 常帶各種雜訊：markdown code fence、前後說明文字、
// 欄位間漏掉逗號、鍵沒加引號。這裡把修復策略集中成一個工具，
// 依序嘗試，跟任何 AI 呼叫解耦，可單獨測試。

var (
	missingCommaBetweenStrings = regexp.MustCompile(`"\s*\n\s*"`)
	missingCommaBetweenObjects = regexp.MustCompile(`}\s*{`)
	missingCommaAfterValue     = regexp.MustCompile(`(["\d\]}])\s*\n(\s*")`)
)

// StripFences 去掉 ```json ... ``` 包裹
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// BracketBlock 擷取第一個 open 到最後一個 close 之間的內容（含括號）
func BracketBlock(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// RepairCommas 補上模型常漏掉的逗號
func RepairCommas(text string) string {
	text = missingCommaBetweenStrings.ReplaceAllString(text, "\",\n\"")
	text = missingCommaBetweenObjects.ReplaceAllString(text, "},{")
	text = missingCommaAfterValue.ReplaceAllString(text, "$1,\n$2")
	return text
}

// DecodeLenientArray 寬鬆解析頂層為陣列的模型輸出。
// 策略依序：直接解析 → 去 fence → 擷取中括號區塊 → 補逗號 → 補鍵引號。
func DecodeLenientArray(text string, v interface{}) error {
	return decodeLenient(text, v, '[', ']')
}

// DecodeLenientObject 寬鬆解析頂層為物件的模型輸出
func DecodeLenientObject(text string, v interface{}) error {
	return decodeLenient(text, v, '{', '}')
}

func decodeLenient(text string, v interface{}, open, close byte) error {
	candidates := []string{strings.TrimSpace(text)}

	stripped := StripFences(text)
	if stripped != candidates[0] {
		candidates = append(candidates, stripped)
	}
	if block, ok := BracketBlock(stripped, open, close); ok {
		candidates = append(candidates, block)
		candidates = append(candidates, RepairCommas(block))
		candidates = append(candidates, common.QuoteJSONKeys(RepairCommas(block)))
	}

	var lastErr error
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if err := common.ParseJSON(candidate, v); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no parseable JSON in response")
	}
	return fmt.Errorf("lenient JSON decode failed: %w", lastErr)
}

// ExtractQuotedStrings 最後手段：把文字中的帶引號字串都撈出來。
// 用在只需要一層字串陣列、但模型連合法陣列都產不出來的時候。
func ExtractQuotedStrings(text string) []string {
	var out []string
	matches := regexp.MustCompile(`"([^"]+)"`).FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		if s := strings.TrimSpace(m[1]); s != "" {
			out = append(out, s)
		}
	}
	return out
}
