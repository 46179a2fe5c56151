package inventory

import "regexp"

// 包裝尺寸樣式：「<名稱> - <數字><單位>」，單位可省略。
// 只剝結尾那段，名稱中間的連字號（如 Ready-to-eat）不受影響。
var sizeSuffixPattern = regexp.MustCompile(`(?i)\s+-\s+\d+(?:\s*(?:oz|g|ml|pack|lb))?\s*$`)

// CleanIngredientName 去掉品項名稱尾端的包裝尺寸或數量資訊。
// 例如 "Beef Stew - 20oz" 會變成 "Beef Stew"。純函式，無 I/O。
func CleanIngredientName(name string) string {
	if name == "" {
		return ""
	}
	return sizeSuffixPattern.ReplaceAllString(name, "")
}
