package cache

import (
	"strconv"
	"strings"

	"pantry-chef/internal/pkg/common"
)

// Stage 快取命名空間，每個管線階段一個，避免鍵值互相碰撞
type Stage string

const (
	StageFoodFilter Stage = "food_filter"
	StageCombos     Stage = "combinations"
	StageSearch     Stage = "search"
	StageDetails    Stage = "details"
	StageTaste      Stage = "taste"
	StageClassify   Stage = "classify"
	StageGenerate   Stage = "generate"
	StageReview     Stage = "review"
)

// Key 生成快取鍵。qualifier 依序串接，呼叫端需自行保證順序固定。
func Key(stage Stage, qualifiers ...string) string {
	raw := strings.Join(qualifiers, "|")
	return string(stage) + ":" + common.HashString(raw)
}

// KeyForSet 以「排序後」的名稱集合生成快取鍵，輸入順序不影響命中率
func KeyForSet(stage Stage, set []string, qualifiers ...string) string {
	canonical := strings.Join(common.SortedLower(set), ",")
	parts := append([]string{canonical}, qualifiers...)
	return Key(stage, parts...)
}

// InventoryHash 計算庫存快照的指紋，分類結果要跟著庫存變動失效
func InventoryHash(inventory []string) string {
	joined := strings.Join(common.SortedLower(inventory), ",")
	return common.HashString(joined)[:16]
}

// IntQualifier 把數值限定條件轉成穩定的字串片段
func IntQualifier(name string, value int) string {
	return name + "=" + strconv.Itoa(value)
}
