package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyForSetIgnoresOrderAndCase(t *testing.T) {
	a := KeyForSet(StageSearch, []string{"Rice", "beans", "Corn"})
	b := KeyForSet(StageSearch, []string{"corn", "RICE", "Beans"})
	assert.Equal(t, a, b)
}

func TestKeyForSetDistinguishesSets(t *testing.T) {
	a := KeyForSet(StageSearch, []string{"rice", "beans"})
	b := KeyForSet(StageSearch, []string{"rice", "corn"})
	assert.NotEqual(t, a, b)
}

func TestKeyStagesDoNotCollide(t *testing.T) {
	a := KeyForSet(StageSearch, []string{"rice"})
	b := KeyForSet(StageCombos, []string{"rice"})
	assert.NotEqual(t, a, b)
}

func TestKeyForSetQualifiersMatter(t *testing.T) {
	a := KeyForSet(StageSearch, []string{"rice"}, IntQualifier("max_ready_time", 30))
	b := KeyForSet(StageSearch, []string{"rice"}, IntQualifier("max_ready_time", 60))
	assert.NotEqual(t, a, b)
}

func TestInventoryHashStable(t *testing.T) {
	a := InventoryHash([]string{"Rice", "beans"})
	b := InventoryHash([]string{"BEANS", "rice"})
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}
