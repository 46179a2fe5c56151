package user

import (
	"context"
	"testing"

	"pantry-chef/internal/core/scoring"
	"pantry-chef/internal/infrastructure/storage"
	"pantry-chef/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(store.DB())
}

func TestCreateAndExists(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	exists, err := service.Exists(ctx, "alyssa")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, service.Create(ctx, "alyssa", nil))

	exists, err = service.Exists(ctx, "alyssa")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateDuplicate(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.Create(ctx, "alyssa", nil))
	assert.ErrorIs(t, service.Create(ctx, "alyssa", nil), common.ErrUserExists)
}

func TestList(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.Create(ctx, "alyssa", nil))
	require.NoError(t, service.Create(ctx, "ben", nil))

	users, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestGetPreferencesDefaults(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.Create(ctx, "alyssa", nil))

	prefs, err := service.GetPreferences(ctx, "alyssa")
	require.NoError(t, err)
	assert.Equal(t, scoring.EffortModerate, prefs.EffortTolerance)
	assert.Empty(t, prefs.TasteProfile)
	assert.Empty(t, prefs.LikedIngredients)
	assert.Empty(t, prefs.DietaryRestrictions.Diet)
}

func TestGetPreferencesUnknownUser(t *testing.T) {
	service := newTestService(t)
	_, err := service.GetPreferences(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestCreateWithPreferences(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	initial := DefaultPreferences()
	initial.EffortTolerance = scoring.EffortEasy
	initial.TasteProfile = map[string]float64{"sweetness": 70, "saltiness": 40}
	require.NoError(t, service.Create(ctx, "alyssa", initial))

	prefs, err := service.GetPreferences(ctx, "alyssa")
	require.NoError(t, err)
	assert.Equal(t, scoring.EffortEasy, prefs.EffortTolerance)
	assert.Equal(t, 70.0, prefs.TasteProfile["sweetness"])
}

func TestUpdatePreferencesMergesFields(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	initial := DefaultPreferences()
	initial.EffortTolerance = scoring.EffortEasy
	initial.LikedIngredients = []string{"garlic"}
	require.NoError(t, service.Create(ctx, "alyssa", initial))

	// 只更新味覺輪廓，其餘欄位應保留
	update := &Preferences{TasteProfile: map[string]float64{"savoriness": 90}}
	require.NoError(t, service.UpdatePreferences(ctx, "alyssa", update))

	prefs, err := service.GetPreferences(ctx, "alyssa")
	require.NoError(t, err)
	assert.Equal(t, 90.0, prefs.TasteProfile["savoriness"])
	assert.Equal(t, scoring.EffortEasy, prefs.EffortTolerance)
	assert.Equal(t, []string{"garlic"}, prefs.LikedIngredients)
}

func TestUpdatePreferencesUnknownUser(t *testing.T) {
	service := newTestService(t)
	err := service.UpdatePreferences(context.Background(), "ghost", &Preferences{})
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestRecipePreferencesFallsBackToDefaults(t *testing.T) {
	service := newTestService(t)

	prefs := service.RecipePreferences(context.Background(), "ghost")
	require.NotNil(t, prefs)
	assert.Equal(t, scoring.EffortModerate, prefs.EffortTolerance)
}

func TestRecipePreferencesRoundTrip(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	initial := DefaultPreferences()
	initial.DietaryRestrictions.Diet = "vegetarian"
	initial.DietaryRestrictions.Intolerances = []string{"peanut"}
	require.NoError(t, service.Create(ctx, "alyssa", initial))

	prefs := service.RecipePreferences(ctx, "alyssa")
	assert.Equal(t, "vegetarian", prefs.DietaryRestrictions.Diet)
	assert.Equal(t, []string{"peanut"}, prefs.DietaryRestrictions.Intolerances)
}
