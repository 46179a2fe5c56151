package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/infrastructure/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGrocy 模擬外部庫存系統
type fakeGrocy struct {
	changedTime string
	stock       string
	stockCalls  int
}

func (f *fakeGrocy) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/system/db-changed-time", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"changed_time": "` + f.changedTime + `"}`))
	})
	mux.HandleFunc("/stock", func(w http.ResponseWriter, r *http.Request) {
		f.stockCalls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(f.stock))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSync(t *testing.T, grocy *fakeGrocy) (*SyncService, *storage.Store) {
	t.Helper()
	srv := grocy.server(t)
	db, err := storage.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client := NewGrocyClient(&config.GrocyConfig{APIURL: srv.URL, APIKey: "test-key"})
	return NewSyncService(db.DB(), client), db
}

func TestSyncUpsertsStock(t *testing.T) {
	grocy := &fakeGrocy{
		changedTime: "2026-08-30T10:00:00Z",
		stock: `[
			{"product_id": 1, "amount": 2, "best_before_date": "2026-09-10", "product": {"name": "Chicken Breast"}},
			{"product_id": 2, "amount": 1, "best_before_date": "2026-09-01", "product": {"name": "Rice"}}
		]`,
	}
	sync, db := newTestSync(t, grocy)

	changed, err := sync.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	var count int
	require.NoError(t, db.DB().QueryRow(`SELECT COUNT(*) FROM inventory`).Scan(&count))
	assert.Equal(t, 2, count)

	var name string
	require.NoError(t, db.DB().QueryRow(`SELECT name FROM inventory WHERE product_id = 1`).Scan(&name))
	assert.Equal(t, "Chicken Breast", name)
}

func TestSyncSkipsWhenUnchanged(t *testing.T) {
	grocy := &fakeGrocy{
		changedTime: "2026-08-30T10:00:00Z",
		stock:       `[{"product_id": 1, "amount": 2, "best_before_date": "", "product": {"name": "Rice"}}]`,
	}
	sync, _ := newTestSync(t, grocy)

	changed, err := sync.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = sync.Sync(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, grocy.stockCalls, "變動時間沒變就不該再拉存貨")
}

func TestSyncRemovesVanishedProducts(t *testing.T) {
	grocy := &fakeGrocy{
		changedTime: "2026-08-30T10:00:00Z",
		stock: `[
			{"product_id": 1, "amount": 2, "best_before_date": "", "product": {"name": "Rice"}},
			{"product_id": 2, "amount": 1, "best_before_date": "", "product": {"name": "Beans"}}
		]`,
	}
	sync, db := newTestSync(t, grocy)

	_, err := sync.Sync(context.Background())
	require.NoError(t, err)

	// 外部系統少了一項，再同步一次
	grocy.changedTime = "2026-08-30T11:00:00Z"
	grocy.stock = `[{"product_id": 1, "amount": 2, "best_before_date": "", "product": {"name": "Rice"}}]`

	changed, err := sync.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	var count int
	require.NoError(t, db.DB().QueryRow(`SELECT COUNT(*) FROM inventory`).Scan(&count))
	assert.Equal(t, 1, count)
}
