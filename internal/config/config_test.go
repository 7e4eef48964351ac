package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bidmonitor/internal/models"
)

func clearStoreEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BIDMON_STORE_URL", "BIDMON_STORE_KEY", "SUPABASE_URL", "SUPABASE_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	clearStoreEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("err=%v want ErrMissingCredentials", err)
	}
	if !strings.Contains(err.Error(), "store.url") || !strings.Contains(err.Error(), "store.key") {
		t.Fatalf("err=%v should name both keys", err)
	}
}

func TestLoad_LegacyEnvAndDefaults(t *testing.T) {
	clearStoreEnv(t)
	t.Setenv("SUPABASE_URL", "postgres://postgres@db.example.com:5432/postgres")
	t.Setenv("SUPABASE_KEY", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Store.URL != "postgres://postgres@db.example.com:5432/postgres" || cfg.Store.Key != "secret" {
		t.Fatalf("store=%+v", cfg.Store)
	}
	if cfg.Store.Schema != "auctions" || cfg.Store.ReferenceView != "vw_auctions_unified" || cfg.Store.HistoryTable != "auction_bid_history" {
		t.Fatalf("store=%+v", cfg.Store)
	}
	if cfg.Superbid.Timeout != 30*time.Second || cfg.Superbid.PageSize != 100 {
		t.Fatalf("superbid=%+v", cfg.Superbid)
	}
	if cfg.Monitor.ReferencePageSize != 1000 || cfg.Monitor.Source != "superbid" {
		t.Fatalf("monitor=%+v", cfg.Monitor)
	}
	if got := cfg.Categories(); len(got) != len(models.AllCategories) {
		t.Fatalf("categories=%d want %d", len(got), len(models.AllCategories))
	}
	if cfg.Cron.Enabled {
		t.Fatalf("cron should be off by default")
	}
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	clearStoreEnv(t)
	t.Setenv("BIDMON_STORE_URL", "postgres://a@h/db")
	t.Setenv("SUPABASE_URL", "postgres://b@h/db")
	t.Setenv("BIDMON_STORE_KEY", "k")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Store.URL != "postgres://a@h/db" {
		t.Fatalf("url=%q", cfg.Store.URL)
	}
}

func TestLoad_FileAndCategoryList(t *testing.T) {
	clearStoreEnv(t)
	t.Setenv("BIDMON_STORE_KEY", "k")
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
store:
  url: postgres://u@h/db
  category_tables:
    tecnologia: tecnologia_v2
superbid:
  timeout: 5s
monitor:
  categories: [tecnologia, imoveis]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Superbid.Timeout != 5*time.Second {
		t.Fatalf("timeout=%v", cfg.Superbid.Timeout)
	}
	cats := cfg.Categories()
	if len(cats) != 2 || cats[0] != models.CategoryTecnologia || cats[1] != models.CategoryImoveis {
		t.Fatalf("categories=%v", cats)
	}
	if cfg.Store.CategoryTables["tecnologia"] != "tecnologia_v2" {
		t.Fatalf("tables=%v", cfg.Store.CategoryTables)
	}
}

func TestLoad_CommaSeparatedCategories(t *testing.T) {
	clearStoreEnv(t)
	t.Setenv("BIDMON_STORE_URL", "postgres://u@h/db")
	t.Setenv("BIDMON_STORE_KEY", "k")
	t.Setenv("BIDMON_MONITOR_CATEGORIES", "animais, imoveis")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(cfg.Monitor.Categories) != 2 || cfg.Monitor.Categories[0] != "animais" || cfg.Monitor.Categories[1] != "imoveis" {
		t.Fatalf("categories=%v", cfg.Monitor.Categories)
	}
}

func TestValidate_RejectsUnknownCategory(t *testing.T) {
	cfg := Config{
		Store:   StoreConfig{URL: "postgres://u@h/db", Key: "k"},
		Monitor: MonitorConfig{Source: "superbid", Categories: []string{"tecnologia", "bitcoin"}},
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "bitcoin") {
		t.Fatalf("err=%v", err)
	}
	cfg.Monitor.Categories = []string{"tecnologia"}
	cfg.Store.CategoryTables = map[string]string{"bitcoin": "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown table mapping")
	}
}
