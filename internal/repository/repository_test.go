package repository

import (
	"errors"
	"testing"
)

func TestTableRouter_IdentityByDefault(t *testing.T) {
	r, err := NewTableRouter(nil)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	table, err := r.Resolve("carros-motos")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if table != "carros-motos" {
		t.Fatalf("table=%q", table)
	}
}

func TestTableRouter_Override(t *testing.T) {
	r, err := NewTableRouter(map[string]string{"tecnologia": "tecnologia_v2"})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if table, _ := r.Resolve("tecnologia"); table != "tecnologia_v2" {
		t.Fatalf("table=%q", table)
	}
}

func TestTableRouter_UnknownCategory(t *testing.T) {
	r, _ := NewTableRouter(nil)
	for _, raw := range []string{"", "users; drop table x", "Tecnologia"} {
		if _, err := r.Resolve(raw); !errors.Is(err, ErrUnknownCategory) {
			t.Fatalf("Resolve(%q) err=%v want ErrUnknownCategory", raw, err)
		}
	}
	if _, err := NewTableRouter(map[string]string{"nope": "x"}); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("err=%v", err)
	}
	if _, err := NewTableRouter(map[string]string{"imoveis": " "}); err == nil {
		t.Fatalf("expected error for empty table")
	}
}
