package db

import (
	"strings"
	"testing"
	"time"
)

func TestConnString(t *testing.T) {
	t.Run("database url wins", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
		t.Setenv("DB_HOST", "ignored")
		if got := connString(); got != "postgres://u:p@db:5432/x" {
			t.Errorf("connString() = %q", got)
		}
	})

	t.Run("built from components", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("DB_HOST", "pg.internal")
		t.Setenv("DB_PORT", "")
		t.Setenv("DB_PASSWORD", "secret")
		got := connString()
		for _, want := range []string{"host=pg.internal", "port=5432", "password=secret", "search_path=cleaner_helper", "sslmode=disable"} {
			if !strings.Contains(got, want) {
				t.Errorf("connString() = %q, missing %q", got, want)
			}
		}
	})
}

func TestNullHelpers(t *testing.T) {
	if nullString("").Valid {
		t.Error("nullString(\"\") should be NULL")
	}
	if s := nullString("Tomorrow_2025-08-07"); !s.Valid || s.String != "Tomorrow_2025-08-07" {
		t.Errorf("nullString() = %+v", s)
	}

	if nullTime(nil).Valid {
		t.Error("nullTime(nil) should be NULL")
	}
	d := time.Date(2025, 8, 7, 0, 0, 0, 0, time.UTC)
	if n := nullTime(&d); !n.Valid || !n.Time.Equal(d) {
		t.Errorf("nullTime() = %+v", n)
	}
}
