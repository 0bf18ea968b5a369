package wal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

type entry struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

func readEntries(t *testing.T, w *WAL) []entry {
	t.Helper()
	var out []entry
	err := w.ReadAll(func(raw []byte) error {
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadAll err=%v", err)
	}
	return out
}

func TestWriteAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	w, err := NewWAL(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	for _, e := range []entry{{"1", 10}, {"2", 20.5}} {
		if err := w.Write(e); err != nil {
			t.Fatal(err)
		}
	}
	got := readEntries(t, w)
	if len(got) != 2 || got[0].ID != "1" || got[1].Value != 20.5 {
		t.Fatalf("got %+v", got)
	}

	// 讀完後繼續寫入仍是追加在尾端
	if err := w.Write(entry{"3", 1}); err != nil {
		t.Fatal(err)
	}
	if got := readEntries(t, w); len(got) != 3 {
		t.Fatalf("len=%d want 3", len(got))
	}
	if w.Path() != path {
		t.Fatalf("path=%q", w.Path())
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	w, err := NewWAL(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(entry{"1", 1}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w, err = NewWAL(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if got := readEntries(t, w); len(got) != 1 {
		t.Fatalf("len=%d want 1", len(got))
	}
}

func TestReadAllIgnoresTornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	data := "{\"id\":\"1\",\"value\":1}\n{\"id\":\"2\",\"val"
	if err := os.WriteFile(path, []byte(data), FileMode); err != nil {
		t.Fatal(err)
	}
	w, err := NewWAL(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if got := readEntries(t, w); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("got %+v", got)
	}
	rest, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(rest) != "{\"id\":\"1\",\"value\":1}" {
		t.Fatalf("torn tail should be truncated, file=%q", rest)
	}
}

// TestTornTailThenAppendReplays 殘缺尾端 -> 追加寫入 -> 重開，仍可完整重放
func TestTornTailThenAppendReplays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	if err := os.WriteFile(path, []byte("{\"id\":\"1\",\"value\":1}\n{\"id\":\"2\", \"val"), FileMode); err != nil {
		t.Fatal(err)
	}

	w, err := NewWAL(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := readEntries(t, w); len(got) != 1 {
		t.Fatalf("len=%d want 1", len(got))
	}
	if err := w.Write(entry{"3", 3}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w, err = NewWAL(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	got := readEntries(t, w)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("got %+v", got)
	}
}

func TestReadAllReportsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	if err := os.WriteFile(path, []byte("{\"id\":\"1\"}\n]garbage\n"), FileMode); err != nil {
		t.Fatal(err)
	}
	w, err := NewWAL(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.ReadAll(func([]byte) error { return nil }); err == nil {
		t.Fatal("want error for corrupted entry")
	}
}
