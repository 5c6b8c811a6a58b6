package history

import (
	"fmt"
	"testing"
	"time"
)

var noon = time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

func TestEntryLine(t *testing.T) {
	tests := []struct {
		name string
		e    Entry
		want string
	}{
		{name: "with title", e: Entry{At: noon, Station: "A", Title: "Foo - Bar"}, want: "12:30  A - Foo - Bar"},
		{name: "without title", e: Entry{At: noon, Station: "B"}, want: "12:30  B: no track information"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.Line(); got != tt.want {
				t.Fatalf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogNewestFirstAndBounded(t *testing.T) {
	l := New(3)
	for i := 0; i < 5; i++ {
		l.Add(Entry{At: noon, Station: fmt.Sprintf("S%d", i), Title: "t"})
	}
	if l.Len() != 3 {
		t.Fatalf("Len = %d, want 3", l.Len())
	}
	got := l.Entries()
	for i, want := range []string{"S4", "S3", "S2"} {
		if got[i].Station != want {
			t.Errorf("entry %d = %q, want %q", i, got[i].Station, want)
		}
	}
}

func TestLogDropsRepeats(t *testing.T) {
	l := New(0)
	if !l.Add(Entry{At: noon, Station: "A", Title: "x"}) {
		t.Fatal("first add rejected")
	}
	if l.Add(Entry{At: noon.Add(time.Minute), Station: "A", Title: "x"}) {
		t.Fatal("repeat accepted")
	}
	if !l.Add(Entry{At: noon, Station: "A", Title: "y"}) {
		t.Fatal("new title rejected")
	}
	if want := "12:30  A - y\n12:30  A - x"; l.Text() != want {
		t.Fatalf("Text() = %q, want %q", l.Text(), want)
	}
}
