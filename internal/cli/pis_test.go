package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/roadmap/pkg/board"
)

func TestWritePITable(t *testing.T) {
	pis := board.GeneratePIs(board.CalendarOptions{})

	var buf bytes.Buffer
	now := time.Date(2026, time.February, 3, 12, 0, 0, 0, time.UTC)
	if err := writePITable(&buf, pis, now); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{"Sprint", "pi1-s1", "S1 PI 1 2026", "Mon 19/01", "pi8-s3"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q", want)
		}
	}
	if got := strings.Count(out, "S1 PI"); got != len(pis) {
		t.Errorf("first sprints = %d, want %d", got, len(pis))
	}
}
