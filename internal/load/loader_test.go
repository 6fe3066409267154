package load

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestCopyValueTimeOfDay(t *testing.T) {
	t.Parallel()

	ts := time.Date(0, 1, 1, 8, 5, 30, 0, time.UTC)
	v := copyValue("dispatch_time", ts)
	pt, ok := v.(pgtype.Time)
	if !ok {
		t.Fatalf("copyValue(dispatch_time)=%T; want pgtype.Time", v)
	}
	wantMicros := int64((8*3600 + 5*60 + 30)) * 1_000_000
	if !pt.Valid || pt.Microseconds != wantMicros {
		t.Fatalf("pgtype.Time=%+v; want %d micros valid", pt, wantMicros)
	}
}

func TestCopyValueNullTime(t *testing.T) {
	t.Parallel()

	if v := copyValue("event_close_time", nil); v != nil {
		t.Fatalf("copyValue(nil)=%v; want nil", v)
	}
}

func TestCopyValuePassThrough(t *testing.T) {
	t.Parallel()

	// Non time-of-day columns keep their cell untouched, time.Time included.
	ts := time.Date(2024, 6, 15, 8, 5, 0, 0, time.UTC)
	if v := copyValue("dispatch_datetime", ts); v != any(ts) {
		t.Fatalf("copyValue(dispatch_datetime)=%v; want pass-through", v)
	}
	if v := copyValue("event_number", "E1"); v != "E1" {
		t.Fatalf("copyValue(event_number)=%v; want E1", v)
	}
}

func TestPgIdent(t *testing.T) {
	t.Parallel()

	if got := pgIdent("fire_incidents"); got != `"fire_incidents"` {
		t.Fatalf("pgIdent=%s; want quoted", got)
	}
	if got := pgIdent(`evil"name`); got != `"evil""name"` {
		t.Fatalf("pgIdent=%s; want escaped quotes", got)
	}
}
