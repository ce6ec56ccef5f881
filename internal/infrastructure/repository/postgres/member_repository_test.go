package postgres

import (
	"reflect"
	"testing"
)

func TestBuildAdjustCounterQuery(t *testing.T) {
	t.Run("binds delta before the id", func(t *testing.T) {
		query, args, err := buildAdjustCounterQuery("points", 111111111111111111, 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "UPDATE players SET points = GREATEST(points + $1, 0), updated_at = NOW() WHERE id = $2 RETURNING points"
		if query != want {
			t.Fatalf("unexpected query:\n got %s\nwant %s", query, want)
		}
		if !reflect.DeepEqual(args, []any{5, int64(111111111111111111)}) {
			t.Fatalf("unexpected args: %v", args)
		}
	})

	t.Run("negative delta still clamps at zero in the expression", func(t *testing.T) {
		query, args, err := buildAdjustCounterQuery("strikes", 42, -1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "UPDATE players SET strikes = GREATEST(strikes + $1, 0), updated_at = NOW() WHERE id = $2 RETURNING strikes"
		if query != want {
			t.Fatalf("unexpected query:\n got %s\nwant %s", query, want)
		}
		if !reflect.DeepEqual(args, []any{-1, int64(42)}) {
			t.Fatalf("unexpected args: %v", args)
		}
	})
}

func TestBuildCountRankedAheadQuery(t *testing.T) {
	query, args, err := buildCountRankedAheadQuery(30, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "SELECT COUNT(*) FROM players WHERE (points > $1 OR (points = $2 AND id < $3))"
	if query != want {
		t.Fatalf("unexpected query:\n got %s\nwant %s", query, want)
	}
	if !reflect.DeepEqual(args, []any{30, 30, int64(7)}) {
		t.Fatalf("unexpected args: %v", args)
	}
}
