package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("player_id", "enrolled_at").
		From("queue").
		Where(Eq("player_id", int64(42))).
		OrderBy("enrolled_at", "id").
		Limit(30).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT player_id, enrolled_at FROM queue WHERE player_id = $1 ORDER BY enrolled_at, id LIMIT 30"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != int64(42) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderGt(t *testing.T) {
	query, args, err := Select("COUNT(*)").
		From("players").
		Where(Gt("points", 30)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT COUNT(*) FROM players WHERE points > $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != 30 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("queue").
		Columns("player_id", "enrolled_at").
		Values(int64(7), "2026-01-01T00:00:00Z").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO queue (player_id, enrolled_at) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		PlayerID int64  `db:"player_id"`
		Nickname string `db:"valorant_nickname"`
		Skipped  string `db:"-"`
	}

	query, args, err := InsertModel("players", row{PlayerID: 9, Nickname: "n#tag"}, "")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}

	wantQuery := "INSERT INTO players (player_id, valorant_nickname) VALUES ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(9) || args[1] != "n#tag" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilderSetExpr(t *testing.T) {
	query, args, err := Update("players").
		SetExpr("points", "GREATEST(points + ?, 0)", -100).
		Where(Eq("id", int64(1))).
		Suffix("RETURNING points").
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE players SET points = GREATEST(points + $1, 0) WHERE id = $2 RETURNING points"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != -100 || args[1] != int64(1) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("queue").
		Where(In("player_id", []any{int64(1), int64(2), int64(3)})).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM queue WHERE player_id IN ($1, $2, $3)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilderRequiresConditions(t *testing.T) {
	if _, _, err := DeleteFrom("queue").ToSQL(); err == nil {
		t.Fatal("expected error for delete without conditions")
	}
}

func TestInColumnWithEmptyValuesNeverMatches(t *testing.T) {
	query, args, err := DeleteFrom("queue").
		Where(In("player_id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM queue WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
