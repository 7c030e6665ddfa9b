package pgutil

import "testing"

var blocksTable = Table{
	Name: "blocks",
	PrimaryKeys: []Column{
		{Name: "volume", Type: "TEXT"},
		{Name: "idx", Type: "INTEGER"},
	},
	OtherColumns: []Column{{Name: "data", Type: "BYTEA"}},
}

func TestTable_SQL(t *testing.T) {
	for _, testCase := range []struct {
		name   string
		found  string
		wanted string
	}{
		{
			name:  "create",
			found: blocksTable.CreateSQL(),
			wanted: `CREATE TABLE IF NOT EXISTS "blocks" (` +
				`"volume" TEXT NOT NULL, "idx" INTEGER NOT NULL, ` +
				`"data" BYTEA NOT NULL, PRIMARY KEY ("volume", "idx"))`,
		},
		{
			name:  "upsert",
			found: blocksTable.UpsertSQL(),
			wanted: `INSERT INTO "blocks" ("volume", "idx", "data") ` +
				`VALUES ($1, $2, $3) ON CONFLICT ("volume", "idx") ` +
				`DO UPDATE SET "data"=EXCLUDED."data"`,
		},
		{
			name: "select-range",
			found: blocksTable.SelectSQL(
				blocksTable.Columns()[1:],
				1,
				`"idx" >= $2 AND "idx" < $3`,
			),
			wanted: `SELECT "idx", "data" FROM "blocks" WHERE "volume"=$1 ` +
				`AND "idx" >= $2 AND "idx" < $3`,
		},
		{
			name:   "delete-all-for-key",
			found:  blocksTable.DeleteSQL(1, ""),
			wanted: `DELETE FROM "blocks" WHERE "volume"=$1`,
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			if testCase.found != testCase.wanted {
				t.Fatalf(
					"wanted:\n%s\nfound:\n%s",
					testCase.wanted,
					testCase.found,
				)
			}
		})
	}
}
