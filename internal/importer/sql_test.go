package importer

import (
	"testing"

	"backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDDL = `
CREATE TABLE users (
  id INT PRIMARY KEY,
  email VARCHAR(255) NOT NULL UNIQUE,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
);

CREATE TABLE orders (
  id INT PRIMARY KEY,
  user_id INT NOT NULL,
  total NUMERIC(10,2) DEFAULT 0,
  FOREIGN KEY (user_id) REFERENCES users(id)
);
`

func TestParseSQLBasic(t *testing.T) {
	res := ParseSQL(sampleDDL)

	require.Len(t, res.Tables, 2)
	assert.Empty(t, res.Warnings)

	users := res.Tables[0]
	assert.Equal(t, "users", users.Name)
	require.Len(t, users.Columns, 3)

	id := users.Columns[0]
	assert.Equal(t, "int", id.Type)
	assert.True(t, id.Primary)
	assert.False(t, id.Nullable)

	email := users.Columns[1]
	assert.Equal(t, "varchar(255)", email.Type)
	assert.True(t, email.Unique)
	assert.False(t, email.Nullable)

	created := users.Columns[2]
	assert.Equal(t, "timestamptz", created.Type)
	require.NotNil(t, created.Default)
	assert.Equal(t, "now()", *created.Default)
}

func TestParseSQLForeignKeyBecomesRelationship(t *testing.T) {
	res := ParseSQL(sampleDDL)

	require.Len(t, res.Relationships, 1)
	rel := res.Relationships[0]

	userID := findByName(t, res.Tables, "orders", "user_id")
	usersID := findByName(t, res.Tables, "users", "id")
	assert.Equal(t, userID.ID, rel.FromColumnID)
	assert.Equal(t, usersID.ID, rel.ToColumnID)
	assert.Equal(t, models.OneToMany, rel.Type)
}

func TestParseSQLUniqueFKBecomesOneToOne(t *testing.T) {
	res := ParseSQL(`
CREATE TABLE users (id INT PRIMARY KEY);
CREATE TABLE profiles (
  id INT PRIMARY KEY,
  user_id INT UNIQUE,
  FOREIGN KEY (user_id) REFERENCES users(id)
);`)

	require.Len(t, res.Relationships, 1)
	assert.Equal(t, models.OneToOne, res.Relationships[0].Type)
}

func TestParseSQLUnknownTypePreservedVerbatim(t *testing.T) {
	res := ParseSQL(`CREATE TABLE readings (loc GEOGRAPHY(point) NOT NULL);`)

	require.Len(t, res.Tables, 1)
	require.Len(t, res.Tables[0].Columns, 1)
	// the export path must round-trip whatever the user pasted
	assert.Equal(t, "GEOGRAPHY(point)", res.Tables[0].Columns[0].Type)
}

func TestParseSQLColumnIDsAreUniqueAndPositive(t *testing.T) {
	res := ParseSQL(sampleDDL)

	seen := map[int64]bool{}
	for _, tbl := range res.Tables {
		for _, c := range tbl.Columns {
			assert.Positive(t, c.ID)
			assert.False(t, seen[c.ID], "duplicate column id %d", c.ID)
			seen[c.ID] = true
		}
	}
}

func TestParseSQLDanglingForeignKeyWarns(t *testing.T) {
	res := ParseSQL(`
CREATE TABLE orders (
  id INT PRIMARY KEY,
  user_id INT,
  FOREIGN KEY (user_id) REFERENCES users(id)
);`)

	assert.Len(t, res.Tables, 1)
	assert.Empty(t, res.Relationships)
	assert.Len(t, res.Warnings, 1)
}

func TestParseSQLSkipsOtherStatements(t *testing.T) {
	res := ParseSQL(`
DROP TABLE old_stuff;
CREATE TABLE t (id INT PRIMARY KEY);
INSERT INTO t VALUES (1);`)

	assert.Len(t, res.Tables, 1)
	assert.Len(t, res.Warnings, 2)
}

func TestParseSQLTableLevelPrimaryKey(t *testing.T) {
	res := ParseSQL(`
CREATE TABLE memberships (
  user_id INT,
  team_id INT,
  PRIMARY KEY (user_id, team_id)
);`)

	require.Len(t, res.Tables, 1)
	for _, c := range res.Tables[0].Columns {
		assert.True(t, c.Primary, "%s should be part of the primary key", c.Name)
		assert.False(t, c.Nullable)
	}
}

func TestParseSQLQuotedAndQualifiedNames(t *testing.T) {
	res := ParseSQL(`CREATE TABLE "public"."Users" ("Id" INT PRIMARY KEY);`)

	require.Len(t, res.Tables, 1)
	assert.Equal(t, "Users", res.Tables[0].Name)
	require.Len(t, res.Tables[0].Columns, 1)
	assert.Equal(t, "Id", res.Tables[0].Columns[0].Name)
}

func TestExportSQLRoundTrip(t *testing.T) {
	first := ParseSQL(sampleDDL)
	out := ExportSQL(first.Tables, first.Relationships)

	second := ParseSQL(out)
	require.Len(t, second.Tables, 2)
	require.Len(t, second.Relationships, 1)
	assert.Empty(t, second.Warnings)

	assert.Equal(t, "users", second.Tables[0].Name)
	assert.Equal(t, "varchar(255)", second.Tables[0].Columns[1].Type)
}

func TestExportMigrationWrapsTransaction(t *testing.T) {
	res := ParseSQL(sampleDDL)
	out := ExportMigration(res.Tables, res.Relationships)

	assert.Contains(t, out, "BEGIN;")
	assert.Contains(t, out, "COMMIT;")
}

func findByName(t *testing.T, tables []models.Table, table, column string) *models.Column {
	t.Helper()
	c := findColumnByName(tables, table, column)
	require.NotNil(t, c, "%s.%s not found", table, column)
	return c
}
