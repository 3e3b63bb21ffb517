package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func RunMigrations(pool *pgxpool.Pool) error {
	ctx := context.Background()

	migrations := []string{
		createEnumTypes,
		createUsersTable,
		createDiagramsTable,
		createDiagramTablesTable,
		createTableColumnsTable,
		createRelationshipsTable,
		createDiagramNodesTable,
		createDiagramEdgesTable,
		createShareLinksTable,
		createAccessGrantsTable,
		createMutationLogTable,
	}

	for i, migration := range migrations {
		log.Printf("Running migration %d/%d", i+1, len(migrations))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("All migrations completed successfully")
	return nil
}

const createEnumTypes = `
DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'diagram_mode_t') THEN
    CREATE TYPE diagram_mode_t AS ENUM ('flow', 'mind', 'db');
  END IF;
END$$;

DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'owner_type_t') THEN
    CREATE TYPE owner_type_t AS ENUM ('user', 'team');
  END IF;
END$$;

DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'relationship_type_t') THEN
    CREATE TYPE relationship_type_t AS ENUM ('one_to_one', 'one_to_many');
  END IF;
END$$;
`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  last_login_at TIMESTAMP WITH TIME ZONE
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`

const createDiagramsTable = `
CREATE TABLE IF NOT EXISTS diagrams (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  name TEXT NOT NULL,
  owner_type owner_type_t NOT NULL DEFAULT 'user',
  owner_id UUID NOT NULL,
  is_public BOOLEAN NOT NULL DEFAULT FALSE,
  mode diagram_mode_t NOT NULL DEFAULT 'db',
  viewport_x DOUBLE PRECISION NOT NULL DEFAULT 0,
  viewport_y DOUBLE PRECISION NOT NULL DEFAULT 0,
  viewport_zoom DOUBLE PRECISION NOT NULL DEFAULT 1,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_diagrams_owner ON diagrams(owner_type, owner_id);
`

const createDiagramTablesTable = `
CREATE TABLE IF NOT EXISTS diagram_tables (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  diagram_id UUID NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  x DOUBLE PRECISION NOT NULL DEFAULT 0,
  y DOUBLE PRECISION NOT NULL DEFAULT 0,
  width DOUBLE PRECISION NOT NULL DEFAULT 200,
  position INT NOT NULL DEFAULT 0,
  UNIQUE (diagram_id, name)
);

CREATE INDEX IF NOT EXISTS idx_diagram_tables_diagram ON diagram_tables(diagram_id);
`

// Column ids are BIGSERIAL: the canvas derives connection-handle ids
// from them, so they must be compact positive integers.
const createTableColumnsTable = `
CREATE TABLE IF NOT EXISTS table_columns (
  id BIGSERIAL PRIMARY KEY,
  table_id UUID NOT NULL REFERENCES diagram_tables(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  data_type TEXT NOT NULL DEFAULT 'text',
  nullable BOOLEAN NOT NULL DEFAULT TRUE,
  is_primary BOOLEAN NOT NULL DEFAULT FALSE,
  is_unique BOOLEAN NOT NULL DEFAULT FALSE,
  default_value TEXT,
  position INT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_table_columns_table ON table_columns(table_id);
`

const createRelationshipsTable = `
CREATE TABLE IF NOT EXISTS relationships (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  diagram_id UUID NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
  from_column_id BIGINT NOT NULL REFERENCES table_columns(id) ON DELETE CASCADE,
  to_column_id BIGINT NOT NULL REFERENCES table_columns(id) ON DELETE CASCADE,
  rel_type relationship_type_t NOT NULL DEFAULT 'one_to_many'
);

CREATE INDEX IF NOT EXISTS idx_relationships_diagram ON relationships(diagram_id);
`

const createDiagramNodesTable = `
CREATE TABLE IF NOT EXISTS diagram_nodes (
  id TEXT NOT NULL,
  diagram_id UUID NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
  kind TEXT NOT NULL,
  x DOUBLE PRECISION NOT NULL DEFAULT 0,
  y DOUBLE PRECISION NOT NULL DEFAULT 0,
  width DOUBLE PRECISION,
  height DOUBLE PRECISION,
  data JSONB NOT NULL DEFAULT '{}',
  position INT NOT NULL DEFAULT 0,
  PRIMARY KEY (diagram_id, id)
);
`

const createDiagramEdgesTable = `
CREATE TABLE IF NOT EXISTS diagram_edges (
  id TEXT NOT NULL,
  diagram_id UUID NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
  source TEXT NOT NULL,
  target TEXT NOT NULL,
  source_handle TEXT,
  target_handle TEXT,
  label TEXT,
  style TEXT,
  position INT NOT NULL DEFAULT 0,
  PRIMARY KEY (diagram_id, id)
);
`

const createShareLinksTable = `
CREATE TABLE IF NOT EXISTS share_links (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  diagram_id UUID NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
  name TEXT NOT NULL DEFAULT '',
  token TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL DEFAULT 'viewer',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  expires_at TIMESTAMP WITH TIME ZONE,
  revoked_at TIMESTAMP WITH TIME ZONE
);

CREATE INDEX IF NOT EXISTS idx_share_links_token ON share_links(token);
`

const createAccessGrantsTable = `
CREATE TABLE IF NOT EXISTS access_grants (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  diagram_id UUID NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
  subject_type owner_type_t NOT NULL DEFAULT 'user',
  subject_id UUID NOT NULL,
  role TEXT NOT NULL DEFAULT 'viewer',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  UNIQUE (diagram_id, subject_type, subject_id)
);

CREATE INDEX IF NOT EXISTS idx_access_grants_diagram ON access_grants(diagram_id);
`

const createMutationLogTable = `
CREATE TABLE IF NOT EXISTS mutation_log (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  diagram_id UUID NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
  user_id UUID,
  op TEXT NOT NULL,
  payload JSONB NOT NULL DEFAULT '{}',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_mutation_log_diagram ON mutation_log(diagram_id, created_at);
`
