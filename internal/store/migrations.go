package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id        TEXT PRIMARY KEY,
	subject   TEXT NOT NULL DEFAULT '',
	sender    TEXT NOT NULL DEFAULT '',
	date      TEXT NOT NULL DEFAULT '',
	path      TEXT NOT NULL,
	saved_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_saved_at ON messages(saved_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
