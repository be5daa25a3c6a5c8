package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create messages",
		SQL: `
			CREATE TABLE messages (
				id               TEXT PRIMARY KEY,
				sender           TEXT NOT NULL,
				user_id          TEXT NOT NULL,
				message          TEXT NOT NULL,
				stub_type        TEXT NOT NULL DEFAULT '',
				stub_parameters  TEXT NOT NULL DEFAULT '[]',
				received_at      TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_messages_user ON messages (user_id, received_at);
		`,
	},
	{
		Version: 2,
		Name:    "create memories",
		SQL: `
			CREATE TABLE memories (
				id          TEXT PRIMARY KEY,
				user_id     TEXT NOT NULL,
				title       TEXT NOT NULL,
				content     TEXT NOT NULL,
				tags        TEXT NOT NULL DEFAULT '[]',
				created_at  TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_memories_user ON memories (user_id, created_at);
		`,
	},
}
