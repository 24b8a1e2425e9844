package sqlstore

const (
	schemaResources = `
		CREATE TABLE IF NOT EXISTS resources (
			id              TEXT PRIMARY KEY,
			label           TEXT,
			checked_out_by  TEXT
		);`

	schemaResourceVersions = `
		CREATE TABLE IF NOT EXISTS resource_versions (
			resource_id  TEXT,
			seq          BIGINT,
			version      TEXT,
			content      TEXT,
			comment      TEXT
		);`
)
