package search

// Schema DDL for the search index. documents holds one row per
// heading-delimited section; builds records each indexing run so queries
// can report which build they hit.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS builds (
    build_id   TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    page_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
    doc_id    INTEGER PRIMARY KEY AUTOINCREMENT,
    build_id  TEXT NOT NULL,
    page_path TEXT NOT NULL,
    title     TEXT NOT NULL,
    section   TEXT NOT NULL DEFAULT '',
    anchor    TEXT NOT NULL DEFAULT '',
    body      TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (build_id) REFERENCES builds(build_id)
);

CREATE INDEX IF NOT EXISTS idx_documents_page ON documents(page_path);
`
