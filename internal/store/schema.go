package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    library_dir TEXT NOT NULL,
    movies_dir TEXT,
    tv_dir TEXT,
    games_dir TEXT,
    auto_organize INTEGER NOT NULL DEFAULT 1,
    replace_existing INTEGER NOT NULL DEFAULT 0,
    extract_archives INTEGER NOT NULL DEFAULT 0,
    delete_archives INTEGER NOT NULL DEFAULT 0,
    reverse_indexing INTEGER NOT NULL DEFAULT 1,
    scan_interval TEXT NOT NULL DEFAULT '1h',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS organization_rules (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    content_type TEXT NOT NULL,
    platform TEXT,
    folder_template TEXT NOT NULL,
    file_template TEXT NOT NULL,
    season_folder_template TEXT,
    base_path TEXT,
    is_default INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rules_content_type
    ON organization_rules (content_type, is_active);

CREATE TABLE IF NOT EXISTS organized_files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    original_path TEXT NOT NULL,
    organized_path TEXT NOT NULL,
    file_name TEXT NOT NULL,
    size_bytes INTEGER NOT NULL DEFAULT 0,
    title TEXT,
    year INTEGER,
    season INTEGER,
    episode INTEGER,
    platform TEXT,
    quality TEXT,
    format TEXT,
    edition TEXT,
    request_id INTEGER,
    reverse_indexed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_organized_files_organized_path
    ON organized_files (organized_path);

CREATE TABLE IF NOT EXISTS organize_queue (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    folder_path TEXT NOT NULL,
    content_type TEXT NOT NULL,
    title TEXT,
    year INTEGER,
    season INTEGER,
    episode INTEGER,
    platform TEXT,
    quality TEXT,
    format TEXT,
    edition TEXT,
    status TEXT NOT NULL,
    error_message TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_organize_queue_folder
    ON organize_queue (folder_path, status);

CREATE TABLE IF NOT EXISTS requests (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    content_type TEXT NOT NULL,
    title TEXT NOT NULL,
    year INTEGER,
    season INTEGER,
    episode INTEGER,
    platform TEXT,
    status TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_requests_lookup
    ON requests (content_type, title);
`
