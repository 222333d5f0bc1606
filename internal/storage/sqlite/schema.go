package sqlite

const schema = `
-- Recipes table
CREATE TABLE IF NOT EXISTS recipes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL CHECK(length(title) <= 200),
    description TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Steps table. (recipe_id, step_num) is the composite key: the ordinal is
-- both the step's rank and the identifier referenced by step_output_uses.
-- step_num != 0 leaves negative values available for the two-phase
-- renumbering UPDATEs (see package doc).
CREATE TABLE IF NOT EXISTS steps (
    recipe_id TEXT NOT NULL,
    step_num INTEGER NOT NULL CHECK(step_num != 0),
    title TEXT,
    description TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (recipe_id, step_num),
    FOREIGN KEY (recipe_id) REFERENCES recipes(id) ON DELETE CASCADE
);

-- Step output uses (dependency edges). The CHECK is the core correctness
-- property: strictly increasing edges make the set acyclic by construction.
CREATE TABLE IF NOT EXISTS step_output_uses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    recipe_id TEXT NOT NULL,
    output_step INTEGER NOT NULL,
    input_step INTEGER NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (output_step < input_step),
    FOREIGN KEY (recipe_id) REFERENCES recipes(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_uses_input ON step_output_uses(recipe_id, input_step);
CREATE INDEX IF NOT EXISTS idx_uses_output ON step_output_uses(recipe_id, output_step);

-- Ingredient uses. Attached by ordinal, so renumbering rewrites these rows
-- alongside the edges.
CREATE TABLE IF NOT EXISTS ingredient_uses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    recipe_id TEXT NOT NULL,
    step_num INTEGER NOT NULL,
    name TEXT NOT NULL CHECK(length(name) <= 200),
    quantity TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (recipe_id) REFERENCES recipes(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_ingredient_uses_step ON ingredient_uses(recipe_id, step_num);

-- Audit events, written in the same transaction as the mutation they record
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    recipe_id TEXT NOT NULL,
    step_num INTEGER NOT NULL DEFAULT 0,
    event_type TEXT NOT NULL,
    actor TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_recipe ON events(recipe_id, created_at);

-- Configuration table
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
