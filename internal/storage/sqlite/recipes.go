package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mirepoix/mirepoix/internal/idgen"
	"github.com/mirepoix/mirepoix/internal/storage"
	"github.com/mirepoix/mirepoix/internal/types"
)

// maxIDAttempts bounds collision retries during recipe ID generation.
const maxIDAttempts = 10

// CreateRecipe inserts a new recipe. When recipe.ID is empty a hash-based ID
// is generated from the configured prefix (config key "recipe_prefix",
// default "r"), retrying with a nonce on the rare hash collision.
func (s *SQLiteStorage) CreateRecipe(ctx context.Context, recipe *types.Recipe, actor string) error {
	if err := recipe.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	prefix, err := s.GetConfig(ctx, "recipe_prefix")
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return wrapDBError("get recipe prefix", err)
	}
	if prefix == "" {
		prefix = "r"
	}

	for attempt := 0; ; attempt++ {
		id := recipe.ID
		if id == "" {
			id = idgen.GenerateRecipeID(prefix, recipe.Title, actor, now, attempt)
		}

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO recipes (id, title, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, id, recipe.Title, recipe.Description, now, now)
		if err == nil {
			recipe.ID = id
			break
		}
		if IsUniqueConstraintError(err) {
			if recipe.ID != "" {
				return fmt.Errorf("recipe %s: %w", recipe.ID, storage.ErrConflict)
			}
			if attempt+1 < maxIDAttempts {
				continue
			}
			return fmt.Errorf("recipe ID generation exhausted after %d attempts: %w", maxIDAttempts, storage.ErrConflict)
		}
		return wrapDBError("create recipe", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (recipe_id, event_type, actor, detail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, recipe.ID, types.EventRecipeCreated, actor, recipe.Title, now)
	if err != nil {
		return wrapDBError("record recipe event", err)
	}
	return nil
}

// GetRecipe fetches a recipe by ID. Returns storage.ErrNotFound when absent.
func (s *SQLiteStorage) GetRecipe(ctx context.Context, id string) (*types.Recipe, error) {
	return getRecipe(ctx, s.db, id)
}

func getRecipe(ctx context.Context, q querier, id string) (*types.Recipe, error) {
	var r types.Recipe
	err := q.QueryRowContext(ctx, `
		SELECT id, title, description, created_at, updated_at
		FROM recipes WHERE id = ?
	`, id).Scan(&r.ID, &r.Title, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, wrapDBErrorf(err, "get recipe %s", id)
	}
	return &r, nil
}

// ListRecipes returns all recipes ordered by creation time.
func (s *SQLiteStorage) ListRecipes(ctx context.Context) ([]*types.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, created_at, updated_at
		FROM recipes ORDER BY created_at, id
	`)
	if err != nil {
		return nil, wrapDBError("list recipes", err)
	}
	defer func() { _ = rows.Close() }()

	var recipes []*types.Recipe
	for rows.Next() {
		var r types.Recipe
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, wrapDBError("scan recipe", err)
		}
		recipes = append(recipes, &r)
	}
	return recipes, rows.Err()
}

// DeleteRecipe removes a recipe and, via ON DELETE CASCADE, its steps,
// edges, and ingredient uses. Events are kept for audit.
func (s *SQLiteStorage) DeleteRecipe(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return wrapDBErrorf(err, "delete recipe %s", id)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return wrapDBError("delete recipe rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("recipe %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
