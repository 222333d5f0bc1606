package sqlite

import (
	"context"
	"time"

	"github.com/mirepoix/mirepoix/internal/types"
)

func addEvent(ctx context.Context, q querier, event *types.Event) error {
	now := time.Now()
	event.CreatedAt = now
	result, err := q.ExecContext(ctx, `
		INSERT INTO events (recipe_id, step_num, event_type, actor, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.RecipeID, event.StepNum, event.EventType, event.Actor, event.Detail, now)
	if err != nil {
		return wrapDBErrorf(err, "record %s event for recipe %s", event.EventType, event.RecipeID)
	}
	event.ID, err = result.LastInsertId()
	if err != nil {
		return wrapDBError("record event last insert ID", err)
	}
	return nil
}

// GetEvents returns the most recent events for a recipe, newest first.
// A limit of 0 or less returns every event.
func (s *SQLiteStorage) GetEvents(ctx context.Context, recipeID string, limit int) ([]*types.Event, error) {
	query := `
		SELECT id, recipe_id, step_num, event_type, actor, detail, created_at
		FROM events WHERE recipe_id = ?
		ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{recipeID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBErrorf(err, "get events of recipe %s", recipeID)
	}
	defer func() { _ = rows.Close() }()

	var events []*types.Event
	for rows.Next() {
		var e types.Event
		if err := rows.Scan(&e.ID, &e.RecipeID, &e.StepNum, &e.EventType, &e.Actor, &e.Detail, &e.CreatedAt); err != nil {
			return nil, wrapDBError("scan event", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
