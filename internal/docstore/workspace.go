package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/outliner/internal/model"
)

const entityWorkspace = "workspace"

// AddWorkspace inserts a workspace and returns its id. Names are not unique.
func (s *Store) AddWorkspace(ctx context.Context, name string, color model.Color) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO workspaces (name, color) VALUES (?, ?)",
		name, color,
	)
	if err != nil {
		return 0, fmt.Errorf("add workspace: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add workspace: last insert id: %w", err)
	}

	s.log.Debug("workspace added", "workspace_id", id, "name", name, "color", color.String())
	return id, nil
}

// GetWorkspace returns the workspace with the given id.
func (s *Store) GetWorkspace(ctx context.Context, id int64) (model.Workspace, error) {
	w, err := model.ScanWorkspace(s.db.QueryRowContext(ctx,
		"SELECT "+model.WorkspaceColumns+" FROM workspaces WHERE workspace_id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Workspace{}, model.NotFound(entityWorkspace, workspaceKey(id))
	}
	if err != nil {
		return model.Workspace{}, fmt.Errorf("get workspace: %w", err)
	}
	return w, nil
}

// ListWorkspaces returns all workspaces ordered by id.
//
// Returns an empty slice (not nil) if no workspaces exist.
func (s *Store) ListWorkspaces(ctx context.Context) ([]model.Workspace, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+model.WorkspaceColumns+" FROM workspaces ORDER BY workspace_id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := []model.Workspace{}
	for rows.Next() {
		w, err := model.ScanWorkspace(rows)
		if err != nil {
			return nil, fmt.Errorf("list workspaces: scan: %w", err)
		}
		workspaces = append(workspaces, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list workspaces: iterate: %w", err)
	}
	return workspaces, nil
}

// UpdateWorkspace replaces the name and color of a workspace.
func (s *Store) UpdateWorkspace(ctx context.Context, id int64, name string, color model.Color) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE workspaces SET name = ?, color = ? WHERE workspace_id = ?",
		name, color, id,
	)
	if err != nil {
		return fmt.Errorf("update workspace: %w", err)
	}
	if err := requireAffected(res, entityWorkspace, workspaceKey(id)); err != nil {
		return err
	}

	s.log.Debug("workspace updated", "workspace_id", id, "name", name, "color", color.String())
	return nil
}

// DeleteWorkspace removes a workspace. Pages and blocks are not owned by
// workspaces and are unaffected. Deleting workspace 0 is allowed; the next
// Open re-creates it.
func (s *Store) DeleteWorkspace(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM workspaces WHERE workspace_id = ?", id)
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	if err := requireAffected(res, entityWorkspace, workspaceKey(id)); err != nil {
		return err
	}

	s.log.Debug("workspace deleted", "workspace_id", id)
	return nil
}

func workspaceKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// requireAffected maps a statement that touched no rows to NotFound.
func requireAffected(res sql.Result, entity, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.NotFound(entity, key)
	}
	return nil
}
