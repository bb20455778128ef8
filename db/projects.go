package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"portfolio/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

const projectTable = "projects"

var projectColumns = []string{
	"id", "github_id", "name", "description", "url", "github_url", "category",
	"technologies", "image_url", "display_order", "updated_at",
}

func scanProject(row rowScanner) (models.Project, error) {
	var project models.Project
	var githubId sql.NullInt64
	var updatedAt int64
	err := row.Scan(
		&project.Id, &githubId, &project.Name, &project.Description, &project.URL,
		&project.GitHubURL, &project.Category, &project.Technologies, &project.ImageURL,
		&project.DisplayOrder, &updatedAt,
	)
	if err != nil {
		return project, err
	}
	if githubId.Valid {
		id := githubId.Int64
		project.GitHubId = &id
	}
	project.UpdatedAt = fromUnix(updatedAt)
	return project, nil
}

func githubIdValue(project models.Project) any {
	if project.GitHubId == nil {
		return nil
	}
	return *project.GitHubId
}

func (db *DB) ListProjects(ctx context.Context) ([]models.Project, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(projectColumns...).From(projectTable).OrderBy("display_order ASC", "updated_at DESC", "id DESC")
	stmt, args := sb.Build()

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (db *DB) GetProject(ctx context.Context, id int64) (models.Project, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(projectColumns...).From(projectTable).Where(sb.Equal("id", id))
	stmt, args := sb.Build()

	project, err := scanProject(db.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return project, ErrNotFound
	}
	if err != nil {
		return project, fmt.Errorf("query error: %w", err)
	}
	return project, nil
}

func insertProject(project models.Project) *sqlbuilder.InsertBuilder {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto(projectTable).
		Cols(projectColumns[1:]...).
		Values(
			githubIdValue(project), project.Name, project.Description, project.URL,
			project.GitHubURL, project.Category, project.Technologies, project.ImageURL,
			project.DisplayOrder, unix(project.UpdatedAt),
		)
	return ib
}

func updateProject(project models.Project) *sqlbuilder.UpdateBuilder {
	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update(projectTable).
		Set(
			ub.Assign("github_id", githubIdValue(project)),
			ub.Assign("name", project.Name),
			ub.Assign("description", project.Description),
			ub.Assign("url", project.URL),
			ub.Assign("github_url", project.GitHubURL),
			ub.Assign("category", project.Category),
			ub.Assign("technologies", project.Technologies),
			ub.Assign("image_url", project.ImageURL),
			ub.Assign("display_order", project.DisplayOrder),
			ub.Assign("updated_at", unix(project.UpdatedAt)),
		).
		Where(ub.Equal("id", project.Id))
	return ub
}

func (db *DB) CreateProject(ctx context.Context, project models.Project) (models.Project, error) {
	project.UpdatedAt = db.now().UTC()
	stmt, args := insertProject(project).Build()

	res, err := db.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return project, fmt.Errorf("insert error: %w", err)
	}
	project.Id, err = res.LastInsertId()
	if err != nil {
		return project, fmt.Errorf("insert id error: %w", err)
	}
	return project, nil
}

func (db *DB) UpdateProject(ctx context.Context, project models.Project) (models.Project, error) {
	project.UpdatedAt = db.now().UTC()
	stmt, args := updateProject(project).Build()

	res, err := db.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return project, fmt.Errorf("update error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return project, ErrNotFound
	}
	return project, nil
}

func (db *DB) DeleteProject(ctx context.Context, id int64) error {
	del := sqlbuilder.SQLite.NewDeleteBuilder()
	del.DeleteFrom(projectTable).Where(del.Equal("id", id))
	stmt, args := del.Build()

	res, err := db.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertGitHubProject stores a synced repository. A new project is inserted
// whole. An existing one only gets its GitHub maintained fields refreshed, so
// name, category and display order edited by hand survive a sync.
func (db *DB) UpsertGitHubProject(ctx context.Context, project models.Project) (created bool, err error) {
	if project.GitHubId == nil {
		return false, errors.New("project has no github id")
	}
	project.UpdatedAt = db.now().UTC()

	err = db.inTx(ctx, func(tx *sql.Tx) error {
		sb := sqlbuilder.SQLite.NewSelectBuilder()
		sb.Select("id").From(projectTable).Where(sb.Equal("github_id", *project.GitHubId))
		stmt, args := sb.Build()

		var id int64
		err := tx.QueryRowContext(ctx, stmt, args...).Scan(&id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			stmt, args = insertProject(project).Build()
			if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
				return fmt.Errorf("insert error: %w", err)
			}
			created = true
			return nil
		case err != nil:
			return fmt.Errorf("query error: %w", err)
		}

		ub := sqlbuilder.SQLite.NewUpdateBuilder()
		ub.Update(projectTable).
			Set(
				ub.Assign("description", project.Description),
				ub.Assign("url", project.URL),
				ub.Assign("github_url", project.GitHubURL),
				ub.Assign("technologies", project.Technologies),
				ub.Assign("updated_at", unix(project.UpdatedAt)),
			).
			Where(ub.Equal("id", id))
		stmt, args = ub.Build()
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("update error: %w", err)
		}
		return nil
	})
	return created, err
}
