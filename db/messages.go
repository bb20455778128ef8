package db

import (
	"context"
	"fmt"

	"portfolio/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

func (db *DB) CreateContact(ctx context.Context, submission models.ContactSubmission) (models.ContactSubmission, error) {
	submission.CreatedAt = db.now().UTC()

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("contact_submissions").
		Cols("name", "email", "message", "created_at").
		Values(submission.Name, submission.Email, submission.Message, unix(submission.CreatedAt))
	stmt, args := ib.Build()

	res, err := db.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return submission, fmt.Errorf("insert error: %w", err)
	}
	submission.Id, err = res.LastInsertId()
	if err != nil {
		return submission, fmt.Errorf("insert id error: %w", err)
	}
	return submission, nil
}

func (db *DB) CreateChatMessage(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	message.CreatedAt = db.now().UTC()

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("chat_messages").
		Cols("session_id", "message", "response", "created_at").
		Values(message.SessionId, message.Message, message.Response, unix(message.CreatedAt))
	stmt, args := ib.Build()

	res, err := db.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return message, fmt.Errorf("insert error: %w", err)
	}
	message.Id, err = res.LastInsertId()
	if err != nil {
		return message, fmt.Errorf("insert id error: %w", err)
	}
	return message, nil
}

// ChatHistory returns the most recent exchanges of a session, oldest first
func (db *DB) ChatHistory(ctx context.Context, sessionId string, limit int) ([]models.ChatMessage, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id", "session_id", "message", "response", "created_at").From("chat_messages").
		Where(sb.Equal("session_id", sessionId)).
		OrderBy("id DESC").
		Limit(limit)
	stmt, args := sb.Build()

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var history []models.ChatMessage
	for rows.Next() {
		var message models.ChatMessage
		var createdAt int64
		if err := rows.Scan(&message.Id, &message.SessionId, &message.Message, &message.Response, &createdAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		message.CreatedAt = fromUnix(createdAt)
		history = append([]models.ChatMessage{message}, history...)
	}
	return history, rows.Err()
}
