// store_chat.go - Chat- und Message-Operationen
// Enthaelt: Chat, EnsureChat, ClearChat, AppendMessage, Messages, Chats

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/llamaedge/llamaedge/api"
)

// ErrChatNotFound wird zurueckgegeben, wenn eine Chat-ID unbekannt ist
var ErrChatNotFound = errors.New("chat not found")

// Chat ist eine gespeicherte Sitzung
type Chat struct {
	ID        string
	Title     string
	Model     string
	Template  string
	CreatedAt time.Time

	// nur von Chats gefuellt
	MessageCount int
	LastUpdated  time.Time
}

// EnsureChat legt den Chat an, falls er noch nicht existiert, und gibt den
// gespeicherten Stand zurueck
func (s *Store) EnsureChat(ctx context.Context, chat Chat) (Chat, error) {
	_, err := s.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO chats (id, title, model, template) VALUES (?, ?, ?, ?)`,
		chat.ID, chat.Title, chat.Model, chat.Template,
	)
	if err != nil {
		return Chat{}, fmt.Errorf("insert chat: %w", err)
	}

	return s.chat(ctx, chat.ID)
}

func (s *Store) chat(ctx context.Context, id string) (Chat, error) {
	var chat Chat
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, title, model, template, created_at FROM chats WHERE id = ?`, id,
	).Scan(&chat.ID, &chat.Title, &chat.Model, &chat.Template, &chat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Chat{}, ErrChatNotFound
	} else if err != nil {
		return Chat{}, fmt.Errorf("query chat: %w", err)
	}

	return chat, nil
}

// AppendMessage haengt m an den Verlauf des Chats an
func (s *Store) AppendMessage(ctx context.Context, chatID string, m api.Message) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO messages (chat_id, role, content, name) VALUES (?, ?, ?, ?)`,
		chatID, m.Role, m.Content, m.Name,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ClearChat blendet alle bisherigen Nachrichten fuer Messages aus
func (s *Store) ClearChat(ctx context.Context, chatID string) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE chats
		SET cleared_after = (SELECT COALESCE(MAX(id), 0) FROM messages WHERE chat_id = ?)
		WHERE id = ?
	`, chatID, chatID)
	if err != nil {
		return fmt.Errorf("clear chat: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrChatNotFound
	}
	return nil
}

// Messages gibt den aktuellen Verlauf des Chats in Einfuegereihenfolge zurueck
func (s *Store) Messages(ctx context.Context, chatID string) ([]api.Message, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT m.role, m.content, m.name
		FROM messages m
		JOIN chats c ON c.id = m.chat_id
		WHERE m.chat_id = ? AND m.id > c.cleared_after
		ORDER BY m.id ASC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []api.Message
	for rows.Next() {
		var m api.Message
		if err := rows.Scan(&m.Role, &m.Content, &m.Name); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// Chats gibt alle Chats zurueck, zuletzt benutzte zuerst
func (s *Store) Chats(ctx context.Context) ([]Chat, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT
			c.id,
			c.title,
			c.model,
			c.template,
			c.created_at,
			COUNT(m.id) AS message_count,
			COALESCE(datetime(MAX(m.created_at)), datetime(c.created_at)) AS last_updated
		FROM chats c
		LEFT JOIN messages m ON c.id = m.chat_id
		GROUP BY c.id
		ORDER BY last_updated DESC, c.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query chats: %w", err)
	}
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		var chat Chat
		var lastUpdatedStr string
		if err := rows.Scan(
			&chat.ID,
			&chat.Title,
			&chat.Model,
			&chat.Template,
			&chat.CreatedAt,
			&chat.MessageCount,
			&lastUpdatedStr,
		); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}

		chat.LastUpdated, _ = time.Parse(time.DateTime, lastUpdatedStr)
		chats = append(chats, chat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w", err)
	}

	return chats, nil
}
