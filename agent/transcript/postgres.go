package transcript

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

var _ contractx.Archiver = (*PostgresArchiver)(nil)

type conversationMessage struct {
	bun.BaseModel `bun:"table:conversation_messages,alias:cm"`

	ID         int64     `bun:"id,pk,autoincrement"`
	SessionID  string    `bun:"session_id,notnull"`
	Position   int       `bun:"position,notnull"`
	Role       string    `bun:"role,notnull"`
	Content    string    `bun:"content,notnull"`
	ArchivedAt time.Time `bun:"archived_at,notnull"`
}

// PostgresArchiver stores archived conversations row per message.
type PostgresArchiver struct {
	db  *bun.DB
	now func() time.Time
}

func NewPostgresArchiver(db *bun.DB) *PostgresArchiver {
	return &PostgresArchiver{db: db, now: time.Now}
}

// Migrate creates the conversation_messages table when missing.
func (a *PostgresArchiver) Migrate(ctx context.Context) error {
	if _, err := a.db.NewCreateTable().
		Model((*conversationMessage)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create conversation_messages: %w", err)
	}
	if _, err := a.db.NewCreateIndex().
		Model((*conversationMessage)(nil)).
		Index("conversation_messages_session_idx").
		Column("session_id", "archived_at").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create conversation_messages index: %w", err)
	}
	return nil
}

func (a *PostgresArchiver) Archive(ctx context.Context, sessionID string, history []contractx.Message) error {
	visible := contractx.Visible(history)
	if len(visible) == 0 {
		return nil
	}

	archivedAt := a.now().UTC()
	rows := make([]conversationMessage, 0, len(visible))
	for i, m := range visible {
		rows = append(rows, conversationMessage{
			SessionID:  sessionID,
			Position:   i,
			Role:       string(m.Role),
			Content:    m.Content,
			ArchivedAt: archivedAt,
		})
	}

	return a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert conversation messages: %w", err)
		}
		return nil
	})
}
