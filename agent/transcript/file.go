package transcript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

const fileHeader = "=== HISTORIQUE DE CONVERSATION AVEC L'AGENT HÔTEL CALIFORNIA ===\n\n"

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

var _ contractx.Archiver = (*FileArchiver)(nil)

// FileArchiver writes one plain text log per archived conversation.
type FileArchiver struct {
	dir string
	now func() time.Time
}

func NewFileArchiver(dir string) (*FileArchiver, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("transcript directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}
	return &FileArchiver{dir: dir, now: time.Now}, nil
}

func (a *FileArchiver) Archive(ctx context.Context, sessionID string, history []contractx.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := fmt.Sprintf("conversation_%s_%s.txt", safeName(sessionID), a.now().UTC().Format("20060102T150405.000000000Z"))
	path := filepath.Join(a.dir, name)

	if err := os.WriteFile(path, Render(history), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	log.Info().Str("session_id", sessionID).Str("path", path).Msg("conversation saved")
	return nil
}

// Render formats a history the way the concierge logs were always kept:
// a header then one "ROLE: content" block per message, system excluded.
func Render(history []contractx.Message) []byte {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	for _, m := range contractx.Visible(history) {
		buf.WriteString(strings.ToUpper(string(m.Role)))
		buf.WriteString(": ")
		buf.WriteString(m.Content)
		buf.WriteString("\n\n")
	}
	return buf.Bytes()
}

func safeName(sessionID string) string {
	name := unsafeName.ReplaceAllString(strings.TrimSpace(sessionID), "_")
	if name == "" {
		return "default"
	}
	return name
}
