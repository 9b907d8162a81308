package contract

import "context"

// Agent is the reasoning procedure: given a role-tagged history it decides
// on its own whether to call tools and returns the final assistant text.
type Agent interface {
	Generate(ctx context.Context, history []Message) (string, error)
}

type HistoryStore interface {
	Load(ctx context.Context, sessionID string) ([]Message, error)
	Append(ctx context.Context, sessionID string, msgs ...Message) error
	Reset(ctx context.Context, sessionID string) error
}

type Archiver interface {
	Archive(ctx context.Context, sessionID string, history []Message) error
}

type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}
