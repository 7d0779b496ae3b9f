package storage

import "context"

// ExecForTest runs raw SQL against the open database so tests can construct
// states the public API refuses to create.
func (s *SQLiteStorage) ExecForTest(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}
