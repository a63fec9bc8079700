// Package history is the two-tier session record store: the remote history
// API when reachable, a local JSON cache otherwise. The local cache is always
// written, so it stays authoritative whenever the remote is down.
package history

import (
	"log/slog"

	"github.com/drafthook/drafthook/shared/domain"
)

type Remote interface {
	SaveSession(record domain.SessionRecord) error
	ListSessions() ([]domain.SessionRecord, error)
	ClearSessions() error
}

type Service struct {
	remote Remote
	local  *LocalStore
	logger *slog.Logger
}

func New(remote Remote, local *LocalStore, logger *slog.Logger) *Service {
	return &Service{remote: remote, local: local, logger: logger}
}

// Save records the session in the local cache and attempts the remote store.
// Remote failure degrades silently; an error comes back only when both tiers
// fail.
func (s *Service) Save(record domain.SessionRecord) error {
	localErr := s.local.Append(record)
	if localErr != nil {
		s.logger.Warn("failed to update local history cache", "error", localErr)
	}

	if err := s.remote.SaveSession(record); err != nil {
		s.logger.Warn("failed to persist session remotely, local cache is authoritative", "error", err)
		return localErr
	}
	return nil
}

// List returns remote history when reachable, the local cache otherwise, and
// an empty sequence when both are unavailable.
func (s *Service) List() []domain.SessionRecord {
	records, err := s.remote.ListSessions()
	if err == nil {
		return records
	}
	s.logger.Warn("failed to list remote history, falling back to local cache", "error", err)

	records, err = s.local.Load()
	if err != nil {
		s.logger.Warn("failed to load local history cache", "error", err)
		return nil
	}
	return records
}

// Clear wipes remote history first and the local cache only after the remote
// delete succeeded. On remote failure the local cache is left untouched so
// nothing is lost before a retry.
func (s *Service) Clear() error {
	if err := s.remote.ClearSessions(); err != nil {
		return err
	}
	return s.local.Clear()
}
