package history

import (
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drafthook/drafthook/shared/domain"
)

type mockRemote struct {
	saveFunc  func(record domain.SessionRecord) error
	listFunc  func() ([]domain.SessionRecord, error)
	clearFunc func() error
}

func (m *mockRemote) SaveSession(record domain.SessionRecord) error { return m.saveFunc(record) }
func (m *mockRemote) ListSessions() ([]domain.SessionRecord, error) { return m.listFunc() }
func (m *mockRemote) ClearSessions() error                          { return m.clearFunc() }

func testService(t *testing.T, remote Remote) (*Service, *LocalStore) {
	t.Helper()
	local := NewLocalStore(filepath.Join(t.TempDir(), "history.json"))
	return New(remote, local, slog.Default()), local
}

func TestSaveWritesBothTiers(t *testing.T) {
	var remoteSaved []domain.SessionRecord
	remote := &mockRemote{saveFunc: func(r domain.SessionRecord) error {
		remoteSaved = append(remoteSaved, r)
		return nil
	}}
	svc, local := testService(t, remote)

	require.NoError(t, svc.Save(record("a")))

	assert.Len(t, remoteSaved, 1)
	cached, err := local.Load()
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestSaveSurvivesRemoteFailure(t *testing.T) {
	remote := &mockRemote{saveFunc: func(domain.SessionRecord) error {
		return errors.New("backend down")
	}}
	svc, local := testService(t, remote)

	require.NoError(t, svc.Save(record("a")), "remote failure degrades silently")

	cached, err := local.Load()
	require.NoError(t, err)
	assert.Len(t, cached, 1, "local cache still holds the record")
}

func TestListPrefersRemote(t *testing.T) {
	remote := &mockRemote{listFunc: func() ([]domain.SessionRecord, error) {
		return []domain.SessionRecord{record("remote")}, nil
	}}
	svc, local := testService(t, remote)
	require.NoError(t, local.Append(record("local")))

	records := svc.List()
	require.Len(t, records, 1)
	assert.Equal(t, "remote", records[0].Uid)
}

func TestListFallsBackToLocal(t *testing.T) {
	remote := &mockRemote{listFunc: func() ([]domain.SessionRecord, error) {
		return nil, errors.New("backend down")
	}}
	svc, local := testService(t, remote)
	require.NoError(t, local.Append(record("local")))

	records := svc.List()
	require.Len(t, records, 1)
	assert.Equal(t, "local", records[0].Uid)

	// repeated fallback reads must not mutate the cache
	assert.Len(t, svc.List(), 1)
}

func TestListEmptyWhenBothTiersUnavailable(t *testing.T) {
	remote := &mockRemote{listFunc: func() ([]domain.SessionRecord, error) {
		return nil, errors.New("backend down")
	}}
	svc, _ := testService(t, remote)
	assert.Empty(t, svc.List())
}

func TestClearWipesBothTiers(t *testing.T) {
	cleared := false
	remote := &mockRemote{clearFunc: func() error {
		cleared = true
		return nil
	}}
	svc, local := testService(t, remote)
	require.NoError(t, local.Append(record("a")))

	require.NoError(t, svc.Clear())
	assert.True(t, cleared)

	cached, err := local.Load()
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestClearKeepsLocalOnRemoteFailure(t *testing.T) {
	remote := &mockRemote{clearFunc: func() error {
		return errors.New("backend down")
	}}
	svc, local := testService(t, remote)
	require.NoError(t, local.Append(record("a")))

	require.Error(t, svc.Clear())

	cached, err := local.Load()
	require.NoError(t, err)
	assert.Len(t, cached, 1, "nothing is lost before a retry")
}
