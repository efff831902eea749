package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nmartins/melodysync/internal/client/secondary"
	"github.com/nmartins/melodysync/internal/client/source"
	"github.com/nmartins/melodysync/internal/config"
	"github.com/nmartins/melodysync/internal/logger"
	"github.com/nmartins/melodysync/internal/manifest"
	"github.com/nmartins/melodysync/internal/model"
	"github.com/nmartins/melodysync/internal/sync"
)

// captureLogs swaps the global logger for an observed core for the duration
// of the test and returns the recorded entries.
func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(zap.InfoLevel)
	previous := logger.Logger()
	logger.SetLogger(zap.New(core))

	t.Cleanup(func() { logger.SetLogger(previous) })

	return logs
}

func messages(logs *observer.ObservedLogs) []string {
	out := make([]string, 0, logs.Len())
	for _, entry := range logs.All() {
		out = append(out, entry.Message)
	}

	return out
}

func TestExecuteConfigShowCommand_OmitsSecrets(t *testing.T) {
	logs := captureLogs(t)

	cfg := &config.Config{
		OutputDirectory:    "/music",
		Format:             "flac",
		SourceClientSecret: "super-secret",
	}

	require.NoError(t, ExecuteConfigShowCommand(context.Background(), cfg))

	for _, msg := range messages(logs) {
		assert.NotContains(t, msg, "super-secret")
	}

	assert.Contains(t, messages(logs)[0], "flac")
}

func TestExecuteDoctorCommand(t *testing.T) {
	logs := captureLogs(t)

	cfg := &config.Config{
		OutputDirectory:    t.TempDir(),
		SourceClientID:     "cid",
		SourceClientSecret: "csecret",
	}

	err := ExecuteDoctorCommand(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, messages(logs))
}

func TestExecuteDoctorCommand_MissingCredentials(t *testing.T) {
	captureLogs(t)

	cfg := &config.Config{OutputDirectory: t.TempDir()}

	err := ExecuteDoctorCommand(context.Background(), cfg)
	require.Error(t, err)
}

// fakeTokenSource implements auth.TokenSource without any network calls.
type fakeTokenSource struct {
	err error
}

func (f fakeTokenSource) Token(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	return "tok", nil
}

func (f fakeTokenSource) RefreshToken(context.Context) error { return f.err }

func TestExecuteLoginCommand(t *testing.T) {
	captureLogs(t)

	rt := &Runtime{TokenSource: fakeTokenSource{}}
	require.NoError(t, ExecuteLoginCommand(context.Background(), rt))

	rtFail := &Runtime{TokenSource: fakeTokenSource{err: errors.New("bad credentials")}}
	require.Error(t, ExecuteLoginCommand(context.Background(), rtFail))
}

func TestExecuteStatusCommand(t *testing.T) {
	captureLogs(t)

	rt := &Runtime{TokenSource: fakeTokenSource{err: errors.New("expired")}}
	require.Error(t, ExecuteStatusCommand(context.Background(), rt))
}

func TestExecuteLogoutCommand(t *testing.T) {
	captureLogs(t)
	require.NoError(t, ExecuteLogoutCommand(context.Background()))
}

// fakeSourceClient serves one fixed playlist header with no tracks, enough
// to drive Runner.Plan for list/check tests without a network call.
type fakeSourceClient struct {
	header *source.PlaylistHeader
}

func (f *fakeSourceClient) FetchPlaylistHeader(context.Context, string) (*source.PlaylistHeader, error) {
	return f.header, nil
}

func (f *fakeSourceClient) FetchTracks(context.Context, string, func(source.PlaylistItemRef) error) error {
	return nil
}

func (f *fakeSourceClient) ResolveTracksMetadata(
	context.Context, []string,
) (map[string]*model.Track, error) {
	return map[string]*model.Track{}, nil
}

func (f *fakeSourceClient) VerifyAccess(context.Context, string) error { return nil }

type fakeSecondaryClient struct{}

func (fakeSecondaryClient) Search(context.Context, string) ([]secondary.Candidate, error) {
	return nil, nil
}

func (fakeSecondaryClient) StreamInfo(context.Context, string, string) (*secondary.StreamInfo, error) {
	return nil, errors.New("not used")
}

func TestExecuteCheckCommand_FreshPlaylist(t *testing.T) {
	logs := captureLogs(t)

	outputDir := t.TempDir()

	const playlistID = "abcdefghij1234567890AB" // 22-char id, matches ParsePlaylistRef

	runner := sync.NewRunner(sync.Deps{
		SourceClient:    &fakeSourceClient{header: &source.PlaylistHeader{ID: playlistID, Name: "My Mix"}},
		SecondaryClient: fakeSecondaryClient{},
		Config:          &config.Config{OutputDirectory: outputDir, Format: "mp3"},
	})

	rt := &Runtime{Config: &config.Config{OutputDirectory: outputDir}, Runner: runner}

	require.NoError(t, ExecuteCheckCommand(context.Background(), rt, playlistID))
	assert.NotEmpty(t, messages(logs))
}

func TestExecuteListCommand(t *testing.T) {
	logs := captureLogs(t)

	outputDir := t.TempDir()
	playlistDir := filepath.Join(outputDir, "My Mix")
	require.NoError(t, os.MkdirAll(playlistDir, 0o755))

	playlist := &model.Playlist{
		ID:   "pl1",
		Name: "My Mix",
		Tracks: []*model.PlaylistTrack{
			{Track: model.Track{ID: "t1", Title: "One", Artists: []string{"Artist"}}, Position: 1,
				AudioStatus: model.AudioStatusDownloaded},
			{Track: model.Track{ID: "t2", Title: "Two", Artists: []string{"Artist"}}, Position: 2,
				AudioStatus: model.AudioStatusFailed},
		},
	}

	require.NoError(t, manifest.Create(playlistDir, playlist, false, ""))

	rt := &Runtime{Config: &config.Config{OutputDirectory: outputDir}}

	require.NoError(t, ExecuteListCommand(context.Background(), rt))

	found := false

	for _, msg := range messages(logs) {
		if strings.Contains(msg, "My Mix") {
			found = true
		}
	}

	assert.True(t, found)
}
