package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenSource is a minimal auth.TokenSource for exercising the client without the auth package's HTTP flow.
type fakeTokenSource struct {
	token        string
	refreshCount int32
}

func (f *fakeTokenSource) Token(context.Context) (string, error) {
	return f.token, nil
}

func (f *fakeTokenSource) RefreshToken(context.Context) error {
	atomic.AddInt32(&f.refreshCount, 1)
	f.token = "refreshed-token"

	return nil
}

// TestFetchPlaylistHeader tests that header fields are decoded from the playlist endpoint.
func TestFetchPlaylistHeader(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/playlists/"+sampleID, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + sampleID + `","name":"My Mix","total_track_count":2}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), &fakeTokenSource{token: "tok"})

	header, err := client.FetchPlaylistHeader(t.Context(), sampleID)
	require.NoError(t, err)
	assert.Equal(t, "My Mix", header.Name)
	assert.Equal(t, 2, header.TotalTrackCount)
}

// TestFetchTracks_PaginatesAndSkipsNulls tests that paginated items are yielded in order and
// removed (null) items are skipped while still advancing position.
func TestFetchTracks_PaginatesAndSkipsNulls(t *testing.T) {
	t.Parallel()

	var requestCount int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++

		offset := r.URL.Query().Get("offset")
		w.Header().Set("Content-Type", "application/json")

		switch offset {
		case "0":
			_, _ = w.Write([]byte(`{"items":[
				{"added_at":"2024-01-01T00:00:00Z","track":{"id":"t1"}},
				{"added_at":"2024-01-02T00:00:00Z","track":null}
			],"total":3,"next":"more"}`))
		default:
			_, _ = w.Write([]byte(`{"items":[
				{"added_at":"2024-01-03T00:00:00Z","track":{"id":"t3"}}
			],"total":3,"next":""}`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), &fakeTokenSource{token: "tok"})

	var refs []PlaylistItemRef
	err := client.FetchTracks(t.Context(), sampleID, func(ref PlaylistItemRef) error {
		refs = append(refs, ref)

		return nil
	})
	require.NoError(t, err)

	require.Len(t, refs, 2)
	assert.Equal(t, "t1", refs[0].TrackID)
	assert.Equal(t, 1, refs[0].Position)
	assert.Equal(t, "t3", refs[1].TrackID)
	assert.Equal(t, 3, refs[1].Position)
	assert.Equal(t, 2, requestCount)
}

// TestResolveTracksMetadata_Batches tests that ids are split into batches of at most 50.
func TestResolveTracksMetadata_Batches(t *testing.T) {
	t.Parallel()

	ids := make([]string, 60)
	for i := range ids {
		ids[i] = "id" + strconv.Itoa(i)
	}

	var batchSizes []int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested := r.URL.Query().Get("ids")
		batchSizes = append(batchSizes, len(splitComma(requested)))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tracks":[{"id":"t1","title":"Song","artists":["A"],"duration_ms":180000}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), &fakeTokenSource{token: "tok"})

	result, err := client.ResolveTracksMetadata(t.Context(), ids)
	require.NoError(t, err)
	require.Contains(t, result, "t1")
	assert.Equal(t, "Song", result["t1"].Title)
	assert.Equal(t, []int{50, 10}, batchSizes)
}

// TestGetJSON_RefreshesOnceOn401 tests that a single 401 triggers exactly one token refresh and retry.
func TestGetJSON_RefreshesOnceOn401(t *testing.T) {
	t.Parallel()

	var requestCount int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++

		if r.Header.Get("Authorization") != "Bearer refreshed-token" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + sampleID + `","name":"Mix"}`))
	}))
	defer server.Close()

	tokens := &fakeTokenSource{token: "stale-token"}
	client := NewClient(server.URL, server.Client(), tokens)

	header, err := client.FetchPlaylistHeader(t.Context(), sampleID)
	require.NoError(t, err)
	assert.Equal(t, "Mix", header.Name)
	assert.Equal(t, int32(1), tokens.refreshCount)
	assert.Equal(t, 2, requestCount)
}

// TestGetJSON_SecondConsecutive401IsHardFailure tests that a 401 persisting after refresh fails hard.
func TestGetJSON_SecondConsecutive401IsHardFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), &fakeTokenSource{token: "tok"})

	_, err := client.FetchPlaylistHeader(t.Context(), sampleID)
	require.Error(t, err)
}

// TestGetJSON_HonorsRetryAfter tests that a 429 is retried once Retry-After elapses.
func TestGetJSON_HonorsRetryAfter(t *testing.T) {
	t.Parallel()

	var requestCount int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requestCount++

		if requestCount == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + sampleID + `","name":"Mix"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), &fakeTokenSource{token: "tok"})

	header, err := client.FetchPlaylistHeader(t.Context(), sampleID)
	require.NoError(t, err)
	assert.Equal(t, "Mix", header.Name)
	assert.Equal(t, 2, requestCount)
}

func splitComma(s string) []string {
	var out []string

	start := 0

	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}

	out = append(out, s[start:])

	return out
}
