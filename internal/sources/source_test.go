package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialens/medialens/internal/clients"
	"github.com/medialens/medialens/internal/models"
)

func TestNormalizeCodec(t *testing.T) {
	tests := []struct{ in, want string }{
		{"h264", "H.264"},
		{"hevc", "H.265"},
		{"av1", "AV1"},
		{"mpeg2video", "MPEG-2"},
		{"vc1", "VC-1"},
		{"", models.UnknownLabel},
		{"theora", "THEORA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeCodec(tt.in), "codec %q", tt.in)
	}
}

func TestNormalizeResolution(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1080", "1080p"},
		{"720", "720p"},
		{"4k", "4K"},
		{"2160", "4K"},
		{"sd", "SD"},
		{"1080p", "1080p"},
		{"", models.UnknownLabel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeResolution(tt.in), "resolution %q", tt.in)
	}
}

// ──────────────────── Plex adapter ────────────────────

func plexStub() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/library/sections":
			json.NewEncoder(w).Encode(map[string]any{
				"MediaContainer": map[string]any{
					"Directory": []map[string]any{
						{"key": "1", "title": "Movies", "type": "movie"},
						{"key": "2", "title": "Shows", "type": "show"},
						{"key": "3", "title": "Music", "type": "artist"},
					},
				},
			})
		case "/library/sections/1/all":
			json.NewEncoder(w).Encode(map[string]any{
				"MediaContainer": map[string]any{
					"Metadata": []map[string]any{
						{
							"ratingKey": "100", "title": "Big Movie", "type": "movie",
							"year": 2021, "duration": 7260000,
							"Genre": []map[string]any{{"tag": "Drama"}},
							"Media": []map[string]any{{
								"bitrate": 12000, "videoCodec": "hevc", "videoResolution": "4k",
								"Part": []map[string]any{{"file": "/movies/Big.Movie.2021.2160p.mkv", "size": 30000000000}},
							}},
						},
					},
				},
			})
		case "/library/sections/2/all":
			if r.URL.Query().Get("type") != "4" {
				http.Error(w, "expected episode leaves", http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"MediaContainer": map[string]any{
					"Metadata": []map[string]any{
						{
							"ratingKey": "200", "title": "Pilot", "type": "episode",
							"grandparentTitle": "Some Show",
							"Media": []map[string]any{{
								"bitrate": 5000, "videoCodec": "h264", "videoResolution": "1080",
								"Part": []map[string]any{{"file": "/tv/pilot.mkv", "size": 2000000000}},
							}},
						},
					},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestPlexSourceLibraries(t *testing.T) {
	srv := plexStub()
	defer srv.Close()

	src := NewPlexSource(clients.NewPlex(srv.URL, "tok", time.Second))
	libs, err := src.Libraries(context.Background())
	require.NoError(t, err)

	// The music section is not analyzable and is dropped.
	require.Len(t, libs, 2)
	assert.Equal(t, models.LibraryTypeMovies, libs[0].Type)
	assert.Equal(t, models.LibraryTypeTVShows, libs[1].Type)
}

func TestPlexSourceMovieNormalization(t *testing.T) {
	srv := plexStub()
	defer srv.Close()

	src := NewPlexSource(clients.NewPlex(srv.URL, "tok", time.Second))
	files, err := src.LibraryFiles(context.Background(), models.Library{ID: "1", Type: models.LibraryTypeMovies})
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files[0]
	assert.Equal(t, "100", f.ID)
	assert.Equal(t, "4K", f.Resolution)
	assert.Equal(t, "H.265", f.Codec)
	assert.Equal(t, int64(12000), f.Bitrate)
	assert.Equal(t, int64(30000000000), f.FileSize)
	assert.Equal(t, "/movies/Big.Movie.2021.2160p.mkv", f.FilePath)
	assert.Equal(t, 121, f.RuntimeMin)
	assert.Equal(t, []string{"Drama"}, f.Genres)
	assert.Equal(t, models.MediaTypeMovie, f.Type)
}

func TestPlexSourceEpisodeLeaves(t *testing.T) {
	srv := plexStub()
	defer srv.Close()

	src := NewPlexSource(clients.NewPlex(srv.URL, "tok", time.Second))
	files, err := src.LibraryFiles(context.Background(), models.Library{ID: "2", Type: models.LibraryTypeTVShows})
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, models.MediaTypeEpisode, files[0].Type)
	assert.Equal(t, "Some Show", files[0].ShowName)
}

// ──────────────────── Tautulli adapter ────────────────────

func tautulliStub(t *testing.T, totalRows int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2", r.URL.Path)
		assert.Equal(t, "apikey", r.URL.Query().Get("apikey"))

		switch r.URL.Query().Get("cmd") {
		case "get_libraries":
			writeTautulli(w, []map[string]any{
				{"section_id": "1", "section_name": "Movies", "section_type": "movie", "count": "120"},
				{"section_id": 2, "section_name": "Shows", "section_type": "show", "count": 340},
			})
		case "get_library_media_info":
			start, _ := strconv.Atoi(r.URL.Query().Get("start"))
			length, _ := strconv.Atoi(r.URL.Query().Get("length"))
			var rows []map[string]any
			for i := start; i < start+length && i < totalRows; i++ {
				rows = append(rows, map[string]any{
					"rating_key": i, "title": "Item " + strconv.Itoa(i),
					"media_type": "movie", "file_size": strconv.Itoa((totalRows - i) * 1000),
					"video_codec": "h264", "video_resolution": "1080", "bitrate": 8000,
				})
			}
			writeTautulli(w, map[string]any{
				"data":         rows,
				"recordsTotal": totalRows,
			})
		default:
			writeTautulliError(w, "unknown cmd")
		}
	}))
}

func writeTautulli(w http.ResponseWriter, data any) {
	json.NewEncoder(w).Encode(map[string]any{
		"response": map[string]any{"result": "success", "data": data},
	})
}

func writeTautulliError(w http.ResponseWriter, msg string) {
	json.NewEncoder(w).Encode(map[string]any{
		"response": map[string]any{"result": "error", "message": msg},
	})
}

func TestTautulliSourceLibraries(t *testing.T) {
	srv := tautulliStub(t, 0)
	defer srv.Close()

	src := NewTautulliSource(clients.NewTautulli(srv.URL, "apikey", time.Second))
	libs, err := src.Libraries(context.Background())
	require.NoError(t, err)

	require.Len(t, libs, 2)
	// Quoted and unquoted numerics both decode.
	assert.Equal(t, "1", libs[0].ID)
	assert.Equal(t, 120, libs[0].ItemCount)
	assert.Equal(t, "2", libs[1].ID)
	assert.Equal(t, 340, libs[1].ItemCount)
}

func TestTautulliSourcePagesThroughTable(t *testing.T) {
	srv := tautulliStub(t, 2500)
	defer srv.Close()

	src := NewTautulliSource(clients.NewTautulli(srv.URL, "apikey", time.Second))
	files, err := src.LibraryFiles(context.Background(), models.Library{ID: "1", Type: models.LibraryTypeMovies})
	require.NoError(t, err)

	require.Len(t, files, 2500)
	assert.Equal(t, "Item 0", files[0].Title)
	assert.Equal(t, int64(2500*1000), files[0].FileSize)
	assert.Equal(t, "1080p", files[0].Resolution)
	assert.Equal(t, "H.264", files[0].Codec)
}

func TestTautulliErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeTautulliError(w, "invalid section")
	}))
	defer srv.Close()

	src := NewTautulliSource(clients.NewTautulli(srv.URL, "apikey", time.Second))
	_, err := src.LibraryFiles(context.Background(), models.Library{ID: "9"})
	assert.ErrorIs(t, err, clients.ErrUnavailable)
}
