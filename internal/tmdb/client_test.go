package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts = append([]Option{WithBaseURL(server.URL), WithRetry(3, 0)}, opts...)
	return New("test-key", opts...)
}

func TestClient_MovieDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/550", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "zh-CN", r.URL.Query().Get("language"))
		assert.Equal(t, "translations", r.URL.Query().Get("append_to_response"))

		resp := Movie{
			ID:          550,
			Title:       "Fight Club",
			Overview:    "A ticking-time-bomb insomniac...",
			ReleaseDate: "1999-10-15",
			PosterPath:  "/pB8BM7pdSp6B6Ih7QZ4DrQ3PmJK.jpg",
			VoteAverage: 8.4,
			Runtime:     139,
			Genres:      []Genre{{ID: 18, Name: "Drama"}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	movie, err := client.MovieDetails(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, int64(550), movie.ID)
	assert.Equal(t, "Fight Club", movie.Title)
	assert.Equal(t, 1999, movie.Year())
	assert.Equal(t, 139, movie.Runtime)
}

func TestClient_TVDetails_LanguageFallback(t *testing.T) {
	var langs []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		lang := r.URL.Query().Get("language")
		langs = append(langs, lang)
		if lang != "en-US" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(TVShow{ID: 1399, Name: "Game of Thrones", FirstAirDate: "2011-04-17"})
	}, WithLanguage("zh-TW"))

	show, err := client.TVDetails(context.Background(), 1399)
	require.NoError(t, err)
	assert.Equal(t, "Game of Thrones", show.Name)
	assert.Equal(t, 2011, show.Year())
	assert.Equal(t, []string{"zh-TW", "zh-CN", "en-US"}, langs)
}

func TestClient_TVDetails_AllLanguagesFail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	})

	show, err := client.TVDetails(context.Background(), 99999999)
	assert.Nil(t, show)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []SearchResult{{ID: 1, Name: "Dark"}}})
	})

	results, err := client.SearchTV(context.Background(), "Dark")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.SearchMovie(context.Background(), "Dark")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FindByIMDBID(context.Background(), "tt0000000")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Unauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.SearchTV(context.Background(), "Dark")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_MissingAPIKey(t *testing.T) {
	client := New("")
	_, err := client.SearchTV(context.Background(), "Dark")
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func TestClient_SearchTV(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/tv", r.URL.Path)
		assert.Equal(t, "夫妇交欢", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":202,"name":"夫妇交欢","first_air_date":"2023-05-01"}],"total_results":1}`))
	})

	results, err := client.SearchTV(context.Background(), "夫妇交欢")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(202), results[0].ID)
	assert.Equal(t, "夫妇交欢", results[0].DisplayName())
}

func TestClient_FindByIMDBID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/find/tt0944947", r.URL.Path)
		assert.Equal(t, "imdb_id", r.URL.Query().Get("external_source"))
		_, _ = w.Write([]byte(`{"movie_results":[],"tv_results":[{"id":1399,"name":"Game of Thrones"}]}`))
	})

	result, err := client.FindByIMDBID(context.Background(), "tt0944947")
	require.NoError(t, err)
	assert.Empty(t, result.For(MediaMovie))
	require.Len(t, result.For(MediaTV), 1)
	assert.Equal(t, int64(1399), result.For(MediaTV)[0].ID)
}

func TestClient_Keywords_FailureIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	kw := client.Keywords(context.Background(), MediaTV, 42)
	require.NotNil(t, kw)
	assert.Empty(t, kw.Keywords)
	assert.Empty(t, kw.Results)
}

func TestClient_Keywords_Shapes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/1/keywords":
			_, _ = w.Write([]byte(`{"id":1,"keywords":[{"id":9,"name":"heist"}]}`))
		case "/tv/2/keywords":
			_, _ = w.Write([]byte(`{"id":2,"results":[{"id":8,"name":"time travel"}]}`))
		}
	})

	movie := client.Keywords(context.Background(), MediaMovie, 1)
	require.Len(t, movie.Keywords, 1)
	assert.Equal(t, "heist", movie.Keywords[0].Name)

	tv := client.Keywords(context.Background(), MediaTV, 2)
	require.Len(t, tv.Results, 1)
	assert.Equal(t, "time travel", tv.Results[0].Name)
}

func TestClient_SeasonAndEpisode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tv/7/season/1":
			_, _ = w.Write([]byte(`{"season_number":1,"episodes":[{"episode_number":1,"season_number":1,"name":"Pilot"}]}`))
		case "/tv/7/season/1/episode/1":
			_, _ = w.Write([]byte(`{"episode_number":1,"season_number":1,"name":"Pilot","crew":[{"name":"Jane Doe","job":"Director","department":"Directing"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	season, err := client.SeasonDetails(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Len(t, season.Episodes, 1)
	assert.Equal(t, "Pilot", season.Episodes[0].Name)

	ep, err := client.EpisodeDetails(context.Background(), 7, 1, 1)
	require.NoError(t, err)
	require.Len(t, ep.Crew, 1)
	assert.Equal(t, "Director", ep.Crew[0].Job)
}

func TestClient_Images(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/7/images", r.URL.Path)
		assert.Equal(t, "zh,null,en", r.URL.Query().Get("include_image_language"))
		_, _ = w.Write([]byte(`{"id":7,"posters":[{"file_path":"/p.jpg"}],"backdrops":[{"file_path":"/b.jpg"}],"logos":[]}`))
	})

	images, err := client.Images(context.Background(), MediaTV, 7)
	require.NoError(t, err)
	require.Len(t, images.Posters, 1)
	assert.Equal(t, "https://image.tmdb.org/t/p/original/p.jpg", ImageURL(images.Posters[0].FilePath))
	assert.Equal(t, "", ImageURL(""))
}
