package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/arrnfo/internal/importer"
	"github.com/vmunix/arrnfo/internal/normalize"
	"github.com/vmunix/arrnfo/internal/pipeline"
	"github.com/vmunix/arrnfo/internal/resolver"
	"github.com/vmunix/arrnfo/internal/tmdb"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRunner resolves a query by substring and writes a tvshow.nfo into the
// media directory the way the pipeline would.
type fakeRunner struct {
	shows  map[string]*normalize.Record
	byID   map[int64]*normalize.Record
	fail   map[string]error
	inputs []pipeline.Input
}

func newFakeRunner() *fakeRunner {
	lost := &normalize.Record{
		MediaType: tmdb.MediaTV, TMDBID: 4607, Title: "Lost", Year: 2004,
		Episodes: []normalize.Episode{
			{Season: 1, Number: 1, Name: "Pilot"},
			{Season: 1, Number: 2, Name: "Tabula Rasa"},
		},
	}
	fringe := &normalize.Record{
		MediaType: tmdb.MediaTV, TMDBID: 1705, Title: "Fringe", Year: 2008,
		Episodes: []normalize.Episode{
			{Season: 1, Number: 1, Name: "Pilot"},
		},
	}
	return &fakeRunner{
		shows: map[string]*normalize.Record{"lost": lost, "fringe": fringe},
		byID:  map[int64]*normalize.Record{4607: lost, 1705: fringe},
		fail:  map[string]error{},
	}
}

func (f *fakeRunner) Run(_ context.Context, in pipeline.Input) (pipeline.State, error) {
	f.inputs = append(f.inputs, in)

	var rec *normalize.Record
	if in.TMDBID > 0 {
		rec = f.byID[in.TMDBID]
	}
	q := strings.ToLower(in.Query)
	for key, err := range f.fail {
		if strings.Contains(q, key) {
			return pipeline.State{}, err
		}
	}
	for key, r := range f.shows {
		if rec == nil && strings.Contains(q, key) {
			rec = r
		}
	}
	if rec == nil {
		return pipeline.State{}, resolver.ErrNoCandidateFound
	}

	mediaDir := pipeline.MediaDir(&in, rec)
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		return pipeline.State{}, err
	}
	nfoPath := filepath.Join(mediaDir, pipeline.TVShowNFO)
	if err := os.WriteFile(nfoPath, []byte("<tvshow/>"), 0644); err != nil {
		return pipeline.State{}, err
	}
	return pipeline.State{
		Input:     &in,
		Candidate: &resolver.Candidate{ID: rec.TMDBID, MediaType: tmdb.MediaTV, Name: rec.Title, Source: resolver.SourceSearch},
		Record:    rec,
		Output:    &pipeline.Output{Status: pipeline.StatusCompleted, MediaDir: mediaDir, NFOPath: nfoPath},
	}, nil
}

func newDriver(runner Runner) *Driver {
	return New(runner, importer.New(nil, testLogger()), WithLogger(testLogger()))
}

func TestRun_OutputMove(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	touch(t, filepath.Join(root, "Lost.S01.1080p", "Lost.S01E01.mkv"), "v1")
	touch(t, filepath.Join(root, "Lost.S01.1080p", "Lost.S01E02.mkv"), "v2")
	touch(t, filepath.Join(root, "Lost.S01.1080p", "Lost.S01E01.srt"), "s1")
	touch(t, filepath.Join(root, "Fringe.S01E01.mkv"), "f1")
	touch(t, filepath.Join(root, "Fringe.S01E01.zh.srt"), "fs1")
	touch(t, filepath.Join(root, "Orphan.zh.srt"), "o")
	touch(t, filepath.Join(root, "movies", "keep.mkv"), "k")

	runner := newFakeRunner()
	sum, err := newDriver(runner).Run(context.Background(), root, Options{Mode: ModeOutputMove, OutputDir: out})
	require.NoError(t, err)
	require.Len(t, sum.Rows, 3)

	lost := sum.Rows[0]
	assert.Equal(t, "Lost.S01.1080p", lost.Unit)
	assert.Equal(t, StatusCompleted, lost.Status)
	assert.Equal(t, "Lost", lost.Title)
	assert.Equal(t, int64(4607), lost.TMDBID)
	assert.Equal(t, 3, lost.Placed)
	assert.True(t, lost.SourceDeleted)
	assert.NoDirExists(t, filepath.Join(root, "Lost.S01.1080p"))

	season := filepath.Join(out, "TV", "Lost (2004)", "Season 01")
	assert.FileExists(t, filepath.Join(season, "Lost - S01E01 - Pilot.mkv"))
	assert.FileExists(t, filepath.Join(season, "Lost - S01E01 - Pilot.srt"))
	assert.FileExists(t, filepath.Join(season, "Lost - S01E02 - Tabula Rasa.mkv"))

	fringe := sum.Rows[1]
	assert.Equal(t, "Fringe", fringe.Unit)
	assert.Equal(t, StatusCompleted, fringe.Status)
	assert.Equal(t, 2, fringe.Placed)
	assert.FileExists(t, filepath.Join(out, "TV", "Fringe (2008)", "Season 01", "Fringe - S01E01 - Pilot.zh.srt"))
	assert.NoFileExists(t, filepath.Join(root, "Fringe.S01E01.mkv"))

	assert.Equal(t, Row{Unit: "Orphan", Status: StatusSkipped, Error: ErrNoVideos.Error()}, sum.Rows[2])
	assert.FileExists(t, filepath.Join(root, "Orphan.zh.srt"))
	assert.FileExists(t, filepath.Join(root, "movies", "keep.mkv"))

	assert.Equal(t, Counts{Completed: 2, Skipped: 1}, sum.Counts())
	assert.NoFileExists(t, filepath.Join(root, LockFile))

	for _, in := range runner.inputs {
		assert.Equal(t, tmdb.MediaTV, in.MediaType)
		assert.Equal(t, out, in.OutputDir)
		assert.Empty(t, in.InPlaceDir)
	}
}

func TestRun_OutputCopyKeepsSources(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	touch(t, filepath.Join(root, "Lost", "Lost.S01E01.mkv"), "v1")
	touch(t, filepath.Join(root, "Lost", "Lost.S01E02.mkv"), "v2")

	sum, err := newDriver(newFakeRunner()).Run(context.Background(), root, Options{Mode: ModeOutputCopy, OutputDir: out})
	require.NoError(t, err)
	require.Len(t, sum.Rows, 1)
	assert.Equal(t, 2, sum.Rows[0].Placed)
	assert.False(t, sum.Rows[0].SourceDeleted)
	assert.FileExists(t, filepath.Join(root, "Lost", "Lost.S01E01.mkv"))
	assert.FileExists(t, filepath.Join(out, "TV", "Lost (2004)", "Season 01", "Lost - S01E01 - Pilot.mkv"))
}

func TestRun_FailingUnitDoesNotStopBatch(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	touch(t, filepath.Join(root, "Broken Show", "a.S01E01.mkv"), "x")
	touch(t, filepath.Join(root, "Broken Show", "a.S01E02.mkv"), "x")
	touch(t, filepath.Join(root, "Unknown", "b.S01E01.mkv"), "x")
	touch(t, filepath.Join(root, "Lost", "Lost.S01E01.mkv"), "v1")

	runner := newFakeRunner()
	runner.fail["broken"] = errors.New("fetch failed: tv 1: boom")

	sum, err := newDriver(runner).Run(context.Background(), root, Options{Mode: ModeOutputMove, OutputDir: out})
	require.NoError(t, err)
	require.Len(t, sum.Rows, 3)

	assert.Equal(t, StatusFailed, sum.Rows[0].Status)
	assert.Contains(t, sum.Rows[0].Error, "boom")
	assert.Equal(t, StatusCompleted, sum.Rows[1].Status)
	assert.Equal(t, "Lost", sum.Rows[1].Unit)
	assert.Equal(t, StatusFailed, sum.Rows[2].Status)
	assert.Contains(t, sum.Rows[2].Error, resolver.ErrNoCandidateFound.Error())

	assert.FileExists(t, filepath.Join(root, "Broken Show", "a.S01E01.mkv"))
	assert.Equal(t, Counts{Completed: 1, Failed: 2}, sum.Counts())
}

func TestRun_OutputRequiresDirectory(t *testing.T) {
	_, err := newDriver(newFakeRunner()).Run(context.Background(), t.TempDir(), Options{Mode: ModeOutputCopy})
	assert.Error(t, err)
}

func TestRun_InPlaceRenamesRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "lost.s01.web")
	touch(t, filepath.Join(root, "Lost.S01E01.mkv"), "v1")
	touch(t, filepath.Join(root, "Lost.S01E02.mkv"), "v2")
	touch(t, filepath.Join(root, "Lost.S01E02.zh.srt"), "s2")

	runner := newFakeRunner()
	sum, err := newDriver(runner).Run(context.Background(), root, Options{Mode: ModeInPlace})
	require.NoError(t, err)
	require.Len(t, sum.Rows, 1)

	row := sum.Rows[0]
	assert.Equal(t, StatusCompleted, row.Status)
	assert.Equal(t, 3, row.Placed)
	assert.False(t, row.SourceDeleted)
	assert.Equal(t, "Lost (2004)", row.RenamedTo)

	renamed := filepath.Join(base, "Lost (2004)")
	assert.Equal(t, renamed, sum.Root)
	assert.NoDirExists(t, root)
	assert.FileExists(t, filepath.Join(renamed, pipeline.TVShowNFO))
	assert.FileExists(t, filepath.Join(renamed, "Season 01", "Lost - S01E02 - Tabula Rasa.zh.srt"))
	assert.NoFileExists(t, filepath.Join(renamed, LockFile))

	require.Len(t, runner.inputs, 1)
	assert.Equal(t, root, runner.inputs[0].InPlaceDir)
	assert.Empty(t, runner.inputs[0].OutputDir)
}

func TestRun_InPlaceExplicitIDAndLocalNFO(t *testing.T) {
	t.Run("explicit id", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "whatever")
		touch(t, filepath.Join(root, "ep.S01E01.mkv"), "v")

		runner := newFakeRunner()
		_, err := newDriver(runner).Run(context.Background(), root, Options{Mode: ModeInPlace, TMDBID: 1705})
		require.NoError(t, err)
		require.Len(t, runner.inputs, 1)
		assert.Equal(t, int64(1705), runner.inputs[0].TMDBID)
		assert.Empty(t, runner.inputs[0].Query)
	})

	t.Run("local nfo", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "whatever")
		touch(t, filepath.Join(root, "ep.S01E01.mkv"), "v")
		touch(t, filepath.Join(root, "tvshow.nfo"), "<tvshow><tmdbid>4607</tmdbid></tvshow>")

		runner := newFakeRunner()
		sum, err := newDriver(runner).Run(context.Background(), root, Options{Mode: ModeInPlace, UseLocalNFO: true})
		require.NoError(t, err)
		require.Len(t, runner.inputs, 1)
		assert.Equal(t, int64(4607), runner.inputs[0].TMDBID)
		assert.Equal(t, "Lost (2004)", sum.Rows[0].RenamedTo)
	})
}

func TestRun_InPlaceRenameTargetExists(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "lost")
	touch(t, filepath.Join(root, "Lost.S01E01.mkv"), "v1")
	require.NoError(t, os.MkdirAll(filepath.Join(base, "Lost (2004)"), 0755))

	sum, err := newDriver(newFakeRunner()).Run(context.Background(), root, Options{Mode: ModeInPlace})
	require.NoError(t, err)
	assert.Empty(t, sum.Rows[0].RenamedTo)
	assert.DirExists(t, root)
	assert.FileExists(t, filepath.Join(root, "Season 01", "Lost - S01E01 - Pilot.mkv"))
}

func TestRun_Multi(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "lost.s01", "Lost.S01E01.mkv"), "v1")
	touch(t, filepath.Join(root, "lost.s01", "Lost.S01E02.mkv"), "v2")
	touch(t, filepath.Join(root, "Fringe.S01E01.mkv"), "f1")
	touch(t, filepath.Join(root, "Fringe.S01E01.zh.srt"), "fs1")
	touch(t, filepath.Join(root, "Stray.srt"), "s")
	touch(t, filepath.Join(root, ".trash", "x.mkv"), "x")

	runner := newFakeRunner()
	sum, err := newDriver(runner).Run(context.Background(), root, Options{Mode: ModeMulti})
	require.NoError(t, err)
	require.Len(t, sum.Rows, 2)

	assert.Equal(t, "lost.s01", sum.Rows[0].Unit)
	assert.Equal(t, "Lost (2004)", sum.Rows[0].RenamedTo)
	assert.Equal(t, "Fringe", sum.Rows[1].Unit)
	assert.Equal(t, "Fringe (2008)", sum.Rows[1].RenamedTo)
	assert.Equal(t, 2, sum.Rows[1].Placed)

	assert.FileExists(t, filepath.Join(root, "Lost (2004)", "Season 01", "Lost - S01E02 - Tabula Rasa.mkv"))
	assert.FileExists(t, filepath.Join(root, "Fringe (2008)", "Season 01", "Fringe - S01E01 - Pilot.mkv"))
	assert.FileExists(t, filepath.Join(root, "Fringe (2008)", "Season 01", "Fringe - S01E01 - Pilot.zh.srt"))
	assert.NoDirExists(t, filepath.Join(root, "Fringe"+UnknownYearSuffix))
	assert.FileExists(t, filepath.Join(root, "Stray.srt"))
	assert.FileExists(t, filepath.Join(root, ".trash", "x.mkv"))

	require.Len(t, runner.inputs, 2)
	assert.Equal(t, "Fringe", runner.inputs[1].Query)
	assert.Equal(t, filepath.Join(root, "Fringe"+UnknownYearSuffix), runner.inputs[1].InPlaceDir)
}

func TestRun_Locked(t *testing.T) {
	root := t.TempDir()
	held := flock.New(filepath.Join(root, LockFile))
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	runner := newFakeRunner()
	_, err = newDriver(runner).Run(context.Background(), root, Options{Mode: ModeMulti})
	assert.ErrorIs(t, err, ErrLocked)
	assert.Empty(t, runner.inputs)
}

func TestRun_CancelledContext(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Lost", "Lost.S01E01.mkv"), "v1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newFakeRunner()
	sum, err := newDriver(runner).Run(ctx, root, Options{Mode: ModeMulti})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sum.Rows)
	assert.Empty(t, runner.inputs)
	assert.NoFileExists(t, filepath.Join(root, LockFile))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "copy", ModeOutputCopy.String())
	assert.Equal(t, "move", ModeOutputMove.String())
	assert.Equal(t, "inplace", ModeInPlace.String())
	assert.Equal(t, "multi", ModeMulti.String())
	assert.Equal(t, "mode(9)", Mode(9).String())
}
