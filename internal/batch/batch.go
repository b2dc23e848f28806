// Package batch drives the metadata pipeline and the reorganizer over a
// directory of shows: organized show folders, scattered episode files, an
// in-place show folder, or a folder of many shows.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gofrs/flock"

	"github.com/vmunix/arrnfo/internal/importer"
	"github.com/vmunix/arrnfo/internal/pipeline"
	"github.com/vmunix/arrnfo/internal/tmdb"
	"github.com/vmunix/arrnfo/pkg/release"
)

// LockFile is created in the batch root while a run holds it.
const LockFile = ".arrnfo.lock"

// UnknownYearSuffix names folders created for loose videos before their
// metadata is known.
const UnknownYearSuffix = " (Unknown Year)"

// Mode selects how the root is processed.
type Mode int

const (
	ModeOutputCopy Mode = iota // copy each unit into the output library
	ModeOutputMove             // move each unit into the output library
	ModeInPlace                // treat the root itself as one show
	ModeMulti                  // every subfolder and loose video is its own show
)

func (m Mode) String() string {
	switch m {
	case ModeOutputCopy:
		return "copy"
	case ModeOutputMove:
		return "move"
	case ModeInPlace:
		return "inplace"
	case ModeMulti:
		return "multi"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Runner runs the metadata pipeline for one show.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (pipeline.State, error)
}

// Organizer places a show's episode files.
type Organizer interface {
	Reorganize(ctx context.Context, src importer.Source, t importer.Target) (*importer.Ledger, error)
}

// Options configure one batch run.
type Options struct {
	Mode      Mode
	OutputDir string
	// TMDBID skips name search; honoured in ModeInPlace only.
	TMDBID int64
	// UseLocalNFO seeds units with the <tmdbid> of an existing NFO.
	UseLocalNFO bool
	// Base carries the pipeline flags shared by every unit.
	Base pipeline.Input
}

// Driver runs batches.
type Driver struct {
	runner    Runner
	organizer Organizer
	log       *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Driver) {
		d.log = log
	}
}

// New creates a driver.
func New(runner Runner, organizer Organizer, opts ...Option) *Driver {
	d := &Driver{
		runner:    runner,
		organizer: organizer,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "batch")
	return d
}

// Run processes root in the given mode. Unit failures are recorded in the
// summary and never stop the batch; the returned error covers only problems
// with the root itself, a held lock, or cancellation.
func (d *Driver) Run(ctx context.Context, root string, o Options) (*Summary, error) {
	start := time.Now()
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("batch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("batch root %s is not a directory", root)
	}
	if (o.Mode == ModeOutputCopy || o.Mode == ModeOutputMove) && o.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}

	lock, err := acquire(root)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Mode: o.Mode, Root: root}
	d.log.Info("batch started", "root", root, "mode", o.Mode.String())

	var runErr error
	var inPlace *unitResult
	switch o.Mode {
	case ModeOutputCopy, ModeOutputMove:
		runErr = d.runOutput(ctx, root, o, sum)
	case ModeInPlace:
		res := d.inPlace(ctx, root, release.CleanSearchName(filepath.Base(root)), d.unitID(root, o.TMDBID, o.UseLocalNFO), o)
		sum.Rows = append(sum.Rows, res.row)
		inPlace = &res
		runErr = ctx.Err()
	case ModeMulti:
		runErr = d.runMulti(ctx, root, o, sum)
	default:
		runErr = fmt.Errorf("%w: %d", ErrUnknownMode, int(o.Mode))
	}

	d.release(lock)

	// The root can only be renamed once the lock file inside it is gone.
	if inPlace != nil && inPlace.state != nil {
		if renamed := d.renameToTitle(root, inPlace.state); renamed != "" {
			sum.Rows[len(sum.Rows)-1].RenamedTo = filepath.Base(renamed)
			sum.Root = renamed
		}
	}

	sum.Duration = time.Since(start)
	counts := sum.Counts()
	d.log.Info("batch complete",
		"root", sum.Root,
		"completed", counts.Completed,
		"failed", counts.Failed,
		"skipped", counts.Skipped,
		"duration_ms", sum.Duration.Milliseconds())
	return sum, runErr
}

func acquire(root string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(root, LockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, root)
	}
	return lock, nil
}

func (d *Driver) release(lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		d.log.Warn("failed to release batch lock", "path", lock.Path(), "error", err)
	}
	if err := os.Remove(lock.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.log.Warn("failed to remove lock file", "path", lock.Path(), "error", err)
	}
}

// unitID returns the explicit id, else the id of a local NFO when enabled.
func (d *Driver) unitID(dir string, explicit int64, useLocal bool) int64 {
	if explicit > 0 {
		return explicit
	}
	if !useLocal {
		return 0
	}
	if id, ok := ExtractTMDBID(dir); ok {
		d.log.Info("using local nfo id", "dir", filepath.Base(dir), "tmdb_id", id)
		return id
	}
	return 0
}

func (d *Driver) input(o Options, query string, id int64) pipeline.Input {
	in := o.Base
	in.MediaType = tmdb.MediaTV
	in.Query = query
	in.TMDBID = id
	in.IMDBID = ""
	if id > 0 {
		in.Query = ""
	}
	return in
}

// runOutput processes organized folders then scattered groups into the
// output library.
func (d *Driver) runOutput(ctx context.Context, root string, o Options, sum *Summary) error {
	scan, err := Scan(root)
	if err != nil {
		return err
	}
	d.log.Info("scan complete",
		"organized", len(scan.Organized),
		"scattered", len(scan.Scattered),
		"excluded", len(scan.Excluded))

	mode := importer.ModeCopy
	if o.Mode == ModeOutputMove {
		mode = importer.ModeMove
	}

	for _, dir := range scan.Organized {
		if err := ctx.Err(); err != nil {
			return err
		}
		in := d.input(o, release.CleanSearchName(filepath.Base(dir)), d.unitID(dir, 0, o.UseLocalNFO))
		in.OutputDir = o.OutputDir
		res := d.unit(ctx, filepath.Base(dir), in, importer.Source{Root: dir}, mode, mode == importer.ModeMove)
		sum.Rows = append(sum.Rows, res.row)
	}

	for _, g := range GroupByShow(scan.Scattered) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !g.HasVideo() {
			d.log.Info("skipping subtitle-only group", "show", g.Show, "files", len(g.Files))
			sum.Rows = append(sum.Rows, Row{Unit: g.Show, Status: StatusSkipped, Error: ErrNoVideos.Error()})
			continue
		}
		in := d.input(o, release.CleanSearchName(g.Show), 0)
		in.OutputDir = o.OutputDir
		res := d.unit(ctx, g.Show, in, importer.Source{Files: g.Files}, mode, false)
		sum.Rows = append(sum.Rows, res.row)
	}
	return ctx.Err()
}

// runMulti treats every subfolder, and every show among the loose videos,
// as an in-place unit renamed to "{Title} ({Year})" afterwards.
func (d *Driver) runMulti(ctx context.Context, root string, o Options, sum *Summary) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	var dirs, videos, subtitles []string
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		switch {
		case e.IsDir():
			if !isExcludedDir(e.Name()) {
				dirs = append(dirs, path)
			}
		case release.IsVideoFile(e.Name()):
			videos = append(videos, path)
		case release.IsSubtitleFile(e.Name()):
			subtitles = append(subtitles, path)
		}
	}
	d.log.Info("multi scan complete", "dirs", len(dirs), "loose_videos", len(videos), "loose_subtitles", len(subtitles))

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := d.inPlace(ctx, dir, release.CleanSearchName(filepath.Base(dir)), d.unitID(dir, 0, o.UseLocalNFO), o)
		d.finishRename(dir, &res)
		sum.Rows = append(sum.Rows, res.row)
	}

	for _, g := range GroupByShow(videos) {
		if err := ctx.Err(); err != nil {
			return err
		}
		dir, moved, err := d.gather(root, g, subtitles)
		subtitles = slices.DeleteFunc(subtitles, func(s string) bool { return slices.Contains(moved, s) })
		if err != nil {
			sum.Rows = append(sum.Rows, Row{Unit: g.Show, Status: StatusFailed, Error: err.Error()})
			continue
		}
		res := d.inPlace(ctx, dir, release.CleanSearchName(g.Show), 0, o)
		res.row.Unit = g.Show
		d.finishRename(dir, &res)
		sum.Rows = append(sum.Rows, res.row)
	}
	return ctx.Err()
}

// gather moves a group of loose videos and their same-stem subtitles into
// "{Show} (Unknown Year)" under root. It returns the subtitles it moved.
func (d *Driver) gather(root string, g Group, subtitles []string) (string, []string, error) {
	dir := filepath.Join(root, importer.SafeTitle(g.Show)+UnknownYearSuffix)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, fmt.Errorf("create show directory: %w", err)
	}

	var moved []string
	for _, video := range g.Files {
		if err := importer.MoveFile(video, filepath.Join(dir, filepath.Base(video))); err != nil {
			return dir, moved, err
		}
		for _, sub := range companions(video, subtitles) {
			if slices.Contains(moved, sub) {
				continue
			}
			if err := importer.MoveFile(sub, filepath.Join(dir, filepath.Base(sub))); err != nil {
				return dir, moved, err
			}
			moved = append(moved, sub)
		}
	}
	d.log.Info("gathered loose files", "show", g.Show, "dir", filepath.Base(dir), "videos", len(g.Files), "subtitles", len(moved))
	return dir, moved, nil
}

func (d *Driver) inPlace(ctx context.Context, dir, query string, id int64, o Options) unitResult {
	in := d.input(o, query, id)
	in.OutputDir = ""
	in.InPlaceDir = dir
	return d.unit(ctx, filepath.Base(dir), in, importer.Source{Root: dir}, importer.ModeInPlace, false)
}

func (d *Driver) finishRename(dir string, res *unitResult) {
	if res.state == nil {
		return
	}
	if renamed := d.renameToTitle(dir, res.state); renamed != "" {
		res.row.RenamedTo = filepath.Base(renamed)
	}
}

type unitResult struct {
	row   Row
	state *pipeline.State
}

// unit runs the pipeline for one show and reorganizes its files into the
// media directory the pipeline wrote.
func (d *Driver) unit(ctx context.Context, name string, in pipeline.Input, src importer.Source, mode importer.Mode, deleteSource bool) unitResult {
	start := time.Now()
	row := Row{Unit: name, Status: StatusFailed}
	log := d.log.With("unit", name)
	log.Info("processing unit", "query", in.Query, "tmdb_id", in.TMDBID, "mode", mode.String())

	state, err := d.runner.Run(ctx, in)
	if err != nil {
		log.Error("metadata failed", "error", err)
		row.Error = err.Error()
		return unitResult{row: row}
	}
	if state.Record == nil || state.Output == nil {
		row.Error = "pipeline produced no output"
		return unitResult{row: row}
	}

	rec := state.Record
	row.Title = rec.DisplayTitle()
	row.Year = rec.Year
	row.TMDBID = rec.TMDBID
	if state.Candidate != nil {
		row.Match = fmt.Sprintf("%s/%s", state.Candidate.Source, state.Candidate.Confidence)
	}

	ledger, err := d.organizer.Reorganize(ctx, src, importer.Target{
		MediaDir:     state.Output.MediaDir,
		ShowTitle:    rec.DisplayTitle(),
		Episodes:     state.EpisodeMap(),
		Mode:         mode,
		DeleteSource: deleteSource,
	})
	if ledger != nil {
		row.Placed = ledger.Succeeded
		row.Failed = ledger.Failed
		row.SourceDeleted = ledger.SourceDeleted
	}
	if err != nil {
		log.Error("reorganize failed", "error", err)
		row.Error = err.Error()
		return unitResult{row: row}
	}

	row.Status = StatusCompleted
	if ledger.Failed > 0 {
		row.Error = ledger.Failures[0].String()
	}
	log.Info("unit complete",
		"title", row.Title,
		"placed", row.Placed,
		"failed", row.Failed,
		"duration_ms", time.Since(start).Milliseconds())
	return unitResult{row: row, state: &state}
}

// renameToTitle renames dir to "{Title} ({Year})" beside it. It returns the
// new path, or "" when the name is already right or the target exists.
func (d *Driver) renameToTitle(dir string, state *pipeline.State) string {
	rec := state.Record
	target := filepath.Join(filepath.Dir(dir), importer.MediaDirName(rec.DisplayTitle(), rec.Year))
	if target == dir {
		return ""
	}
	if _, err := os.Stat(target); err == nil {
		d.log.Warn("rename target exists, keeping folder name", "dir", filepath.Base(dir), "target", filepath.Base(target))
		return ""
	}
	if err := os.Rename(dir, target); err != nil {
		d.log.Warn("folder rename failed", "dir", filepath.Base(dir), "error", err)
		return ""
	}
	d.log.Info("folder renamed", "from", filepath.Base(dir), "to", filepath.Base(target))
	return target
}
