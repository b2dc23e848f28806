// Package importer relocates episode videos and subtitles into a
// "Show (Year)/Season NN/Show - SxxEyy - Title.ext" layout.
package importer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/vmunix/arrnfo/internal/normalize"
	"github.com/vmunix/arrnfo/pkg/release"
)

// Mode selects how files are placed.
type Mode int

const (
	ModeCopy    Mode = iota // copy into the media directory, leave sources
	ModeMove                // move into the media directory
	ModeInPlace             // rename within the show's own directory
)

func (m Mode) String() string {
	switch m {
	case ModeCopy:
		return "copy"
	case ModeMove:
		return "move"
	case ModeInPlace:
		return "inplace"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Source is what to reorganize: a show directory walked recursively, or an
// explicit set of files when Files is non-empty.
type Source struct {
	Root  string
	Files []string
}

// Target describes where and how files are placed.
type Target struct {
	MediaDir  string
	ShowTitle string
	Episodes  normalize.EpisodeMap
	Mode      Mode
	// DeleteSource removes Source.Root once every discovered file was placed.
	DeleteSource bool
}

// Reorganizer places episode files according to a Renamer.
type Reorganizer struct {
	renamer *Renamer
	log     *slog.Logger
}

// New creates a reorganizer. A nil renamer uses the default templates.
func New(renamer *Renamer, log *slog.Logger) *Reorganizer {
	if renamer == nil {
		renamer = NewRenamer("")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Reorganizer{renamer: renamer, log: log.With("component", "reorganizer")}
}

// Reorganize places every video and subtitle of src under t.MediaDir.
// Per-file failures are recorded in the ledger and never stop the run. The
// returned error is non-nil only when discovery fails or ctx is cancelled.
func (r *Reorganizer) Reorganize(ctx context.Context, src Source, t Target) (*Ledger, error) {
	start := time.Now()
	videos, subtitles, err := discover(src)
	if err != nil {
		return &Ledger{}, err
	}

	ledger := &Ledger{Attempted: len(videos) + len(subtitles)}
	r.log.Info("reorganize started",
		"media_dir", t.MediaDir,
		"mode", t.Mode.String(),
		"videos", len(videos),
		"subtitles", len(subtitles))

	byStem := make(map[string][]string)
	for _, s := range subtitles {
		stem := release.Stem(s)
		byStem[stem] = append(byStem[stem], s)
	}
	done := make(map[string]bool, len(subtitles))

	for i, video := range videos {
		if err := ctx.Err(); err != nil {
			r.abandon(ledger, slices.Concat(videos[i:], pending(subtitles, done)), err)
			return ledger, err
		}

		dest, seasonDir, base, err := r.destination(video, t)
		if err != nil {
			r.log.Warn("video skipped", "path", video, "error", err)
			ledger.fail(video, err)
			continue
		}
		placeErr := r.place(ledger, video, dest, t)

		for _, sub := range byStem[release.Stem(video)] {
			if done[sub] {
				continue
			}
			done[sub] = true
			if placeErr != nil {
				r.log.Warn("subtitle skipped, video not placed", "path", sub, "video", video)
				ledger.fail(sub, placeErr)
				continue
			}
			_ = r.place(ledger, sub, subtitlePath(seasonDir, base, sub), t)
		}
	}

	for _, sub := range subtitles {
		if done[sub] {
			continue
		}
		if err := ctx.Err(); err != nil {
			r.abandon(ledger, pending(subtitles, done), err)
			return ledger, err
		}
		done[sub] = true

		_, seasonDir, base, err := r.destination(sub, t)
		if err != nil {
			r.log.Warn("subtitle skipped", "path", sub, "error", err)
			ledger.fail(sub, err)
			continue
		}
		_ = r.place(ledger, sub, subtitlePath(seasonDir, base, sub), t)
	}

	r.cleanup(ledger, src, t)

	r.log.Info("reorganize complete",
		"attempted", ledger.Attempted,
		"succeeded", ledger.Succeeded,
		"failed", ledger.Failed,
		"moved", ledger.Moved,
		"source_deleted", ledger.SourceDeleted,
		"duration_ms", time.Since(start).Milliseconds())
	return ledger, nil
}

// destination computes the canonical path of an episode file.
func (r *Reorganizer) destination(path string, t Target) (dest, seasonDir, base string, err error) {
	key, ok := release.ParseEpisode(filepath.Base(path))
	if !ok {
		return "", "", "", ErrNoEpisodeMatch
	}
	ep, ok := t.Episodes[key]
	if !ok {
		return "", "", "", fmt.Errorf("%w: %s", ErrNoEpisodeMetadata, key)
	}

	base = r.renamer.EpisodeBase(t.ShowTitle, key, ep.DisplayName())
	seasonDir = filepath.Join(t.MediaDir, r.renamer.SeasonDir(key.Season))
	dest = filepath.Join(seasonDir, base+filepath.Ext(path))
	if err := ValidatePath(dest, t.MediaDir); err != nil {
		return "", "", "", err
	}
	return dest, seasonDir, base, nil
}

func subtitlePath(seasonDir, base, sub string) string {
	return filepath.Join(seasonDir, base+release.LanguageSuffix(subtitleLanguage(sub))+filepath.Ext(sub))
}

// subtitleLanguage honors an explicit trailing language tag ("x.zh.srt")
// before falling back to keyword detection.
func subtitleLanguage(path string) string {
	tag := strings.TrimPrefix(filepath.Ext(release.Stem(path)), ".")
	switch tag {
	case release.SubtitleChinese, release.SubtitleEnglish, release.SubtitleJapanese:
		return tag
	}
	return release.DetectSubtitleLanguage(filepath.Base(path))
}

// place copies or moves one file and records the outcome.
func (r *Reorganizer) place(ledger *Ledger, src, dest string, t Target) error {
	if filepath.Clean(src) == filepath.Clean(dest) {
		r.log.Debug("already named", "path", dest)
		ledger.succeed(dest, false)
		return nil
	}

	var err error
	if t.Mode == ModeCopy {
		_, err = CopyFile(src, dest)
	} else {
		err = MoveFile(src, dest)
	}
	if err != nil {
		r.log.Warn("place failed", "src", src, "dest", dest, "error", err)
		ledger.fail(src, err)
		return err
	}
	r.log.Debug("placed", "src", src, "dest", dest, "mode", t.Mode.String())
	ledger.succeed(dest, true)
	return nil
}

func (r *Reorganizer) abandon(ledger *Ledger, paths []string, err error) {
	for _, p := range paths {
		ledger.fail(p, err)
	}
}

// cleanup removes the source directory when the ledger is complete. The
// source is kept when it contains the media directory.
func (r *Reorganizer) cleanup(ledger *Ledger, src Source, t Target) {
	if !t.DeleteSource || src.Root == "" || ledger.Attempted == 0 {
		return
	}
	if !ledger.Complete() {
		r.log.Warn("source kept, not every file was placed",
			"root", src.Root,
			"succeeded", ledger.Succeeded,
			"attempted", ledger.Attempted,
			"failed", ledger.Failed)
		return
	}
	if ValidatePath(t.MediaDir, src.Root) == nil {
		r.log.Warn("source kept, it contains the media directory", "root", src.Root)
		return
	}
	if err := os.RemoveAll(src.Root); err != nil {
		r.log.Warn("delete source failed", "root", src.Root, "error", err)
		return
	}
	ledger.SourceDeleted = true
	r.log.Info("source deleted", "root", src.Root)
}

// discover lists videos and subtitles of a source in lexical order.
func discover(src Source) (videos, subtitles []string, err error) {
	add := func(path string) {
		switch {
		case release.IsVideoFile(path):
			videos = append(videos, path)
		case release.IsSubtitleFile(path):
			subtitles = append(subtitles, path)
		}
	}

	if len(src.Files) > 0 {
		for _, f := range src.Files {
			add(f)
		}
	} else {
		err = filepath.WalkDir(src.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("walk directory: %w", err)
		}
	}

	slices.Sort(videos)
	slices.Sort(subtitles)
	return videos, subtitles, nil
}

func pending(subtitles []string, done map[string]bool) []string {
	var out []string
	for _, s := range subtitles {
		if !done[s] {
			out = append(out, s)
		}
	}
	return out
}
