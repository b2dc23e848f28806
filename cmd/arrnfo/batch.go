package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrnfo/internal/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch [flags] <root>",
	Short: "Scrape and reorganize a folder of shows",
	Long: `Scrape every show under a folder and rename its episodes into
"Show (Year)/Season NN/Show - SxxEyy - Title.ext".

Without --output the folder itself is treated as one show and renamed in
place. With --output every show folder and loose episode group is moved (or
copied with --copy) into {output}/TV. --multi treats each subfolder and each
group of loose episodes as its own show, renamed in place.

Examples:
  arrnfo batch "/downloads/Breaking Bad S01"
  arrnfo batch --tmdb-id 1396 "/downloads/bb"
  arrnfo batch --output /media /downloads
  arrnfo batch --output /media --copy /downloads
  arrnfo batch --multi /downloads/tv`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchCmd,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringP("output", "o", "", "Output library directory (default: rename in place)")
	batchCmd.Flags().Bool("copy", false, "Copy into --output instead of moving")
	batchCmd.Flags().Bool("inplace", false, "Treat the root as one show and rename in place")
	batchCmd.Flags().Bool("multi", false, "Treat every subfolder and loose episode group as a show")
	batchCmd.Flags().Int64("tmdb-id", 0, "TMDB id of the show (in-place only)")
	batchCmd.Flags().Bool("use-local-nfo", false, "Reuse the <tmdbid> of existing NFO files")
	batchCmd.Flags().String("lang", "", "Metadata language (default: config)")
	addPipelineFlags(batchCmd)
	batchCmd.MarkFlagsMutuallyExclusive("inplace", "multi")
	batchCmd.MarkFlagsMutuallyExclusive("output", "multi")
}

// batchFlags are the mode-selecting flags of the batch command.
type batchFlags struct {
	output  string
	copy    bool
	inplace bool
	multi   bool
	tmdbID  int64
}

// resolveMode picks the batch mode. In-place is the default; --output selects
// move, or copy with --copy.
func resolveMode(f batchFlags) (batch.Mode, error) {
	if f.copy && f.output == "" {
		return 0, errors.New("--copy requires --output")
	}
	switch {
	case f.multi:
		if f.tmdbID != 0 {
			return 0, errors.New("--tmdb-id cannot be used with --multi")
		}
		return batch.ModeMulti, nil
	case f.inplace || f.output == "":
		return batch.ModeInPlace, nil
	case f.tmdbID != 0:
		return 0, errors.New("--tmdb-id requires in-place mode: drop --output or add --inplace")
	case f.copy:
		return batch.ModeOutputCopy, nil
	default:
		return batch.ModeOutputMove, nil
	}
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	var f batchFlags
	f.output, _ = cmd.Flags().GetString("output")
	f.copy, _ = cmd.Flags().GetBool("copy")
	f.inplace, _ = cmd.Flags().GetBool("inplace")
	f.multi, _ = cmd.Flags().GetBool("multi")
	f.tmdbID, _ = cmd.Flags().GetInt64("tmdb-id")
	useLocalNFO, _ := cmd.Flags().GetBool("use-local-nfo")
	lang, _ := cmd.Flags().GetString("lang")

	mode, err := resolveMode(f)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := overrideLanguage(cfg, lang); err != nil {
		return err
	}
	base, err := baseInput(cfg, readPipelineFlags(cmd))
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	opts := batch.Options{
		Mode:        mode,
		OutputDir:   f.output,
		TMDBID:      f.tmdbID,
		UseLocalNFO: useLocalNFO,
		Base:        base,
	}
	if mode == batch.ModeInPlace {
		opts.OutputDir = ""
	}

	sum, err := a.batch.Run(cmd.Context(), args[0], opts)
	if err != nil {
		if errors.Is(err, batch.ErrLocked) {
			return fmt.Errorf("%w: another arrnfo batch is running on %s", err, args[0])
		}
		return err
	}

	if err := printSummary(cmd.OutOrStdout(), sum); err != nil {
		return err
	}
	if c := sum.Counts(); c.Failed > 0 {
		return fmt.Errorf("%d of %d units failed", c.Failed, len(sum.Rows))
	}
	return nil
}

// batchJSON is the machine-readable batch report.
type batchJSON struct {
	Mode       string       `json:"mode"`
	Root       string       `json:"root"`
	Rows       []batch.Row  `json:"rows"`
	Counts     batch.Counts `json:"counts"`
	DurationMS int64        `json:"duration_ms"`
}

func printSummary(w io.Writer, sum *batch.Summary) error {
	switch {
	case jsonOutput:
		return printJSON(w, batchJSON{
			Mode:       sum.Mode.String(),
			Root:       sum.Root,
			Rows:       sum.Rows,
			Counts:     sum.Counts(),
			DurationMS: sum.Duration.Milliseconds(),
		})
	case isTerminal(w):
		_, err := fmt.Fprintln(w, sum.RenderTable())
		return err
	default:
		return sum.RenderTSV(w)
	}
}
