package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrnfo/internal/pipeline"
	"github.com/vmunix/arrnfo/internal/tmdb"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [flags] [query]",
	Short: "Scrape metadata for one title into NFO files and artwork",
	Long: `Resolve a title against TMDB and write its NFO, episode NFOs and artwork
under {output}/TV or {output}/Movies.

Examples:
  arrnfo scrape "Breaking Bad"
  arrnfo scrape --type movie --output /media "Spirited Away"
  arrnfo scrape --tmdb-id 1399 --type tv
  arrnfo scrape --imdb-id tt0903747 --translate --json`,
	RunE: runScrapeCmd,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	addScrapeFlags(scrapeCmd)
}

func addScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", "", "Media type: movie or tv (default: try tv, then movie)")
	cmd.Flags().Int64("tmdb-id", 0, "TMDB id, skips searching")
	cmd.Flags().String("imdb-id", "", "IMDb id (tt...), skips searching")
	cmd.Flags().StringP("output", "o", ".", "Output directory")
	cmd.Flags().String("lang", "", "Metadata language (default: config)")
	addPipelineFlags(cmd)
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("translate", false, "Translate missing text with the configured LLM")
	cmd.Flags().Bool("translate-tags", false, "Translate keyword tags with the configured LLM")
	cmd.Flags().Bool("aid-search", false, "Fall back to web search when catalog search finds nothing")
	cmd.Flags().Bool("skip-images", false, "Do not download artwork")
	cmd.Flags().Bool("extra-images", false, "Also download extra posters, backdrops and logos")
}

func readPipelineFlags(cmd *cobra.Command) pipelineFlags {
	var f pipelineFlags
	f.translate, _ = cmd.Flags().GetBool("translate")
	f.translateTags, _ = cmd.Flags().GetBool("translate-tags")
	f.aidSearch, _ = cmd.Flags().GetBool("aid-search")
	f.skipImages, _ = cmd.Flags().GetBool("skip-images")
	f.extraImages, _ = cmd.Flags().GetBool("extra-images")
	return f
}

// ScrapeReport is the outcome of one scrape.
type ScrapeReport struct {
	Status       string   `json:"status"`
	Title        string   `json:"title"`
	Year         int      `json:"year,omitempty"`
	MediaType    string   `json:"media_type"`
	TMDBID       int64    `json:"tmdb_id"`
	IMDBID       string   `json:"imdb_id,omitempty"`
	MatchSource  string   `json:"match_source,omitempty"`
	Confidence   string   `json:"confidence,omitempty"`
	MediaDir     string   `json:"media_dir"`
	NFO          string   `json:"nfo"`
	EpisodeNFOs  int      `json:"episode_nfos,omitempty"`
	Images       []string `json:"images,omitempty"`
	ImagesFailed []string `json:"images_failed,omitempty"`
}

func newScrapeReport(s pipeline.State) ScrapeReport {
	r := ScrapeReport{
		Status:      s.Output.Status,
		Title:       s.Record.DisplayTitle(),
		Year:        s.Record.Year,
		MediaType:   string(s.Record.MediaType),
		TMDBID:      s.Record.TMDBID,
		IMDBID:      s.Record.IMDBID,
		MediaDir:    s.Output.MediaDir,
		NFO:         s.Output.NFOPath,
		EpisodeNFOs: s.Output.EpisodeNFOs,
	}
	if s.Candidate != nil {
		r.MatchSource = string(s.Candidate.Source)
		r.Confidence = s.Candidate.Confidence.String()
	}
	if s.Artwork != nil && s.Artwork.Result != nil {
		r.Images = s.Artwork.Result.Written
		r.ImagesFailed = s.Artwork.Result.Failed
	}
	return r
}

func printScrapeReport(w io.Writer, r ScrapeReport) {
	title := r.Title
	if r.Year > 0 {
		title = fmt.Sprintf("%s (%d)", r.Title, r.Year)
	}
	fmt.Fprintf(w, "%-10s %s\n", "Title:", title)
	fmt.Fprintf(w, "%-10s %s\n", "Type:", r.MediaType)
	fmt.Fprintf(w, "%-10s %d\n", "TMDB:", r.TMDBID)
	if r.IMDBID != "" {
		fmt.Fprintf(w, "%-10s %s\n", "IMDb:", r.IMDBID)
	}
	if r.MatchSource != "" {
		fmt.Fprintf(w, "%-10s %s (%s)\n", "Match:", r.MatchSource, r.Confidence)
	}
	fmt.Fprintf(w, "%-10s %s\n", "Output:", r.MediaDir)
	fmt.Fprintf(w, "%-10s %s\n", "NFO:", r.NFO)
	if r.EpisodeNFOs > 0 {
		fmt.Fprintf(w, "%-10s %d\n", "Episodes:", r.EpisodeNFOs)
	}
	if len(r.Images) > 0 || len(r.ImagesFailed) > 0 {
		fmt.Fprintf(w, "%-10s %d written, %d failed\n", "Images:", len(r.Images), len(r.ImagesFailed))
	}
}

// scrapeInput builds the pipeline input from the command line.
func scrapeInput(cmd *cobra.Command, args []string, base pipeline.Input) (pipeline.Input, error) {
	typ, _ := cmd.Flags().GetString("type")
	tmdbID, _ := cmd.Flags().GetInt64("tmdb-id")
	imdbID, _ := cmd.Flags().GetString("imdb-id")
	output, _ := cmd.Flags().GetString("output")

	in := base
	in.Query = strings.TrimSpace(strings.Join(args, " "))
	in.TMDBID = tmdbID
	in.IMDBID = imdbID
	in.OutputDir = output

	if typ != "" {
		mt, err := tmdb.ParseMediaType(typ)
		if err != nil {
			return pipeline.Input{}, err
		}
		in.MediaType = mt
	}
	if in.Query == "" && in.TMDBID == 0 && in.IMDBID == "" {
		return pipeline.Input{}, errors.New("a query, --tmdb-id or --imdb-id is required")
	}
	if in.IMDBID != "" && !strings.HasPrefix(in.IMDBID, "tt") {
		return pipeline.Input{}, fmt.Errorf("invalid imdb id %q: must start with tt", in.IMDBID)
	}
	return in, nil
}

func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lang, _ := cmd.Flags().GetString("lang")
	if err := overrideLanguage(cfg, lang); err != nil {
		return err
	}
	base, err := baseInput(cfg, readPipelineFlags(cmd))
	if err != nil {
		return err
	}
	in, err := scrapeInput(cmd, args, base)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	state, err := a.pipeline.Run(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	report := newScrapeReport(state)
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), report)
	}
	printScrapeReport(cmd.OutOrStdout(), report)
	return nil
}
