package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrnfo/pkg/release"
)

// ParseResult is what the filename parser makes of one name.
type ParseResult struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Show       string `json:"show"`
	SearchName string `json:"search_name"`
	Episode    string `json:"episode,omitempty"`
	Season     int    `json:"season,omitempty"`
	EpisodeNum int    `json:"episode_number,omitempty"`
	Anchored   bool   `json:"anchored"`
	Subtitle   string `json:"subtitle_language,omitempty"`

	MatchTitle string  `json:"match_title,omitempty"`
	MatchScore float64 `json:"match_score,omitempty"`
	Confidence string  `json:"confidence,omitempty"`
}

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <filename>",
	Short: "Show how a filename is parsed (local, no network)",
	Long: `Parse episode filenames the way batch does: season/episode, show name,
search query and subtitle language.

Examples:
  arrnfo parse "Breaking.Bad.S01E02.1080p.BluRay.x264.mkv"
  arrnfo parse --title "Breaking Bad" "breaking_bad_1x02.zh.srt"
  arrnfo parse --file names.txt --json`,
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP("file", "f", "", "Read filenames from file (one per line)")
	parseCmd.Flags().StringSlice("title", nil, "Grade the parsed show name against these titles")
}

func parseName(name string, titles []string) ParseResult {
	stem := release.Stem(name)
	show := release.ExtractShowName(stem)
	r := ParseResult{
		Name:       name,
		Kind:       "other",
		Show:       show,
		SearchName: release.CleanSearchName(show),
	}
	switch {
	case release.IsVideoFile(name):
		r.Kind = "video"
	case release.IsSubtitleFile(name):
		r.Kind = "subtitle"
		r.Subtitle = release.DetectSubtitleLanguage(stem)
	}
	if key, ok := release.ParseEpisode(name); ok {
		r.Episode = key.String()
		r.Season = key.Season
		r.EpisodeNum = key.Episode
		_, r.Anchored = release.ParseEpisodeStrict(name)
	}
	if len(titles) > 0 {
		m := release.MatchTitle(r.SearchName, titles...)
		r.MatchTitle = m.Title
		r.MatchScore = m.Score
		r.Confidence = m.Confidence.String()
	}
	return r
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	inputFile, _ := cmd.Flags().GetString("file")
	titles, _ := cmd.Flags().GetStringSlice("title")

	var names []string
	switch {
	case inputFile != "":
		var err error
		names, err = readNameFile(inputFile)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
	case len(args) > 0:
		names = args
	default:
		return fmt.Errorf("usage: arrnfo parse <filename> or arrnfo parse --file <filename>")
	}

	results := make([]ParseResult, 0, len(names))
	for _, name := range names {
		results = append(results, parseName(name, titles))
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, results)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printParseResult(out, r)
	}
	return nil
}

func printParseResult(w io.Writer, r ParseResult) {
	fmt.Fprintf(w, "%-12s %s\n", "Name:", r.Name)
	fmt.Fprintf(w, "%-12s %s\n", "Kind:", r.Kind)
	fmt.Fprintf(w, "%-12s %s\n", "Show:", r.Show)
	fmt.Fprintf(w, "%-12s %s\n", "Search:", r.SearchName)
	if r.Episode != "" {
		anchored := ""
		if r.Anchored {
			anchored = " (anchored)"
		}
		fmt.Fprintf(w, "%-12s %s%s\n", "Episode:", r.Episode, anchored)
	} else {
		fmt.Fprintf(w, "%-12s -\n", "Episode:")
	}
	if r.Kind == "subtitle" {
		lang := r.Subtitle
		if lang == "" {
			lang = "unknown"
		}
		fmt.Fprintf(w, "%-12s %s\n", "Subtitle:", lang)
	}
	if r.Confidence != "" {
		fmt.Fprintf(w, "%-12s %s %.2f (%s)\n", "Match:", r.MatchTitle, r.MatchScore, r.Confidence)
	}
}

// readNameFile reads filenames from a file, one per line. Blank lines and
// lines starting with # are skipped.
func readNameFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			names = append(names, line)
		}
	}
	return names, scanner.Err()
}
