// Command collect-titles walks media directories and records every video and
// subtitle filename with its parse, for building filename parser test suites.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/vmunix/arrnfo/pkg/release"
)

func main() {
	output := flag.String("output", "testdata/filenames.csv", "Output CSV file")
	unparsed := flag.Bool("unparsed", false, "Only keep names without a season/episode")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: collect-titles [-output file] [-unparsed] <dir>...")
		os.Exit(2)
	}
	if err := run(flag.Args(), *output, *unparsed); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(roots []string, output string, unparsedOnly bool) error {
	// Dedupe by name
	seen := make(map[string]bool)
	var results []record

	for _, root := range roots {
		fmt.Printf("Scanning %s...\n", root)
		before := len(results)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				fmt.Printf("  %s: %v\n", path, err)
				return nil
			}
			if d.IsDir() {
				return nil
			}
			name := d.Name()
			if seen[name] || (!release.IsVideoFile(name) && !release.IsSubtitleFile(name)) {
				return nil
			}
			r := collect(name)
			if unparsedOnly && r.Season > 0 {
				return nil
			}
			seen[name] = true
			results = append(results, r)
			return nil
		})
		if err != nil {
			return fmt.Errorf("walk %s: %w", root, err)
		}
		fmt.Printf("  %d new names\n", len(results)-before)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	fmt.Printf("\nTotal unique names: %d\n", len(results))

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	if err := writeCSV(output, results); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	fmt.Printf("Written to %s\n", output)
	return nil
}

type record struct {
	Name     string
	Show     string
	Season   int
	Episode  int
	Language string
}

func collect(name string) record {
	r := record{Name: name, Show: release.ExtractShowName(release.Stem(name))}
	if key, ok := release.ParseEpisode(name); ok {
		r.Season, r.Episode = key.Season, key.Episode
	}
	if release.IsSubtitleFile(name) {
		r.Language = release.DetectSubtitleLanguage(release.Stem(name))
	}
	return r
}

func writeCSV(path string, records []record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"name", "show", "season", "episode", "language"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write([]string{
			r.Name,
			r.Show,
			strconv.Itoa(r.Season),
			strconv.Itoa(r.Episode),
			r.Language,
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
