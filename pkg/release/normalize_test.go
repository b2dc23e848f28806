package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"The Matrix", "matrix"},
		{"A Beautiful Mind", "beautiful mind"},
		{"An American Werewolf", "american werewolf"},
		{"Fast & Furious", "fast and furious"},
		{"Léon: The Professional", "leon professional"},
		{"Spider-Man: No Way Home", "spider man no way home"},
		{"  Extra   Spaces  ", "extra spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTitle(tt.input))
		})
	}
}

func TestCleanSearchName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"夫妇交欢 (2023)", "夫妇交欢"},
		{"Show.1080p.x264.WEB-DL", "Show"},
		{"[SubGroup] Some Show [1080p]", "Some Show"},
		{"【字幕组】某剧集 2021", "某剧集"},
		{"Some_Show_2019_720p_HDTV", "Some Show"},
		{"The.Expanse.S01.2160p.BluRay.x265", "The Expanse S01"},
		{"Show.HDTV.BluRay.h264", "Show"},
		{"Bdrip.Bandits", "Bandits"},
		{"Full Width（２０２０）", "Full Width"},
		{"1923", "1923"},
		{"  Dark  ", "Dark"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanSearchName(tt.input))
		})
	}
}

func TestCleanSearchName_KeepsWordsContainingSourceTokens(t *testing.T) {
	assert.Equal(t, "Abducted", CleanSearchName("Abducted"))
	assert.Equal(t, "Webster", CleanSearchName("Webster"))
}
