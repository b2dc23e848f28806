package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractShowName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"Show.Name.S01E02.1080p", "Show.Name"},
		{"Show Name (2020) S01E02", "Show Name"},
		{"Show_Name_S01E02", "Show_Name"},
		{"夫妇交欢 S01E01", "夫妇交欢"},
		{"The.Wire.3x04", "Wire"},
		{"01.Pilot.Episode", "Pilot"},
		{"S01E01.mkv", "S01E01"},
		{"x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractShowName(tt.filename))
		})
	}
}
