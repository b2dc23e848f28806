package omdb

import "strings"

// notAvailable is OMDb's marker for an empty field.
const notAvailable = "N/A"

// Title is the response of a lookup by IMDb ID. List-valued fields are
// comma-joined strings.
type Title struct {
	IMDBID   string `json:"imdbID"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Type     string `json:"Type"`
	Plot     string `json:"Plot"`
	Genre    string `json:"Genre"`
	Director string `json:"Director"`
	Writer   string `json:"Writer"`
	Actors   string `json:"Actors"`
	Country  string `json:"Country"`
	Language string `json:"Language"`
	Runtime  string `json:"Runtime"`
	Rated    string `json:"Rated"`
	Response string `json:"Response"`
	Error    string `json:"Error,omitempty"`
}

// Value returns s, or "" when OMDb reported it as unavailable.
func Value(s string) string {
	s = strings.TrimSpace(s)
	if s == notAvailable {
		return ""
	}
	return s
}

// SplitList splits a comma-joined field, dropping empty and N/A entries.
func SplitList(s string) []string {
	if Value(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := Value(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
