package nfo

import (
	"encoding/xml"
	"fmt"
)

// Render serializes a descriptor as an indented UTF-8 XML document.
func Render(d Descriptor) ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render nfo: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	return append(out, '\n'), nil
}
