package render

import (
	"encoding/json"

	"github.com/matzehuels/roadmap/pkg/board"
)

// JSON encodes l as indented JSON with a trailing newline.
func JSON(l board.Layout) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
