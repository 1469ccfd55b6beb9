package surface

import (
	"encoding/json"
	"io"

	"github.com/repocert/repocert/pkg/assess"
)

// JSONRenderer marshals an Assessment to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, a *assess.Assessment) error {
	if err := checkSchema(a); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}
