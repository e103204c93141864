package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bndr/gotabulate"

	docerrors "github.com/toyz/docblock/internal/errors"
	"github.com/toyz/docblock/internal/source"
	"github.com/toyz/docblock/pkg/annotation"
)

// locator returns the declaration a target was read from.
type locator func(target string) (source.Declaration, bool)

// report is the JSON document printed by --format json.
type report struct {
	Collections []*annotation.Collection `json:"collections"`
	Errors      []reportError            `json:"errors,omitempty"`
}

type reportError struct {
	Message  string `json:"message"`
	Code     string `json:"code"`
	Location string `json:"location,omitempty"`
}

func render(w io.Writer, format string, cols []*annotation.Collection, locate locator, failure error) error {
	switch format {
	case "json":
		return renderJSON(w, cols, failure)
	case "table":
		return renderTable(w, cols, locate)
	default:
		return renderText(w, cols, locate)
	}
}

func renderText(w io.Writer, cols []*annotation.Collection, locate locator) error {
	for _, col := range cols {
		header := col.Target()
		if loc := location(locate, col.Target()); loc != "" {
			header += "  (" + loc + ")"
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
		if col.Count() == 0 {
			fmt.Fprintln(w, "  (no annotations)")
			continue
		}
		for a := range col.All() {
			fmt.Fprintf(w, "  %s\n", a)
		}
	}
	return nil
}

func renderTable(w io.Writer, cols []*annotation.Collection, locate locator) error {
	var rows [][]string
	for _, col := range cols {
		loc := location(locate, col.Target())
		for a := range col.All() {
			rows = append(rows, []string{col.Target(), a.Type(), a.String(), loc})
		}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no annotations")
		return err
	}

	t := gotabulate.Create(rows)
	t.SetHeaders([]string{"Target", "Type", "Annotation", "Location"})
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(60)
	_, err := io.WriteString(w, t.Render("grid"))
	return err
}

func renderJSON(w io.Writer, cols []*annotation.Collection, failure error) error {
	out := report{Collections: cols}
	if out.Collections == nil {
		out.Collections = []*annotation.Collection{}
	}
	for _, e := range flatten(failure) {
		re := reportError{Message: e.Error(), Code: e.ErrorCode().String()}
		if !e.Location().IsEmpty() {
			re.Location = e.Location().String()
		}
		out.Errors = append(out.Errors, re)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func flatten(err error) []docerrors.DocblockError {
	if err == nil {
		return nil
	}
	all := docerrors.NewMultipleErrors()
	all.Merge(err)
	return all.Errors
}

func location(locate locator, target string) string {
	if locate == nil {
		return ""
	}
	d, ok := locate(target)
	if !ok || d.File == "" {
		return ""
	}
	if d.Line == 0 {
		return d.File
	}
	return fmt.Sprintf("%s:%d", d.File, d.Line)
}

// filterType keeps the annotations of typ.
func filterType(col *annotation.Collection, typ string) *annotation.Collection {
	out := annotation.NewCollection(col.Target())
	for _, a := range col.Named(typ) {
		out.Add(a)
	}
	return out
}

func didYouMean(suggestions []string) []string {
	if len(suggestions) == 0 {
		return nil
	}
	return []string{"did you mean " + strings.Join(suggestions, ", ") + "?"}
}
