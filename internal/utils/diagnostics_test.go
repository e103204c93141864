package utils

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	docerrors "github.com/toyz/docblock/internal/errors"
)

func newBufferedDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewDiagnosticSystem(level).SetOutput(&out, &errOut), &out, &errOut
}

func TestDiagnosticLevels(t *testing.T) {
	d, out, errOut := newBufferedDiagnostics(DiagnosticWarn)

	d.Info("hidden")
	d.Verbose("hidden")
	d.Warn("careful %d", 1)
	d.Error("broken")

	assert.Equal(t, "[WARN] careful 1\n", out.String())
	assert.Equal(t, "[ERROR] broken\n", errOut.String())
}

func TestDiagnosticSilent(t *testing.T) {
	d, out, errOut := newBufferedDiagnostics(DiagnosticSilent)
	d.Error("nothing")
	d.Report(errors.New("nothing"))
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestDiagnosticSummaryIsSorted(t *testing.T) {
	d, out, _ := newBufferedDiagnostics(DiagnosticInfo)
	d.Summary("Scan", map[string]interface{}{"targets": 3, "annotations": 7})
	assert.Equal(t, "\nScan\n   annotations: 7\n   targets: 3\n", out.String())
}

func TestDiagnosticIndentedList(t *testing.T) {
	d, out, _ := newBufferedDiagnostics(DiagnosticInfo)
	d.Indent()
	d.List("%s", "@Foo")
	d.Unindent()
	d.Unindent()
	d.List("@Bar")
	assert.Equal(t, "  - @Foo\n- @Bar\n", out.String())
}

func TestDiagnosticReport(t *testing.T) {
	d, _, errOut := newBufferedDiagnostics(DiagnosticVerbose)

	multi := docerrors.NewMultipleErrors()
	multi.Add(docerrors.New(docerrors.ParseErrorCode, "bad annotation").
		WithLocation(docerrors.SourceLocation{File: "a.php", Line: 3}).
		WithContext("target", "A").
		WithSuggestions("close the parenthesis"))
	d.Report(multi)

	assert.Equal(t,
		"[ERROR] a.php:3: bad annotation\n    target: A\n    hint: close the parenthesis\n",
		errOut.String())
}
