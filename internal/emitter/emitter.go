// Package emitter writes rendered OpenAPI documents to stdout or disk.
package emitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/postman2openapi/internal/spec"
)

// ErrExists is returned when the output file exists and Force is not set.
var ErrExists = errors.New("emitter: output file exists")

// Options controls where and how a document is written.
type Options struct {
	OutPath string      // file or directory; empty or "-" writes to Stdout
	Format  spec.Format // yaml (default) or json
	Force   bool        // overwrite an existing file
	DryRun  bool        // render and plan, but don't write
	Stdout  io.Writer   // destination for "-"; defaults to os.Stdout
}

// Result describes the emitted document.
type Result struct {
	Path    string // absolute file path, or "-" for stdout
	Format  spec.Format
	Size    int
	Written bool
}

// Emit renders doc and writes it according to opts. When OutPath names an
// existing directory the file name is derived from the document title.
func Emit(ctx context.Context, doc *openapi3.T, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("emitter: nil document")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format := opts.Format
	if format == "" {
		format = spec.FormatYAML
	}
	data, err := spec.Encode(doc, format)
	if err != nil {
		return nil, err
	}

	out := strings.TrimSpace(opts.OutPath)
	if out == "" || out == "-" {
		res := &Result{Path: "-", Format: format, Size: len(data)}
		if opts.DryRun {
			return res, nil
		}
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write stdout: %w", err)
		}
		res.Written = true
		return res, nil
	}

	abs, err := filepath.Abs(out)
	if err != nil {
		return nil, fmt.Errorf("resolve out path: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() {
		title := ""
		if doc.Info != nil {
			title = doc.Info.Title
		}
		abs = filepath.Join(abs, DefaultFileName(title, format))
	}

	res := &Result{Path: abs, Format: format, Size: len(data)}
	if _, err := os.Stat(abs); err == nil && !opts.Force {
		return nil, fmt.Errorf("%w: %s (use --force to overwrite)", ErrExists, abs)
	}
	if opts.DryRun {
		return res, nil
	}
	if err := writeFile(abs, data); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}

// writeFile writes data atomically via a temp file and rename.
func writeFile(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := p + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(p), err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(p), err)
	}
	return nil
}

// DefaultFileName derives an output file name from a document title, e.g.
// "Users API" -> "users-api.openapi.yaml".
func DefaultFileName(title string, format spec.Format) string {
	base := deriveName(title)
	if base == "" {
		base = "openapi"
	} else {
		base += ".openapi"
	}
	return base + format.Extension()
}

func deriveName(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return ""
	}
	// split on spaces and punctuation, join with dash
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	t = repl.Replace(t)
	b := strings.Builder{}
	for _, r := range t {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(strings.Join(strings.Fields(b.String()), "-"), "-")
}
