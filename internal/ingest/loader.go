package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/textcore/internal/engine"
	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/logging"
)

// Errors returned by the loader.
var (
	ErrNotDirectory = errors.New("not a directory")
	ErrBinaryFile   = errors.New("binary file")
	ErrFileTooLarge = errors.New("file too large")
)

// DefaultMaxFileSize bounds the size of a loaded file.
const DefaultMaxFileSize = 4 << 20

// binarySniffLen is how many leading bytes are checked for NUL.
const binarySniffLen = 8000

// Options configures loading and watching.
type Options struct {
	// Ignore excludes paths. Nil means DefaultIgnore.
	Ignore *Ignore

	// IncludeHidden loads dot files and directories.
	IncludeHidden bool

	// MaxFileSize skips larger files. Zero means DefaultMaxFileSize.
	MaxFileSize int64

	// Workers bounds concurrent file reads. Zero means 8.
	Workers int

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Ignore == nil {
		o.Ignore = NewIgnore(DefaultIgnore...)
	}
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.Workers <= 0 {
		o.Workers = 8
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// excluded reports whether rel or any of its parent directories is
// excluded.
func (o Options) excluded(rel string, isDir bool) bool {
	parts := strings.Split(rel, "/")
	for i := range parts {
		dir := i < len(parts)-1 || isDir
		if !o.IncludeHidden && strings.HasPrefix(parts[i], ".") {
			return true
		}
		if o.Ignore.Match(strings.Join(parts[:i+1], "/"), dir) {
			return true
		}
	}
	return false
}

// Skipped is a file LoadDir did not load.
type Skipped struct {
	Path   string
	Reason error
}

// Result summarizes a LoadDir call.
type Result struct {
	Loaded  []string
	Skipped []Skipped
}

// file is a decoded file ready to become a buffer.
type file struct {
	rel     string
	content string
	enc     buffer.Encoding
}

// LoadDir creates a file buffer for every text file under root. Paths are
// relative to root with forward slashes. Binary and oversized files are
// skipped and reported in the result; a file that already has a buffer
// fails the load.
func LoadDir(ctx context.Context, e *engine.Engine, root string, opts Options) (Result, error) {
	opts = opts.withDefaults()

	info, err := os.Stat(root)
	if err != nil {
		return Result{}, err
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	var rels []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := relPath(root, p)
		if err != nil {
			return err
		}
		if opts.excluded(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			rels = append(rels, rel)
		}
		return ctx.Err()
	})
	if err != nil {
		return Result{}, err
	}

	files := make([]*file, len(rels))
	skipped := make([]error, len(rels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, rel := range rels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := readFile(filepath.Join(root, filepath.FromSlash(rel)), opts.MaxFileSize)
			if err != nil {
				if errors.Is(err, ErrBinaryFile) || errors.Is(err, ErrFileTooLarge) {
					skipped[i] = err
					return nil
				}
				return fmt.Errorf("read %s: %w", rel, err)
			}
			f.rel = rel
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var res Result
	var errs []error
	for i, f := range files {
		if f == nil {
			if skipped[i] != nil {
				res.Skipped = append(res.Skipped, Skipped{Path: rels[i], Reason: skipped[i]})
			}
			continue
		}
		if _, err := e.CreateFile(f.rel, f.content, buffer.WithEncoding(f.enc)); err != nil {
			errs = append(errs, err)
			continue
		}
		res.Loaded = append(res.Loaded, f.rel)
	}
	sort.Strings(res.Loaded)

	opts.Logger.Info("directory loaded",
		slog.String("root", root),
		slog.Int("files", len(res.Loaded)),
		slog.Int("skipped", len(res.Skipped)))
	return res, errors.Join(errs...)
}

// readFile reads and decodes one file.
func readFile(p string, maxSize int64) (*file, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	if isBinary(data) {
		return nil, ErrBinaryFile
	}
	content, enc, err := buffer.Decode(data)
	if err != nil {
		return nil, err
	}
	return &file{content: content, enc: enc}, nil
}

// isBinary reports a NUL byte in the leading bytes of data. UTF-16 text
// has NULs too, so a UTF-16 byte order mark wins.
func isBinary(data []byte) bool {
	if enc := buffer.DetectEncoding(data); enc == buffer.EncodingUTF16LE || enc == buffer.EncodingUTF16BE {
		return false
	}
	return bytes.IndexByte(data[:min(len(data), binarySniffLen)], 0) >= 0
}

// relPath returns p relative to root with forward slashes.
func relPath(root, p string) (string, error) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") || rel == ".." {
		return "", fmt.Errorf("%s is outside %s", p, root)
	}
	return path.Clean(rel), nil
}
