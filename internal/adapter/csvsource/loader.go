// Package csvsource reads the delimited weather recordings of a directory as
// one time-ordered observation table.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/catalog"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/domain"
	"golang.org/x/text/encoding/charmap"
)

// ctxCheckInterval is how many rows are read between cancellation checks.
const ctxCheckInterval = 4096

// Loader reads every file of a directory in filename order. Columns are
// matched to the catalog by position; header names are not trusted.
type Loader struct {
	dir     string
	latin1  bool
	catalog catalog.Catalog
	logger  *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithEncoding selects the file encoding: "iso-8859-1" (the default, also
// "latin1") or "utf-8".
func WithEncoding(name string) Option {
	return func(l *Loader) {
		switch strings.ToLower(name) {
		case "utf-8", "utf8":
			l.latin1 = false
		default:
			l.latin1 = true
		}
	}
}

// WithCatalog overrides the column schema.
func WithCatalog(c catalog.Catalog) Option {
	return func(l *Loader) { l.catalog = c }
}

// WithLogger sets the logger used for per-file progress.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New creates a Loader for dir.
func New(dir string, opts ...Option) *Loader {
	l := &Loader{
		dir:     dir,
		latin1:  true,
		catalog: catalog.Default,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Files returns the source files in sorted order. Directories and dotfiles
// are skipped.
func (l *Loader) Files() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(l.dir, e.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files in %s", l.dir)
	}
	return files, nil
}

// Each streams every row of every file to fn, in file order and then row
// order. It stops at the first error returned by fn.
func (l *Loader) Each(ctx context.Context, fn func(domain.Observation) error) error {
	files, err := l.Files()
	if err != nil {
		return err
	}
	total := 0
	for _, path := range files {
		n, err := l.readFile(ctx, path, fn)
		if err != nil {
			return err
		}
		total += n
		l.logger.Debug("source file read", "file", filepath.Base(path), "rows", n)
	}
	l.logger.Info("source table read", "files", len(files), "rows", total)
	return nil
}

// Load materializes the whole table.
func (l *Loader) Load(ctx context.Context) ([]domain.Observation, error) {
	var rows []domain.Observation
	err := l.Each(ctx, func(obs domain.Observation) error {
		rows = append(rows, obs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (l *Loader) open(path string) (io.ReadCloser, io.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open source file: %w", err)
	}
	if !l.latin1 {
		return f, f, nil
	}
	return f, charmap.ISO8859_1.NewDecoder().Reader(f), nil
}

func (l *Loader) readFile(ctx context.Context, path string, fn func(domain.Observation) error) (int, error) {
	f, r, err := l.open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	name := filepath.Base(path)
	width := 1 + l.catalog.Len()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = width
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%s: empty file", name)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: read header: %w", name, err)
	}
	l.checkHeader(name, header)

	keys := l.catalog.Keys()
	rows := 0
	for {
		if rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return rows, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, fmt.Errorf("%s: %w", name, err)
		}
		line, _ := cr.FieldPos(0)

		obs, err := parseRecord(rec, keys)
		if err != nil {
			return rows, fmt.Errorf("%s:%d: %w", name, line, err)
		}
		if err := fn(obs); err != nil {
			return rows, err
		}
		rows++
	}
}

// checkHeader logs columns whose names differ from the catalog. The
// positional mapping is applied regardless.
func (l *Loader) checkHeader(name string, header []string) {
	want := l.catalog.Header()
	for i, got := range header {
		if strings.TrimSpace(got) != want[i] {
			l.logger.Debug("source column renamed", "file", name, "position", i, "from", got, "to", want[i])
		}
	}
}

func parseRecord(rec []string, keys []string) (domain.Observation, error) {
	ts := strings.TrimSpace(rec[0])
	if ts == "" {
		return domain.Observation{}, errors.New("empty timestamp")
	}
	values := make([]float64, len(keys))
	for i, key := range keys {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
		if err != nil {
			return domain.Observation{}, fmt.Errorf("column %q: %w", key, err)
		}
		values[i] = v
	}
	return domain.Observation{Timestamp: ts, Values: values}, nil
}
