package matchlog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/pkg/logger"
)

// maxFetchBytes bounds a downloaded export.
const maxFetchBytes = 32 << 20

// Source loads the full match log.
type Source interface {
	Load(ctx context.Context) ([]model.Match, Report, error)
	String() string
}

// NewSource selects a source by location: http(s) URLs, sqlite://path?table=name,
// or a file path whose extension picks the parser.
func NewSource(location string, opts ...Option) (Source, error) {
	switch {
	case location == "":
		return nil, fmt.Errorf("%w: empty location", ErrInvalidSource)
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewURLSource(location, opts...)
	case strings.HasPrefix(location, "sqlite://"):
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
		}
		return NewSQLiteSource(u.Host+u.Path, u.Query().Get("table"), opts...)
	default:
		return NewFileSource(location, opts...)
	}
}

// FileSource reads a local CSV or XLSX file on every load.
type FileSource struct {
	path   string
	parser Parser
	opts   options
}

// NewFileSource validates the extension up front.
func NewFileSource(p string, opts ...Option) (*FileSource, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	parser, err := NewFactory(o.dateLayout).GetParser(p)
	if err != nil {
		return nil, err
	}
	return &FileSource{path: p, parser: parser, opts: o}, nil
}

func (s *FileSource) String() string { return s.path }

// Load reads and parses the file.
func (s *FileSource) Load(ctx context.Context) ([]model.Match, Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, Report{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return finish(ctx, s.opts.logger, s.String(), s.parser, data)
}

// URLSource downloads a CSV (or XLSX, by URL path extension) export.
type URLSource struct {
	url    string
	parser Parser
	opts   options
}

// NewURLSource creates a URL source. The parser defaults to CSV, which is
// what spreadsheet export endpoints serve.
func NewURLSource(rawURL string, opts ...Option) (*URLSource, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSource, rawURL)
	}
	f := NewFactory(o.dateLayout)
	parser, err := f.GetParser(u.Path)
	if err != nil {
		parser = NewCSVParser(o.dateLayout)
	}
	return &URLSource{url: rawURL, parser: parser, opts: o}, nil
}

func (s *URLSource) String() string { return s.url }

// Load performs one GET. Any non-2xx status is ErrFetch.
func (s *URLSource) Load(ctx context.Context) ([]model.Match, Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, Report{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	resp, err := s.opts.client.Do(req)
	if err != nil {
		return nil, Report{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Report{}, fmt.Errorf("%w: %s returned %d", ErrFetch, s.url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, Report{}, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	return finish(ctx, s.opts.logger, s.String(), s.parser, data)
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads a table whose columns follow the sheet headers.
type SQLiteSource struct {
	path  string
	table string
	dec   decoder
	opts  options
}

// NewSQLiteSource creates a source reading table from the database at p.
func NewSQLiteSource(p, table string, opts ...Option) (*SQLiteSource, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if p == "" {
		return nil, fmt.Errorf("%w: empty sqlite path", ErrInvalidSource)
	}
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: table %q", ErrInvalidSource, table)
	}
	return &SQLiteSource{path: p, table: table, dec: decoder{dateLayout: o.dateLayout}, opts: o}, nil
}

func (s *SQLiteSource) String() string { return "sqlite://" + s.path + "?table=" + s.table }

// Load opens the database read-only, selects every row and decodes it like a sheet.
func (s *SQLiteSource) Load(ctx context.Context) ([]model.Match, Report, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, Report{}, fmt.Errorf("open database: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+s.path+"?mode=ro")
	if err != nil {
		return nil, Report{}, fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, `SELECT * FROM "`+s.table+`"`)
	if err != nil {
		return nil, Report{}, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer func() { _ = rows.Close() }()

	header, err := rows.Columns()
	if err != nil {
		return nil, Report{}, fmt.Errorf("columns %s: %w", s.table, err)
	}
	records := [][]string{header}
	for rows.Next() {
		vals := make([]any, len(header))
		ptrs := make([]any, len(header))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, Report{}, fmt.Errorf("scan %s: %w", s.table, err)
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = sqlText(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, Report{}, fmt.Errorf("iterate %s: %w", s.table, err)
	}

	matches, rep, err := s.dec.decode(records)
	if err != nil {
		return nil, Report{}, err
	}
	logLoad(ctx, s.opts.logger, s.String(), rep)
	return matches, rep, nil
}

func sqlText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	case time.Time:
		// DATE columns come back as time values.
		return t.UTC().Format(time.DateOnly)
	default:
		return fmt.Sprint(t)
	}
}

func finish(ctx context.Context, l logger.Logger, name string, p Parser, data []byte) ([]model.Match, Report, error) {
	matches, rep, err := p.Parse(data)
	if err != nil {
		return nil, Report{}, fmt.Errorf("parse %s: %w", path.Base(name), err)
	}
	logLoad(ctx, l, name, rep)
	return matches, rep, nil
}

func logLoad(ctx context.Context, l logger.Logger, name string, rep Report) {
	l.Debug(ctx, "match log loaded",
		logger.String("source", name),
		logger.Int("rows", rep.Rows),
		logger.Int("dropped", rep.Dropped),
		logger.Int("coerced", rep.Coerced),
	)
}
