package matchlog

import (
	"net/http"

	"github.com/okian/rally/pkg/logger"
)

const (
	// DefaultTable is the SQLite table read when the source names none.
	DefaultTable = "matches"
	// DefaultDateLayout is the day-first format of the original sheet.
	DefaultDateLayout = "02/01/2006"
)

// Option configures a Source.
type Option func(*options)

type options struct {
	dateLayout string
	client     *http.Client
	logger     logger.Logger
}

func defaultOptions() options {
	return options{
		dateLayout: DefaultDateLayout,
		client:     http.DefaultClient,
		logger:     logger.Nop(),
	}
}

// WithDateLayout sets the Go time layout of the date column.
func WithDateLayout(layout string) Option {
	return func(o *options) {
		if layout != "" {
			o.dateLayout = layout
		}
	}
}

// WithHTTPClient sets the client used by URL sources.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

// WithLogger sets the logger used to report load summaries.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
