package converter

import (
	"bytes"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/anstrom/nmapconv/internal/errors"
	"github.com/anstrom/nmapconv/internal/logging"
	"github.com/anstrom/nmapconv/internal/metrics"
	"github.com/anstrom/nmapconv/internal/report"
	"github.com/anstrom/nmapconv/internal/xmltree"
)

// Converter loads nmap XML reports and writes them as JSON documents.
type Converter struct {
	logger   *logging.Logger
	metrics  metrics.Recorder
	now      func() time.Time
	encode   report.EncodeOptions
	fileMode os.FileMode
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger used for conversion events.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithMetrics sets the recorder that receives conversion metrics.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(c *Converter) {
		c.metrics = recorder
	}
}

// WithClock sets the clock used for the converted_at timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

// WithEncodeOptions sets the serialization options.
func WithEncodeOptions(opts report.EncodeOptions) Option {
	return func(c *Converter) {
		c.encode = opts
	}
}

// WithFileMode sets the permission of created JSON files.
func WithFileMode(mode os.FileMode) Option {
	return func(c *Converter) {
		c.fileMode = mode
	}
}

// New creates a Converter. Without options it logs to the default logger,
// records no metrics and writes compact JSON.
func New(opts ...Option) *Converter {
	c := &Converter{
		logger:   logging.Default(),
		now:      time.Now,
		fileMode: report.DefaultFileMode,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result summarises a completed conversion.
type Result struct {
	ID       string
	Source   string
	Dest     string
	Hosts    int
	Ports    int
	Scripts  int
	Duration time.Duration
}

// ConvertFile converts the XML report at xmlPath into a JSON document at jsonPath.
// The destination is only opened once the input has been loaded and parsed.
func (c *Converter) ConvertFile(xmlPath, jsonPath string) (*Result, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := c.logger.WithComponent("converter").WithConversionID(id)

	logger.Debug("Starting conversion", "source", xmlPath, "dest", jsonPath, "pretty", c.encode.Pretty)

	root, err := xmltree.Load(xmlPath)
	if err != nil {
		c.observe(statusFor(err), start)
		logger.FailedConvert("Failed to load report", xmlPath, err)
		return nil, err
	}

	r := Build(root, xmlPath, c.now())

	if err := report.WriteFile(jsonPath, r, c.encode, c.fileMode); err != nil {
		c.observe(metrics.StatusWriteError, start)
		logger.FailedConvert("Failed to write JSON report", xmlPath, err, "dest", jsonPath)
		return nil, err
	}

	hosts, ports, scripts := Count(r)
	res := &Result{
		ID:       id,
		Source:   xmlPath,
		Dest:     jsonPath,
		Hosts:    hosts,
		Ports:    ports,
		Scripts:  scripts,
		Duration: time.Since(start),
	}

	c.observe(metrics.StatusSuccess, start)
	if c.metrics != nil {
		c.metrics.AddReport(hosts, ports, scripts)
	}
	logger.InfoConvert("Conversion completed", xmlPath,
		"dest", jsonPath,
		"hosts", hosts,
		"ports", ports,
		"scripts", scripts,
		"duration", res.Duration)

	return res, nil
}

// Convert converts an XML document held in memory. source is recorded as the
// report's source_file.
func (c *Converter) Convert(data []byte, source string) ([]byte, error) {
	root, err := xmltree.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.ErrParse(source, err)
	}
	return report.Marshal(Build(root, source, c.now()), c.encode)
}

func (c *Converter) observe(status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveConversion(status, time.Since(start))
}

func statusFor(err error) string {
	switch errors.GetCode(err) {
	case errors.CodeFileNotFound:
		return metrics.StatusNotFound
	case errors.CodeWrite:
		return metrics.StatusWriteError
	default:
		return metrics.StatusParseError
	}
}

// Count returns the number of hosts, ports and scripts (host and port level) in r.
func Count(r *report.Report) (hosts, ports, scripts int) {
	hosts = len(r.Hosts)
	for i := range r.Hosts {
		h := &r.Hosts[i]
		ports += len(h.Ports)
		scripts += len(h.Scripts)
		for j := range h.Ports {
			scripts += len(h.Ports[j].Scripts)
		}
	}
	return hosts, ports, scripts
}
