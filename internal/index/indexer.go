package index

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/errgroup"

	"rivernet/internal/crawler"
	"rivernet/internal/datfile"
	"rivernet/internal/message"
	"rivernet/internal/network"
	"rivernet/internal/storage"
)

//go:embed summary.schema.json
var summarySchemaJSON string

var summarySchema = jsonschema.MustCompileString("summary.schema.json", summarySchemaJSON)

// Summary describes one indexed data file.
type Summary struct {
	Path     string `json:"path"`
	Title    string `json:"title,omitempty"`
	Valid    bool   `json:"valid"`
	Units    int    `json:"units"`
	Skipped  int    `json:"skipped"`
	Reaches  int    `json:"reaches"`
	Branches int    `json:"branches"`
	Nodes    int    `json:"nodes"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
	Err      string `json:"error,omitempty"`
}

// Model is a parsed file with the network built from it.
type Model struct {
	File    *datfile.DataFile
	Network *network.Network
}

// Indexer orchestrates parsing many data files and storing the results.
type Indexer struct {
	crawler *crawler.Crawler
	store   storage.ModelStore
	workers int
	netOpts []network.Option
	log     *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithStore saves every parsed model to s.
func WithStore(s storage.ModelStore) Option {
	return func(i *Indexer) { i.store = s }
}

// WithWorkers sets how many files are parsed at once.
func WithWorkers(n int) Option {
	return func(i *Indexer) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithNetworkOptions passes options through to network.Build.
func WithNetworkOptions(opts ...network.Option) Option {
	return func(i *Indexer) { i.netOpts = append(i.netOpts, opts...) }
}

// WithLogger sets the logger for the indexer and the parsers it runs.
func WithLogger(l *slog.Logger) Option {
	return func(i *Indexer) { i.log = l }
}

// NewIndexer creates a new indexer.
func NewIndexer(c *crawler.Crawler, opts ...Option) *Indexer {
	i := &Indexer{crawler: c, workers: 4, log: slog.Default()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Load parses, validates and applies one file, then builds its network.
// A file with no line breaks is returned with its error.
func (i *Indexer) Load(path string) (*Model, error) {
	d, err := datfile.Open(path, datfile.WithLogger(i.log))
	if err != nil {
		if d == nil || !errors.Is(err, datfile.ErrNoLineBreaks) {
			return nil, err
		}
		return &Model{File: d}, err
	}
	d.Validate()
	opts := append([]network.Option{network.WithLogger(i.log)}, i.netOpts...)
	return &Model{File: d, Network: network.Build(d.Apply(), opts...)}, nil
}

// Index parses every data file under root concurrently. Files are
// independent, so one bad file never stops the others; its summary
// carries the error. Models are saved in path order once all are parsed.
func (i *Indexer) Index(ctx context.Context, root string) ([]Summary, error) {
	paths, err := i.crawler.Files(root)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	models := make([]*Model, len(paths))
	summaries := make([]Summary, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for n, path := range paths {
		n, path := n, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := i.Load(path)
			models[n] = m
			summaries[n] = summarize(path, m, err)
			if err != nil {
				i.log.Warn("failed to parse data file", "path", path, "err", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if i.store != nil {
		for _, m := range models {
			if m == nil || m.Network == nil {
				continue
			}
			if err := i.store.SaveModel(ctx, storage.NewModel(m.File, m.Network)); err != nil {
				return summaries, fmt.Errorf("failed to save %s: %w", m.File.Path, err)
			}
		}
	}
	i.log.Info("indexed data files", "root", root, "files", len(paths))
	return summaries, nil
}

func summarize(path string, m *Model, err error) Summary {
	s := Summary{Path: path}
	if err != nil {
		s.Err = err.Error()
	}
	if m == nil {
		return s
	}
	d := m.File
	s.Valid = d.Valid()
	s.Units = len(d.Units())
	s.Skipped = len(d.Skipped())
	if g := d.General(); g != nil {
		s.Title = g.Title
	}
	msgs := d.Messages()
	if m.Network != nil {
		s.Reaches = len(m.Network.Reaches)
		s.Branches = len(m.Network.Branches)
		s.Nodes = len(m.Network.Nodes)
		msgs = message.Group(path, msgs, m.Network.Messages)
	}
	s.Errors = msgs.CountAtLeast(message.Error)
	s.Warnings = msgs.Count(message.Warning)
	return s
}

// SaveSummary writes summaries to a JSON file.
func (i *Indexer) SaveSummary(summaries []Summary, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summaries); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

// LoadSummary reads summaries written by SaveSummary. The file is checked
// against the summary schema before it is decoded.
func (i *Indexer) LoadSummary(path string) ([]Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open summary file: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	if err := summarySchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid summary file %s: %w", path, err)
	}

	var out []Summary
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return out, nil
}
