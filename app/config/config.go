package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CodexConfig is read from config.json inside the data directory. File
// paths are resolved relative to DataDir unless absolute.
type CodexConfig struct {
	InstanceName string `json:"instance_name"`
	DataDir      string `json:"-"`

	CorpusFile string `json:"corpus_file"`
	MasaqFile  string `json:"masaq_file"`
	NotesDir   string `json:"notes_dir"`
	LibraryDir string `json:"library_dir"`
	ResearchDB string `json:"research_db"`

	ReadOnly     bool `json:"read_only"`
	DefaultLimit int  `json:"default_limit"`
	MaxLimit     int  `json:"max_limit"`

	TimeoutSeconds int  `json:"timeout_seconds"`
	LogLatency     bool `json:"log_latency"`
}

// ServerRuntimeConfig carries the knobs set by command-line flags rather
// than config.json.
type ServerRuntimeConfig struct {
	Address            string
	Port               int
	RateLimit          int
	GzipLevel          int
	BehindLoadBalancer bool
}

// Load reads config.json from dataDir and applies defaults.
func Load(dataDir string) (*CodexConfig, error) {
	f, err := os.Open(filepath.Join(dataDir, "config.json"))
	if err != nil {
		return nil, fmt.Errorf("opening config.json: %w", err)
	}
	defer f.Close()

	conf := &CodexConfig{}
	if err := json.NewDecoder(f).Decode(conf); err != nil {
		return nil, fmt.Errorf("reading config.json: %w", err)
	}
	conf.DataDir = dataDir
	conf.applyDefaults()
	return conf, nil
}

func (c *CodexConfig) applyDefaults() {
	if c.InstanceName == "" {
		c.InstanceName = "codex"
	}
	if c.CorpusFile == "" {
		c.CorpusFile = "corpus/quran.jsonl"
	}
	if c.MasaqFile == "" {
		c.MasaqFile = "masaq/MASAQ.csv"
	}
	if c.NotesDir == "" {
		c.NotesDir = "notes"
	}
	if c.LibraryDir == "" {
		c.LibraryDir = "resources"
	}
	if c.ResearchDB == "" {
		c.ResearchDB = "research.db"
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 100
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = 500
	}
}

// Path resolves a configured path against the data directory.
func (c *CodexConfig) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}
