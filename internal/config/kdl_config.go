package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Load reads a .corpusd.kdl file at path, overlaying it on Default(). A
// missing file is not an error: the defaults are used as-is, matching the
// teacher's LoadKDL "no file found -> nil, nil" contract.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "server":
			applyServer(cfg, n)
		case "corpus":
			applyCorpus(cfg, n)
		case "index":
			applyIndex(cfg, n)
		}
	}

	if len(cfg.Corpus.Roots) == 0 {
		if wd, err := os.Getwd(); err == nil {
			cfg.Corpus.Roots = []string{wd}
		}
	}
	for i, root := range cfg.Corpus.Roots {
		if !filepath.IsAbs(root) {
			cfg.Corpus.Roots[i] = filepath.Join(filepath.Dir(path), root)
		}
	}

	return cfg, nil
}

func applyServer(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "port":
			if v, ok := firstIntArg(cn); ok {
				cfg.Server.Port = v
			}
		case "max_active_clients":
			if v, ok := firstIntArg(cn); ok {
				cfg.Server.MaxActiveClients = v
			}
		case "client_workers":
			if v, ok := firstIntArg(cn); ok {
				cfg.Server.ClientWorkers = v
			}
		}
	}
}

func applyCorpus(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "root", "roots":
			cfg.Corpus.Roots = append(cfg.Corpus.Roots, collectStringArgs(cn)...)
		case "include":
			cfg.Corpus.Include = collectStringArgs(cn)
		case "exclude":
			cfg.Corpus.Exclude = collectStringArgs(cn)
		case "watch":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Corpus.WatchForChanges = b
			}
		}
	}
}

func applyIndex(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "ingest_workers":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.IngestWorkers = v
			}
		case "refresh_interval_sec":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.RefreshIntervalSec = v
			}
		}
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs reads string arguments inline on a node (e.g.
// `roots "a" "b"`), falling back to reading each child node's name as a
// string when given in block form (e.g. `exclude { "vendor/**" }`).
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
