package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL reads and parses a single .vfind.kdl file at path.
func LoadKDL(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if cfg.Project.Root != "" && !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(dir, cfg.Project.Root))
	}
	return cfg, nil
}

// parseKDL parses a KDL document body into a Config seeded with built-in
// defaults, then overridden node by node.
func parseKDL(content string) (*Config, error) {
	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}

	cfg := &Config{
		Project: Project{Root: cwd},
		Defaults: Defaults{
			Threads:              0,
			IncludeHidden:        false,
			FollowSymlinks:       false,
			RespectVCSIgnores:    true,
			RespectGlobalIgnores: true,
			StayOnOneFilesystem:  false,
			MaxDepth:             0,
			CaseSensitivePath:    true,
			SortKey:              "none",
		},
		Include: []string{},
		Exclude: []string{},
	}

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "defaults":
			for _, cn := range n.Children {
				applyDefaultsNode(&cfg.Defaults, cn)
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return cfg, nil
}

func applyDefaultsNode(d *Defaults, cn *document.Node) {
	switch nodeName(cn) {
	case "threads":
		if v, ok := firstIntArg(cn); ok {
			d.Threads = v
		}
	case "hidden":
		if b, ok := firstBoolArg(cn); ok {
			d.IncludeHidden = b
		}
	case "follow_symlinks":
		if b, ok := firstBoolArg(cn); ok {
			d.FollowSymlinks = b
		}
	case "respect_vcs_ignores":
		if b, ok := firstBoolArg(cn); ok {
			d.RespectVCSIgnores = b
		}
	case "respect_global_ignores":
		if b, ok := firstBoolArg(cn); ok {
			d.RespectGlobalIgnores = b
		}
	case "one_file_system":
		if b, ok := firstBoolArg(cn); ok {
			d.StayOnOneFilesystem = b
		}
	case "max_depth":
		if v, ok := firstIntArg(cn); ok {
			d.MaxDepth = v
		}
	case "case_sensitive":
		if b, ok := firstBoolArg(cn); ok {
			d.CaseSensitivePath = b
		}
	case "sort":
		if s, ok := firstStringArg(cn); ok {
			d.SortKey = s
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

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
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

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		log.Printf("WARNING: invalid float value for '%s' in KDL config, expected number but got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

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
		out = make([]string, 0, len(n.Children))
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

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB" as well as a
// bare byte count. The CLI's --size flag does not use it; cmd/vfind parses
// that flag with its own parseSizeValue.
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}
