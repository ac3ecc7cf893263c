package tool

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// WorkspaceOption configures the workspace tools.
type WorkspaceOption func(*workspaceConfig)

type workspaceConfig struct {
	root        string
	extensions  []string
	maxFileSize int64
	maxResults  int
}

// WithAllowedExtensions restricts the tools to files with these
// extensions, with or without the leading dot.
func WithAllowedExtensions(exts ...string) WorkspaceOption {
	return func(c *workspaceConfig) {
		c.extensions = exts
	}
}

// WithMaxFileSize sets the largest file read_file returns. Default is 1MB.
func WithMaxFileSize(bytes int64) WorkspaceOption {
	return func(c *workspaceConfig) {
		if bytes > 0 {
			c.maxFileSize = bytes
		}
	}
}

// WithMaxResults caps the matches search_files returns. Default is 100.
func WithMaxResults(n int) WorkspaceOption {
	return func(c *workspaceConfig) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// resolve maps a tool-supplied path into the workspace root.
func (c *workspaceConfig) resolve(path string) (string, error) {
	full := filepath.Join(c.root, filepath.Clean("/"+path))
	rel, err := filepath.Rel(c.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the workspace", path)
	}
	return full, nil
}

func (c *workspaceConfig) allowed(path string) bool {
	if len(c.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range c.extensions {
		if ext == e || ext == "."+e {
			return true
		}
	}
	return false
}

// ReadFileArgs are the arguments of the read_file tool.
type ReadFileArgs struct {
	Path      string `json:"path" desc:"File path relative to the workspace" required:"true"`
	StartLine int    `json:"start_line" desc:"First line to return, 1-based"`
	EndLine   int    `json:"end_line" desc:"Last line to return, inclusive"`
}

// SearchFilesArgs are the arguments of the search_files tool.
type SearchFilesArgs struct {
	Pattern     string `json:"pattern" desc:"Regular expression to search for" required:"true"`
	Path        string `json:"path" desc:"Directory to search, relative to the workspace"`
	FilePattern string `json:"file_pattern" desc:"Glob for file names, e.g. *.go"`
}

// SearchMatch is one line matched by search_files.
type SearchMatch struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Workspace returns read_file and search_files, both confined to root.
func Workspace(root string, opts ...WorkspaceOption) []Registration {
	cfg := &workspaceConfig{
		root:        filepath.Clean(root),
		maxFileSize: 1 << 20,
		maxResults:  100,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return []Registration{readFileTool(cfg), searchFilesTool(cfg)}
}

func readFileTool(cfg *workspaceConfig) Registration {
	return Func("read_file", "Read a text file from the workspace, optionally a line range",
		func(ctx context.Context, args ReadFileArgs) (any, error) {
			path, err := cfg.resolve(args.Path)
			if err != nil {
				return nil, err
			}
			if !cfg.allowed(path) {
				return nil, fmt.Errorf("extension %q not allowed", filepath.Ext(path))
			}
			info, err := os.Stat(path)
			if err != nil {
				return nil, err
			}
			if info.IsDir() {
				return nil, fmt.Errorf("%s is a directory", args.Path)
			}
			if info.Size() > cfg.maxFileSize {
				return nil, fmt.Errorf("%s is %d bytes, limit is %d", args.Path, info.Size(), cfg.maxFileSize)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			if args.StartLine <= 0 && args.EndLine <= 0 {
				return string(data), nil
			}
			return lineRange(string(data), args.StartLine, args.EndLine)
		})
}

// lineRange returns lines start..end, 1-based and inclusive. Zero start
// means the first line; zero end means the last.
func lineRange(text string, start, end int) (string, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if start <= 0 {
		start = 1
	}
	if end <= 0 || end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return "", fmt.Errorf("start_line %d is past end_line %d", start, end)
	}
	return strings.Join(lines[start-1:end], "\n"), nil
}

var errEnoughResults = errors.New("enough results")

func searchFilesTool(cfg *workspaceConfig) Registration {
	return Func("search_files", "Search workspace files for lines matching a regular expression",
		func(ctx context.Context, args SearchFilesArgs) (any, error) {
			re, err := regexp.Compile(args.Pattern)
			if err != nil {
				return nil, &ErrInvalidArguments{Err: err}
			}
			dir, err := cfg.resolve(args.Path)
			if err != nil {
				return nil, err
			}

			matches := []SearchMatch{}
			err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if d.IsDir() {
					if path != dir && strings.HasPrefix(d.Name(), ".") {
						return filepath.SkipDir
					}
					return nil
				}
				if !cfg.allowed(path) {
					return nil
				}
				if args.FilePattern != "" {
					if ok, _ := filepath.Match(args.FilePattern, d.Name()); !ok {
						return nil
					}
				}
				found, err := searchFile(path, re)
				if err != nil {
					return nil
				}
				rel, _ := filepath.Rel(cfg.root, path)
				for _, m := range found {
					m.Path = filepath.ToSlash(rel)
					matches = append(matches, m)
					if len(matches) >= cfg.maxResults {
						return errEnoughResults
					}
				}
				return nil
			})
			if err != nil && !errors.Is(err, errEnoughResults) {
				return nil, err
			}
			return map[string]any{
				"matches":   matches,
				"truncated": errors.Is(err, errEnoughResults),
			}, nil
		})
}

func searchFile(path string, re *regexp.Regexp) ([]SearchMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []SearchMatch
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		if line := scanner.Text(); re.MatchString(line) {
			out = append(out, SearchMatch{Line: n, Text: line})
		}
	}
	return out, scanner.Err()
}
