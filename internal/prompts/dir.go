package prompts

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flexigpt/turnblock-go/spec"
)

const (
	overrideExt      = ".md"
	maxOverrideBytes = 64 << 10 // 64 KiB
)

// Override replaces parts of a built-in template. Nil fields keep the
// built-in value.
type Override struct {
	Key         spec.Lang
	Title       *string
	Description *string
	Default     *bool
	Text        string

	// Path is the file the override was read from.
	Path string
}

type overrideFrontmatter struct {
	Key         string  `yaml:"key"`
	Title       *string `yaml:"title"`
	Description *string `yaml:"description"`
	Default     *bool   `yaml:"default"`
}

// LoadDir reads user-edited prompts from dir: one "<lang>.md" file per block
// language, with optional YAML frontmatter and the prompt text as body.
// Missing files are skipped; other files in dir are ignored.
func LoadDir(ctx context.Context, dir string) ([]Override, error) {
	root := strings.TrimSpace(dir)
	if root == "" {
		return nil, fmt.Errorf("%w: empty prompt dir", spec.ErrInvalidArgument)
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("prompt dir: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", spec.ErrInvalidArgument, root)
	}

	var out []Override
	for _, lang := range spec.Langs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o, ok, err := loadOverride(filepath.Join(root, string(lang)+overrideExt), lang)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func loadOverride(path string, lang spec.Lang) (Override, bool, error) {
	lst, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Override{}, false, nil
	}
	if err != nil {
		return Override{}, false, fmt.Errorf("stat %s: %w", path, err)
	}
	// Disallow symlinks and anything that is not a plain file.
	if lst.Mode()&os.ModeSymlink != 0 {
		return Override{}, false, fmt.Errorf("%w: %s must not be a symlink", spec.ErrInvalidArgument, path)
	}
	if !lst.Mode().IsRegular() {
		return Override{}, false, fmt.Errorf("%w: %s must be a regular file", spec.ErrInvalidArgument, path)
	}

	b, err := readAllLimited(path)
	if err != nil {
		return Override{}, false, err
	}
	fm, body, hasFM, err := splitFrontmatter(string(b))
	if err != nil {
		return Override{}, false, fmt.Errorf("%s: %w", path, err)
	}

	o := Override{Key: lang, Path: path}
	if hasFM {
		var meta overrideFrontmatter
		if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
			return Override{}, false, fmt.Errorf("%w: %s: invalid frontmatter YAML: %w", spec.ErrInvalidArgument, path, err)
		}
		if k := strings.TrimSpace(meta.Key); k != "" && spec.Lang(k) != lang {
			return Override{}, false, fmt.Errorf("%w: %s: key %q must match file name", spec.ErrInvalidArgument, path, k)
		}
		o.Title, o.Description, o.Default = meta.Title, meta.Description, meta.Default
	}
	o.Text = strings.TrimSpace(body)
	if o.Text == "" {
		return Override{}, false, fmt.Errorf("%w: %s has no prompt text", spec.ErrInvalidArgument, path)
	}
	return o, true, nil
}

// Apply returns ts with the overrides laid over it. Templates are matched
// by key; only editable templates take an override.
func Apply(ts []Template, overrides []Override) []Template {
	out := make([]Template, len(ts))
	copy(out, ts)
	for _, o := range overrides {
		for i := range out {
			t := &out[i]
			if t.Key != o.Key || !t.Editable {
				continue
			}
			t.Text = o.Text
			if o.Title != nil {
				t.Title = *o.Title
			}
			if o.Description != nil {
				t.Description = *o.Description
			}
			if o.Default != nil {
				t.Default = *o.Default
			}
		}
	}
	return out
}

func readAllLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(maxOverrideBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > maxOverrideBytes {
		return nil, fmt.Errorf("%w: %s too large (max %d bytes)", spec.ErrInvalidArgument, path, maxOverrideBytes)
	}
	return data, nil
}

func splitFrontmatter(s string) (frontmatter, body string, has bool, err error) {
	br := bufio.NewReader(strings.NewReader(s))

	first, ferr := br.ReadString('\n')
	if ferr != nil && !errors.Is(ferr, io.EOF) {
		return "", "", false, fmt.Errorf("read first line: %w", ferr)
	}
	if strings.TrimSpace(first) != "---" {
		return "", s, false, nil
	}

	var fmLines []string
	foundEnd := false
	for {
		line, lerr := br.ReadString('\n')
		if lerr != nil && !errors.Is(lerr, io.EOF) {
			return "", "", false, fmt.Errorf("read frontmatter line: %w", lerr)
		}
		lineTrim := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(lineTrim) == "---" {
			foundEnd = true
			break
		}
		fmLines = append(fmLines, lineTrim)
		if errors.Is(lerr, io.EOF) {
			break
		}
	}
	if !foundEnd {
		return "", "", false, fmt.Errorf("%w: unterminated frontmatter (missing closing ---)", spec.ErrInvalidArgument)
	}

	rest, err := io.ReadAll(br)
	if err != nil {
		return "", "", false, fmt.Errorf("read body: %w", err)
	}
	return strings.Join(fmLines, "\n"), string(rest), true, nil
}
