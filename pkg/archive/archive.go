// Package archive assembles jar files whose entry sequence depends only on
// the input file set.
//
// Entries are gathered from each root directory, sorted by their path
// relative to the root, and de-duplicated with the first root winning. A
// directory entry is written for a file's parent directory just before the
// first file in it. Modification times are copied from the source files
// unless an epoch is configured, in which case the output is byte-for-byte
// reproducible.
package archive

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/bldr/pkg/buildcfg"
	"github.com/matzehuels/bldr/pkg/errors"
)

// Entry is one archive member. An entry without Source is a directory.
type Entry struct {
	Path    string
	Source  string
	ModTime time.Time
	Mode    fs.FileMode
}

// IsDir reports whether e is a directory placeholder.
func (e Entry) IsDir() bool { return e.Source == "" }

// Entries computes the entry sequence for cfg. Roots that do not exist are
// skipped.
func Entries(cfg buildcfg.Archive) ([]Entry, error) {
	var files []Entry
	seen := make(map[string]bool)
	for _, root := range cfg.AllRoots() {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if seen[rel] {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			seen[rel] = true
			files = append(files, Entry{Path: rel, Source: p, ModTime: fi.ModTime(), Mode: fi.Mode().Perm()})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(files, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })

	entries := make([]Entry, 0, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		if dir := path.Dir(f.Path); dir != "." && !dirs[dir] {
			dirs[dir] = true
			entries = append(entries, Entry{Path: dir + "/", ModTime: dirModTime(f), Mode: fs.ModeDir | 0o755})
		}
		entries = append(entries, f)
	}

	if cfg.Epoch != nil {
		for i := range entries {
			entries[i].ModTime = *cfg.Epoch
		}
	}
	return entries, nil
}

func dirModTime(f Entry) time.Time {
	if info, err := os.Stat(filepath.Dir(f.Source)); err == nil {
		return info.ModTime()
	}
	return f.ModTime
}

// Result describes a written archive.
type Result struct {
	Path  string
	Files int
	Dirs  int
	Size  int64
}

// Assembler writes archives.
type Assembler struct {
	Logger *log.Logger
}

// NewAssembler creates an assembler. If logger is nil, log.Default() is used.
func NewAssembler(logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.Default()
	}
	return &Assembler{Logger: logger}
}

// Assemble writes cfg.Jar. The file is replaced atomically; on failure any
// previous archive is left untouched.
func (a *Assembler) Assemble(ctx context.Context, cfg buildcfg.Archive) (*Result, error) {
	if cfg.Jar == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "archive: output jar not set")
	}
	entries, err := Entries(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Jar), 0o755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(cfg.Jar), ".bldr-*.jar")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	res := &Result{Path: cfg.Jar}
	if err := write(ctx, tmp, entries, res); err != nil {
		tmp.Close()
		return nil, err
	}
	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return nil, err
	}
	res.Size = info.Size()
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), cfg.Jar); err != nil {
		return nil, err
	}

	a.Logger.Debug("archived", "jar", cfg.Jar, "files", res.Files, "dirs", res.Dirs, "bytes", res.Size)
	return res, nil
}

func write(ctx context.Context, w io.Writer, entries []Entry, res *Result) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr := &zip.FileHeader{Name: e.Path, Modified: e.ModTime}
		if e.IsDir() {
			hdr.Method = zip.Store
			hdr.SetMode(fs.ModeDir | 0o755)
			if _, err := zw.CreateHeader(hdr); err != nil {
				return err
			}
			res.Dirs++
			continue
		}

		hdr.Method = zip.Deflate
		hdr.SetMode(e.Mode)
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if err := copyFile(fw, e.Source); err != nil {
			return err
		}
		res.Files++
	}
	return zw.Close()
}

func copyFile(w io.Writer, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// SourceDateEpoch is the environment variable carrying a reproducible-build
// timestamp in seconds since the Unix epoch.
const SourceDateEpoch = "SOURCE_DATE_EPOCH"

// EpochFromEnv parses SOURCE_DATE_EPOCH. It returns nil when the variable
// is unset.
func EpochFromEnv(getenv func(string) string) (*time.Time, error) {
	raw := strings.TrimSpace(getenv(SourceDateEpoch))
	if raw == "" {
		return nil, nil
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s=%q", SourceDateEpoch, raw)
	}
	t := time.Unix(secs, 0).UTC()
	return &t, nil
}
