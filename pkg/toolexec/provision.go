package toolexec

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/platform"
)

// Header-extraction tool release fetched when none is on PATH.
const (
	JExtractMajor = "22"
	JExtractMinor = "5"
	JExtractBuild = "33"

	jextractBase = "https://download.java.net/java/early_access/jextract"
)

// Downloader fetches a URL to a local file.
type Downloader interface {
	Download(ctx context.Context, url, dst string) (int64, error)
}

// Provisioner makes the header-extraction tool available.
type Provisioner struct {
	Env        platform.Env
	Dir        string // third-party directory holding downloads
	Downloader Downloader
	Logger     *log.Logger

	// URL overrides the distribution URL.
	URL string
}

// DownloadURL returns the distribution archive for the host.
func (p *Provisioner) DownloadURL() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("%s/%s/%s/openjdk-%s-jextract+%s-%s_%s_bin.tar.gz",
		jextractBase, JExtractMajor, JExtractMinor,
		JExtractMajor, JExtractMinor, JExtractBuild, p.Env.NameArchTuple())
}

// Home is where the downloaded distribution unpacks.
func (p *Provisioner) Home() string { return filepath.Join(p.Dir, "jextract-"+JExtractMajor) }

// Require returns the tool's home directory. A tool on PATH is used as is;
// otherwise the distribution is downloaded and unpacked into Dir, skipping
// whichever of those steps already happened.
func (p *Provisioner) Require(ctx context.Context) (string, error) {
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}
	if exe, ok := p.Env.LookPath("jextract"); ok {
		logger.Debug("found jextract on PATH", "path", exe)
		return filepath.Dir(filepath.Dir(exe)), nil
	}

	home := p.Home()
	if info, err := os.Stat(home); err == nil && info.IsDir() {
		return home, nil
	}

	tarball := filepath.Join(p.Dir, "jextract.tar.gz")
	if _, err := os.Stat(tarball); err != nil {
		if p.Downloader == nil {
			return "", errors.New(errors.ErrCodeExternalTool, "jextract not on PATH and no downloader configured")
		}
		url := p.DownloadURL()
		logger.Info("downloading jextract", "url", url)
		if _, err := p.Downloader.Download(ctx, url, tarball); err != nil {
			return "", errors.Wrap(errors.ErrCodeArtifactFetch, err, "download jextract")
		}
	}

	if err := Untar(tarball, p.Dir); err != nil {
		return "", errors.Wrap(errors.ErrCodeExternalTool, err, "unpack %s", tarball)
	}
	if info, err := os.Stat(home); err != nil || !info.IsDir() {
		return "", errors.New(errors.ErrCodeMissingDirectory, "%s not found after unpacking %s", home, tarball)
	}
	return home, nil
}

// Untar unpacks a gzip-compressed tar archive into dir. Entries that would
// land outside dir are rejected.
func Untar(src, dir string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(dir, hdr.Name)
		if !within(dir, target) {
			return fmt.Errorf("entry %q escapes %s", hdr.Name, dir)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) || !within(dir, filepath.Join(filepath.Dir(target), hdr.Linkname)) {
				return fmt.Errorf("link %q escapes %s", hdr.Name, dir)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		}
	}
}

func writeEntry(path string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
