package toolexec

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/platform"
)

type tarEntry struct {
	name, body, link string
	dir              bool
}

func writeTarGz(t *testing.T, path string, entries []tarEntry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := gzip.NewWriter(f)
	tw := tar.NewWriter(zw)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o755}
		switch {
		case e.dir:
			hdr.Typeflag = tar.TypeDir
		case e.link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.link
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
}

type copyDownloader struct {
	src   string
	calls []string
}

func (d *copyDownloader) Download(_ context.Context, url, dst string) (int64, error) {
	d.calls = append(d.calls, url)
	data, err := os.ReadFile(d.src)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), os.WriteFile(dst, data, 0o644)
}

func TestDownloadURL(t *testing.T) {
	p := &Provisioner{Env: platform.Env{OS: platform.Darwin, Arch: "arm64"}}
	assert.Equal(t,
		"https://download.java.net/java/early_access/jextract/22/5/openjdk-22-jextract+5-33_macos-aarch64_bin.tar.gz",
		p.DownloadURL())
}

func TestRequireFromPath(t *testing.T) {
	home := t.TempDir()
	script(t, filepath.Join(home, "bin"), "jextract", "true")

	p := &Provisioner{Env: platform.Env{Path: []string{filepath.Join(home, "bin")}}, Dir: t.TempDir()}
	got, err := p.Require(context.Background())
	require.NoError(t, err)
	assert.Equal(t, home, got)
}

func TestRequireDownloadsOnce(t *testing.T) {
	src := filepath.Join(t.TempDir(), "dist.tar.gz")
	writeTarGz(t, src, []tarEntry{
		{name: "jextract-22/", dir: true},
		{name: "jextract-22/bin/jextract", body: "#!/bin/sh\n"},
		{name: "jextract-22/conf/jextract.conf", body: "x"},
		{name: "jextract-22/bin/jx", link: "jextract"},
	})

	dl := &copyDownloader{src: src}
	dir := t.TempDir()
	p := &Provisioner{Env: platform.Env{OS: platform.Linux, Arch: "amd64"}, Dir: dir, Downloader: dl}

	home, err := p.Require(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "jextract-22"), home)
	assert.FileExists(t, filepath.Join(home, "bin", "jextract"))
	assert.FileExists(t, filepath.Join(home, "conf", "jextract.conf"))

	_, err = p.Require(context.Background())
	require.NoError(t, err)
	assert.Len(t, dl.calls, 1)
	assert.Contains(t, dl.calls[0], "linux-x64_bin.tar.gz")
}

func TestRequireWithoutDownloader(t *testing.T) {
	p := &Provisioner{Dir: t.TempDir()}
	_, err := p.Require(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeExternalTool))
}

func TestUntarRejectsEscapes(t *testing.T) {
	for name, entries := range map[string][]tarEntry{
		"dotdot":  {{name: "../evil", body: "x"}},
		"abslink": {{name: "link", link: "/etc/passwd"}},
		"relLink": {{name: "a/link", link: "../../evil"}},
	} {
		t.Run(name, func(t *testing.T) {
			src := filepath.Join(t.TempDir(), "bad.tar.gz")
			writeTarGz(t, src, entries)
			assert.Error(t, Untar(src, t.TempDir()))
		})
	}
}
