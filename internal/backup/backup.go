// Package backup archives the feed store and configuration as tar.gz and
// restores them.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/loftloot/loftloot/internal/store"
	"github.com/loftloot/loftloot/internal/version"
)

const (
	// DatabaseEntry is the archive name of the database snapshot.
	DatabaseEntry = "loftloot.db"
	// ManifestEntry is the archive name of the manifest.
	ManifestEntry = "manifest.json"
)

// Manifest describes an archive.
type Manifest struct {
	CreatedAt time.Time `json:"created_at"`
	Version   string    `json:"version"`
	Products  int       `json:"products"`
	Config    string    `json:"config,omitempty"`
}

// Backup snapshots st with VACUUM INTO, so the copy is consistent while the
// store stays open, and writes it to a tar.gz at outputPath together with
// the config file (when configPath exists) and a manifest.
func Backup(ctx context.Context, st *store.SQLiteStore, configPath, outputPath string) (Manifest, error) {
	repo, err := store.NewProductRepo(ctx, st)
	if err != nil {
		return Manifest{}, err
	}
	count, err := repo.Count(ctx)
	if err != nil {
		return Manifest{}, err
	}

	tmpDir, err := os.MkdirTemp("", "loftloot-backup-")
	if err != nil {
		return Manifest{}, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, DatabaseEntry)
	if _, err := st.DB().ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return Manifest{}, fmt.Errorf("snapshot database: %w", err)
	}

	m := Manifest{
		CreatedAt: time.Now().UTC(),
		Version:   version.Short(),
		Products:  count,
	}
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			m.Config = filepath.Base(configPath)
		}
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return Manifest{}, fmt.Errorf("creating output file: %w", err)
	}
	defer outFile.Close()

	gw := gzip.NewWriter(outFile)
	tw := tar.NewWriter(gw)

	if err := writeManifest(tw, m); err != nil {
		return Manifest{}, err
	}
	if err := addFileToTar(tw, snapshot, DatabaseEntry); err != nil {
		return Manifest{}, fmt.Errorf("adding database to archive: %w", err)
	}
	if m.Config != "" {
		if err := addFileToTar(tw, configPath, m.Config); err != nil {
			return Manifest{}, fmt.Errorf("adding config to archive: %w", err)
		}
	}

	if err := tw.Close(); err != nil {
		return Manifest{}, err
	}
	if err := gw.Close(); err != nil {
		return Manifest{}, err
	}
	return m, outFile.Close()
}

func writeManifest(tw *tar.Writer, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	hdr := &tar.Header{
		Name:    ManifestEntry,
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: m.CreatedAt,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = tw.Write(data)
	return err
}

// addFileToTar adds a single file to the tar archive under the given name.
func addFileToTar(tw *tar.Writer, filePath, archiveName string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = archiveName

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	_, err = io.Copy(tw, f)
	return err
}

// Restore extracts an archive written by Backup into dataDir. Existing files
// are only replaced when force is set.
func Restore(_ context.Context, inputPath, dataDir string, force bool) (Manifest, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return Manifest{}, fmt.Errorf("opening archive: %w", err)
	}
	defer in.Close()

	gr, err := gzip.NewReader(in)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading archive: %w", err)
	}
	defer gr.Close()

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return Manifest{}, err
	}

	var (
		m           Manifest
		hasManifest bool
		hasDB       bool
	)
	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Manifest{}, fmt.Errorf("reading archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := filepath.Base(hdr.Name)
		if name != hdr.Name || strings.HasPrefix(name, ".") {
			return Manifest{}, fmt.Errorf("unexpected archive entry %q", hdr.Name)
		}

		if name == ManifestEntry {
			if err := json.NewDecoder(tr).Decode(&m); err != nil {
				return Manifest{}, fmt.Errorf("decoding manifest: %w", err)
			}
			hasManifest = true
			continue
		}
		if err := extract(tr, filepath.Join(dataDir, name), force); err != nil {
			return Manifest{}, err
		}
		if name == DatabaseEntry {
			hasDB = true
		}
	}

	if !hasManifest || !hasDB {
		return Manifest{}, errors.New("archive is not a loftloot backup")
	}
	return m, nil
}

func extract(r io.Reader, target string, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	out, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists (use -force to overwrite)", target)
		}
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return out.Close()
}
