package deploy

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	v1 "github.com/google/go-containerregistry/pkg/v1"
)

// FileMap maps image paths to file contents.
type FileMap = map[string][]byte

// FileMapFromDir reads every regular file under dir into a FileMap keyed by
// the path relative to dir, joined under prefix. Dotfiles and dot
// directories are skipped.
func FileMapFromDir(dir, prefix string) (FileMap, error) {
	source := os.DirFS(dir)
	fileMap := FileMap{}

	walker := func(walkPath string, entry fs.DirEntry, ioErr error) error {
		switch {
		case ioErr != nil:
			return fmt.Errorf("access file %s : %w", walkPath, ioErr)

		case entry.Name() == ".":
			// continue at root

		case strings.HasPrefix(entry.Name(), "."):
			if entry.IsDir() {
				return filepath.SkipDir
			}

		case entry.IsDir():
			// no special handling for directories

		default:
			data, err := fs.ReadFile(source, walkPath)
			if err != nil {
				return fmt.Errorf("read file %s : %w", walkPath, err)
			}
			fileMap[path.Join(prefix, walkPath)] = data
		}

		return nil
	}

	if err := fs.WalkDir(source, ".", walker); err != nil {
		return nil, fmt.Errorf("walking %s : %w", dir, err)
	}

	return fileMap, nil
}

// ToTar serializes the FileMap into a deterministic tar archive: entries
// are written in sorted path order so identical maps produce identical
// layers.
func ToTar(fileMap FileMap) (tarBytes []byte, err error) {
	paths := make([]string, 0, len(fileMap))
	for filePath := range fileMap {
		paths = append(paths, filePath)
	}
	sort.Strings(paths)

	buffer := &bytes.Buffer{}
	tarWriter := tar.NewWriter(buffer)
	defer func() {
		if cErr := tarWriter.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	for _, filePath := range paths {
		data := fileMap[filePath]
		header := &tar.Header{Name: filePath, Size: int64(len(data)), Mode: 0o644}
		if err := tarWriter.WriteHeader(header); err != nil {
			return nil, fmt.Errorf("writing tar header : %w", err)
		}
		if _, err := tarWriter.Write(data); err != nil {
			return nil, fmt.Errorf("writing tar body : %w", err)
		}
	}

	return buffer.Bytes(), nil
}

// FromTarReader reads a tar stream back into a FileMap.
func FromTarReader(reader io.Reader) (FileMap, error) {
	fileMap := FileMap{}
	tarReader := tar.NewReader(reader)
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar header : %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		data, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, fmt.Errorf("reading tar body : %w", err)
		}
		fileMap[header.Name] = data
	}

	return fileMap, nil
}

// FileMapFromImage flattens every layer of the image into a single FileMap,
// later layers overwriting earlier ones.
func FileMapFromImage(image v1.Image) (FileMap, error) {
	layers, err := image.Layers()
	if err != nil {
		return nil, fmt.Errorf("accessing layers : %w", err)
	}

	fileMap := FileMap{}
	for _, layer := range layers {
		reader, err := layer.Uncompressed()
		if err != nil {
			return nil, fmt.Errorf("accessing layer : %w", err)
		}

		layerMap, err := FromTarReader(reader)
		reader.Close()
		if err != nil {
			return nil, err
		}
		for filePath, data := range layerMap {
			fileMap[filePath] = data
		}
	}

	return fileMap, nil
}
