package dataset

import (
	"archive/tar"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// readArchive pulls <name>.content and <name>.cites out of a tar archive,
// ignoring directory prefixes and unrelated entries.
func readArchive(path, name string) (content, cites []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	tr := tar.NewReader(bufio.NewReader(f))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.FileInfo().IsDir() {
			continue
		}
		switch filepath.Base(hdr.Name) {
		case name + ".content":
			if content, err = io.ReadAll(tr); err != nil {
				return nil, nil, fmt.Errorf("read %s: %w", hdr.Name, err)
			}
		case name + ".cites":
			if cites, err = io.ReadAll(tr); err != nil {
				return nil, nil, fmt.Errorf("read %s: %w", hdr.Name, err)
			}
		default:
			// ignore unrelated entries
			continue
		}
	}

	if content == nil {
		return nil, nil, fmt.Errorf("archive %s: missing %s.content", path, name)
	}
	if cites == nil {
		return nil, nil, fmt.Errorf("archive %s: missing %s.cites", path, name)
	}
	return content, cites, nil
}
