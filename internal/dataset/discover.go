package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// Source locates the files of a planetoid dataset on disk. Either Content
// and Cites are set, or Archive is.
type Source struct {
	Content string
	Cites   string
	Archive string
}

// DiscoverPlanetoid searches root for <name>.content and <name>.cites, or
// for a <name>.tar archive holding them. Loose files win over an archive;
// among duplicates the lexically first path wins.
func DiscoverPlanetoid(root, name string) (Source, error) {
	if root == "" {
		return Source{}, errors.New("data-dir is not set")
	}
	var contents, cites, archives []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch d.Name() {
		case name + ".content":
			contents = append(contents, path)
		case name + ".cites":
			cites = append(cites, path)
		case name + ".tar":
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return Source{}, fmt.Errorf("discover %s: %w", name, err)
	}
	sort.Strings(contents)
	sort.Strings(cites)
	sort.Strings(archives)

	switch {
	case len(contents) > 0 && len(cites) > 0:
		return Source{Content: contents[0], Cites: cites[0]}, nil
	case len(archives) > 0:
		return Source{Archive: archives[0]}, nil
	default:
		return Source{}, fmt.Errorf("discover %s: no %s.content/%s.cites or %s.tar under %s", name, name, name, name, root)
	}
}
