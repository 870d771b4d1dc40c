package dataset

import (
	"archive/tar"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"graphconv-forge/internal/graph"
)

const sampleContent = `p1 1 0 1 0 Theory
p2 0 1 0 0 Neural_Networks
p3 1 1 1 1 Theory
p4 0 0 0 0 Rule_Learning
`

const sampleCites = `p1 p2
p2 p3
p3 p1
p1 p3
p9 p1
`

func TestParsePlanetoid(t *testing.T) {
	d, err := ParsePlanetoid("tiny", strings.NewReader(sampleContent), strings.NewReader(sampleCites))
	require.NoError(t, err)
	require.NoError(t, d.Validate())

	require.Equal(t, 4, d.NumNodes())
	require.Equal(t, 4, d.NumFeatures())
	require.Equal(t, 3, d.NumClasses)
	// classes are indexed in sorted order
	require.Equal(t, []int{2, 0, 2, 1}, d.Labels)

	require.InDelta(t, 0.5, d.Features.At(0, 0), 1e-12)
	require.InDelta(t, 0.25, d.Features.At(2, 3), 1e-12)
	require.Zero(t, d.Features.At(3, 0), "all-zero rows stay zero")

	// p9 is unknown; p3->p1 and p1->p3 collapse into one symmetric pair.
	require.ElementsMatch(t, []graph.Edge{
		{Src: 1, Dst: 0}, {Src: 0, Dst: 1},
		{Src: 2, Dst: 1}, {Src: 1, Dst: 2},
		{Src: 0, Dst: 2}, {Src: 2, Dst: 0},
	}, d.Edges)

	// Every node fits within 20 per class, so all are training nodes.
	require.Equal(t, 4, CountMask(d.TrainMask))
	require.Zero(t, CountMask(d.ValMask))
}

func TestParsePlanetoidRejectsRaggedRows(t *testing.T) {
	_, err := ParsePlanetoid("bad", strings.NewReader("a 1 0 X\nb 1 Y\n"), strings.NewReader(""))
	require.Error(t, err)

	_, err = ParsePlanetoid("bad", strings.NewReader("a 1 X\na 0 X\n"), strings.NewReader(""))
	require.Error(t, err)

	_, err = ParsePlanetoid("bad", strings.NewReader("a 1 X\n"), strings.NewReader("a b c\n"))
	require.Error(t, err)
}

func TestLoadPlanetoidFromArchive(t *testing.T) {
	dir := t.TempDir()
	buf := &bytes.Buffer{}
	tw := tar.NewWriter(buf)
	addTarEntry(tw, "cora/README", []byte("readme"))
	addTarEntry(tw, "cora/cora.content", []byte(sampleContent))
	addTarEntry(tw, "cora/cora.cites", []byte(sampleCites))
	require.NoError(t, tw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cora.tar"), buf.Bytes(), 0o644))

	d, err := Load(DataArgs{Name: "cora", Dir: dir})
	require.NoError(t, err)
	require.Equal(t, "cora", d.Name)
	require.Equal(t, 4, d.NumNodes())
	require.Len(t, d.Edges, 6)
}

func TestLoadPlanetoidLooseFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "citeseer.content"), sampleContent)
	mustWrite(t, filepath.Join(dir, "citeseer.cites"), sampleCites)

	d, err := Load(DataArgs{Name: "citeseer", Dir: dir})
	require.NoError(t, err)
	require.Equal(t, 3, d.NumClasses)
}

func TestArchiveMissingCites(t *testing.T) {
	dir := t.TempDir()
	buf := &bytes.Buffer{}
	tw := tar.NewWriter(buf)
	addTarEntry(tw, "cora.content", []byte(sampleContent))
	require.NoError(t, tw.Close())
	path := filepath.Join(dir, "cora.tar")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, _, err := readArchive(path, "cora")
	require.ErrorContains(t, err, "missing cora.cites")
}

func TestLoadUnknownDataset(t *testing.T) {
	_, err := Load(DataArgs{Name: "imagenet"})
	require.True(t, errors.Is(err, ErrUnknownDataset), "got %v", err)
	require.ErrorContains(t, err, "synthetic")
}

func addTarEntry(tw *tar.Writer, name string, data []byte) {
	hdr := &tar.Header{Name: name, Size: int64(len(data)), Mode: 0o644}
	if err := tw.WriteHeader(hdr); err != nil {
		panic(err)
	}
	if _, err := tw.Write(data); err != nil {
		panic(err)
	}
}
