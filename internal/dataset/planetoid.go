package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"graphconv-forge/internal/graph"
)

const (
	planetoidTrainPerClass = 20
	planetoidNumVal        = 500
	planetoidNumTest       = 1000
)

func planetoidLoader(name string) Loader {
	return func(args DataArgs) (*Dataset, error) {
		src, err := DiscoverPlanetoid(args.Dir, name)
		if err != nil {
			return nil, err
		}
		var content, cites io.Reader
		if src.Archive != "" {
			c, e, err := readArchive(src.Archive, name)
			if err != nil {
				return nil, err
			}
			content, cites = bytes.NewReader(c), bytes.NewReader(e)
		} else {
			cf, err := os.Open(src.Content)
			if err != nil {
				return nil, fmt.Errorf("open content: %w", err)
			}
			defer cf.Close()
			ef, err := os.Open(src.Cites)
			if err != nil {
				return nil, fmt.Errorf("open cites: %w", err)
			}
			defer ef.Close()
			content, cites = cf, ef
		}
		return ParsePlanetoid(name, content, cites)
	}
}

// ParsePlanetoid reads the LINQS citation format. Each content line is
//
//	<paper id> <feature 1> ... <feature F> <class name>
//
// and each cites line is "<cited id> <citing id>". Citations to unknown
// papers are skipped, edges are made symmetric and deduplicated, and
// feature rows are scaled to sum to one.
func ParsePlanetoid(name string, content, cites io.Reader) (*Dataset, error) {
	ids := make(map[string]int)
	var rows [][]float64
	var classNames []string
	width := -1

	scanner := bufio.NewScanner(content)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("content line %d: want id, features and class", lineNo)
		}
		feats := fields[1 : len(fields)-1]
		if width == -1 {
			width = len(feats)
		} else if len(feats) != width {
			return nil, fmt.Errorf("content line %d: %d features, expected %d", lineNo, len(feats), width)
		}
		if _, dup := ids[fields[0]]; dup {
			return nil, fmt.Errorf("content line %d: duplicate paper %s", lineNo, fields[0])
		}
		row := make([]float64, width)
		for j, s := range feats {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("content line %d: feature %d: %w", lineNo, j, err)
			}
			row[j] = v
		}
		ids[fields[0]] = len(rows)
		rows = append(rows, row)
		classNames = append(classNames, fields[len(fields)-1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty content", name)
	}

	classes := distinctSorted(classNames)
	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}
	labels := make([]int, len(rows))
	for i, c := range classNames {
		labels[i] = classIndex[c]
	}

	features := mat.NewDense(len(rows), width, nil)
	for i, row := range rows {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		if sum != 0 {
			for j := range row {
				row[j] /= sum
			}
		}
		features.SetRow(i, row)
	}

	edges, err := parseCites(cites, ids)
	if err != nil {
		return nil, err
	}

	train, val, test := PlanetoidSplit(labels, len(classes), planetoidTrainPerClass, planetoidNumVal, planetoidNumTest)
	return &Dataset{
		Name:       name,
		NumClasses: len(classes),
		Features:   features,
		Labels:     labels,
		Edges:      edges,
		TrainMask:  train,
		ValMask:    val,
		TestMask:   test,
	}, nil
}

func parseCites(r io.Reader, ids map[string]int) ([]graph.Edge, error) {
	seen := make(map[graph.Edge]struct{})
	var edges []graph.Edge
	add := func(e graph.Edge) {
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		edges = append(edges, e)
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("cites line %d: want 2 ids, got %d", lineNo, len(fields))
		}
		cited, ok1 := ids[fields[0]]
		citing, ok2 := ids[fields[1]]
		if !ok1 || !ok2 {
			continue
		}
		add(graph.Edge{Src: citing, Dst: cited})
		add(graph.Edge{Src: cited, Dst: citing})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cites: %w", err)
	}
	return edges, nil
}

func distinctSorted(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
