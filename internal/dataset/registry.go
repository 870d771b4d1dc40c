package dataset

import (
	"errors"
	"flag"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownDataset is returned by Load for a name nobody registered.
var ErrUnknownDataset = errors.New("dataset: unknown dataset")

// DataArgs selects a dataset and carries the knobs of the built-in loaders.
type DataArgs struct {
	Name string `yaml:"dataset" hcl:"dataset,optional" validate:"required"`
	Dir  string `yaml:"dir" hcl:"dir,optional"`

	SynNodes      int     `yaml:"syn_nodes" hcl:"syn_nodes,optional"`
	SynClasses    int     `yaml:"syn_classes" hcl:"syn_classes,optional"`
	SynFeats      int     `yaml:"syn_feats" hcl:"syn_feats,optional"`
	SynPIn        float64 `yaml:"syn_p_in" hcl:"syn_p_in,optional"`
	SynPOut       float64 `yaml:"syn_p_out" hcl:"syn_p_out,optional"`
	SynNoise      float64 `yaml:"syn_noise" hcl:"syn_noise,optional"`
	SynTrainRatio float64 `yaml:"syn_train_ratio" hcl:"syn_train_ratio,optional"`
	SynSeed       int64   `yaml:"syn_seed" hcl:"syn_seed,optional"`
}

// DefaultArgs returns the arguments used when nothing is configured.
func DefaultArgs() DataArgs {
	return DataArgs{
		Name:          "synthetic",
		SynNodes:      300,
		SynClasses:    3,
		SynFeats:      16,
		SynPIn:        0.05,
		SynPOut:       0.005,
		SynNoise:      1.0,
		SynTrainRatio: 0.1,
		SynSeed:       1,
	}
}

// RegisterFlags binds the dataset flags to a, using a's current values as
// defaults.
func RegisterFlags(fs *flag.FlagSet, a *DataArgs) {
	fs.StringVar(&a.Name, "dataset", a.Name, "Dataset name ("+strings.Join(Names(), ", ")+")")
	fs.StringVar(&a.Dir, "data-dir", a.Dir, "Directory holding on-disk datasets")
	fs.IntVar(&a.SynNodes, "syn-nodes", a.SynNodes, "Synthetic: number of nodes")
	fs.IntVar(&a.SynClasses, "syn-classes", a.SynClasses, "Synthetic: number of classes")
	fs.IntVar(&a.SynFeats, "syn-feats", a.SynFeats, "Synthetic: feature width")
	fs.Float64Var(&a.SynPIn, "syn-p-in", a.SynPIn, "Synthetic: same-class edge probability")
	fs.Float64Var(&a.SynPOut, "syn-p-out", a.SynPOut, "Synthetic: cross-class edge probability")
	fs.Float64Var(&a.SynNoise, "syn-noise", a.SynNoise, "Synthetic: feature noise standard deviation")
	fs.Float64Var(&a.SynTrainRatio, "syn-train-ratio", a.SynTrainRatio, "Synthetic: fraction of nodes in the train mask")
	fs.Int64Var(&a.SynSeed, "syn-seed", a.SynSeed, "Synthetic: PRNG seed")
}

// Loader builds a dataset from its arguments.
type Loader func(args DataArgs) (*Dataset, error)

var registry = map[string]Loader{}

// Register makes a loader available under name. It panics on duplicates.
func Register(name string, l Loader) {
	if l == nil {
		panic("dataset: Register loader is nil")
	}
	if _, dup := registry[name]; dup {
		panic("dataset: Register called twice for " + name)
	}
	registry[name] = l
}

// Names lists the registered datasets in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load runs the loader registered under args.Name and validates the result.
func Load(args DataArgs) (*Dataset, error) {
	l, ok := registry[args.Name]
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %s)", ErrUnknownDataset, args.Name, strings.Join(Names(), ", "))
	}
	d, err := l(args)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", args.Name, err)
	}
	if d.Name == "" {
		d.Name = args.Name
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func init() {
	Register("synthetic", loadSynthetic)
	Register("cora", planetoidLoader("cora"))
	Register("citeseer", planetoidLoader("citeseer"))
}
