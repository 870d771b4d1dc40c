package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"gopkg.in/yaml.v3"

	"graphconv-forge/internal/dataset"
	"graphconv-forge/internal/graph"
)

var validate = validator.New()

// Config captures the runtime knobs for a training run.
type Config struct {
	Data *dataset.DataArgs `yaml:"data" hcl:"data,block" validate:"required"`

	Dropout       float64 `yaml:"dropout" hcl:"dropout,optional" validate:"gte=0,lt=1"`
	GPU           int     `yaml:"gpu" hcl:"gpu,optional" validate:"gte=-1"`
	LearningRate  float64 `yaml:"lr" hcl:"lr,optional" validate:"gt=0"`
	Epochs        int     `yaml:"n_epochs" hcl:"n_epochs,optional" validate:"gt=0"`
	Hidden        int     `yaml:"n_hidden" hcl:"n_hidden,optional" validate:"gt=0"`
	Layers        int     `yaml:"n_layers" hcl:"n_layers,optional" validate:"gte=1"`
	Normalization string  `yaml:"normalization" hcl:"normalization,optional" validate:"oneof=sym left none"`
	SelfLoop      bool    `yaml:"self_loop" hcl:"self_loop,optional"`
	WeightDecay   float64 `yaml:"weight_decay" hcl:"weight_decay,optional" validate:"gte=0"`
	Seed          int64   `yaml:"seed" hcl:"seed,optional"`
	LogEvery      int     `yaml:"log_every" hcl:"log_every,optional"`
	MetricsOut    string  `yaml:"metrics_out" hcl:"metrics_out,optional"`
	Checkpoint    string  `yaml:"checkpoint" hcl:"checkpoint,optional"`
}

// Default returns the configuration used when no file or flag says otherwise.
func Default() *Config {
	data := dataset.DefaultArgs()
	return &Config{
		Data:          &data,
		Dropout:       0.5,
		GPU:           -1,
		LearningRate:  1e-2,
		Epochs:        200,
		Hidden:        16,
		Layers:        1,
		Normalization: string(graph.Sym),
		WeightDecay:   5e-4,
		Seed:          1,
		LogEvery:      1,
	}
}

// Load reads a YAML (.yaml, .yml) or HCL (.hcl) file on top of Default and
// validates the result.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(src, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case ".hcl":
		if err := hclsimple.Decode(filepath.Base(path), src, nil, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("parse config: unsupported extension %q (want .yaml, .yml or .hcl)", ext)
	}
	if cfg.Data == nil {
		data := dataset.DefaultArgs()
		cfg.Data = &data
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RegisterFlags binds every knob, dataset flags included, to c. The current
// values of c become the flag defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	dataset.RegisterFlags(fs, c.Data)
	fs.Float64Var(&c.Dropout, "dropout", c.Dropout, "Dropout probability")
	fs.IntVar(&c.GPU, "gpu", c.GPU, "GPU index, -1 for CPU")
	fs.Float64Var(&c.LearningRate, "lr", c.LearningRate, "Learning rate")
	fs.IntVar(&c.Epochs, "n-epochs", c.Epochs, "Number of training epochs")
	fs.IntVar(&c.Hidden, "n-hidden", c.Hidden, "Number of hidden GCN units")
	fs.IntVar(&c.Layers, "n-layers", c.Layers, "Number of hidden GCN layers")
	fs.StringVar(&c.Normalization, "normalization", c.Normalization, "Graph normalization (sym, left, none)")
	fs.BoolVar(&c.SelfLoop, "self-loop", c.SelfLoop, "Add a self-loop to every node")
	fs.Float64Var(&c.WeightDecay, "weight-decay", c.WeightDecay, "Weight for L2 loss")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "PRNG seed for initialization and dropout")
	fs.IntVar(&c.LogEvery, "log-every", c.LogEvery, "Log every N timed epochs")
	fs.StringVar(&c.MetricsOut, "metrics-out", c.MetricsOut, "Write Prometheus metrics to this textfile")
	fs.StringVar(&c.Checkpoint, "checkpoint", c.Checkpoint, "Write trained parameters to this file")
}

// Overrides captures CLI supplied values: From holds the parsed flags and
// Set names the flags that were given explicitly.
type Overrides struct {
	From *Config
	Set  map[string]bool
}

// ApplyOverrides copies every explicitly set flag from o.From into c.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.From == nil {
		return
	}
	f := o.From
	for name := range o.Set {
		switch name {
		case "dataset":
			c.Data.Name = f.Data.Name
		case "data-dir":
			c.Data.Dir = f.Data.Dir
		case "syn-nodes":
			c.Data.SynNodes = f.Data.SynNodes
		case "syn-classes":
			c.Data.SynClasses = f.Data.SynClasses
		case "syn-feats":
			c.Data.SynFeats = f.Data.SynFeats
		case "syn-p-in":
			c.Data.SynPIn = f.Data.SynPIn
		case "syn-p-out":
			c.Data.SynPOut = f.Data.SynPOut
		case "syn-noise":
			c.Data.SynNoise = f.Data.SynNoise
		case "syn-train-ratio":
			c.Data.SynTrainRatio = f.Data.SynTrainRatio
		case "syn-seed":
			c.Data.SynSeed = f.Data.SynSeed
		case "dropout":
			c.Dropout = f.Dropout
		case "gpu":
			c.GPU = f.GPU
		case "lr":
			c.LearningRate = f.LearningRate
		case "n-epochs":
			c.Epochs = f.Epochs
		case "n-hidden":
			c.Hidden = f.Hidden
		case "n-layers":
			c.Layers = f.Layers
		case "normalization":
			c.Normalization = f.Normalization
		case "self-loop":
			c.SelfLoop = f.SelfLoop
		case "weight-decay":
			c.WeightDecay = f.WeightDecay
		case "seed":
			c.Seed = f.Seed
		case "log-every":
			c.LogEvery = f.LogEvery
		case "metrics-out":
			c.MetricsOut = f.MetricsOut
		case "checkpoint":
			c.Checkpoint = f.Checkpoint
		}
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Normalization == "" {
		c.Normalization = string(graph.Sym)
	}
	c.Normalization = strings.ToLower(c.Normalization)
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 1
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
