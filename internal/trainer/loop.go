package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"graphconv-forge/internal/dataset"
	"graphconv-forge/internal/device"
	"graphconv-forge/internal/graph"
	"graphconv-forge/internal/metrics"
	"graphconv-forge/internal/model"
	"graphconv-forge/internal/optim"
)

// warmupEpochs are run but excluded from timing.
const warmupEpochs = 3

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Dataset       *dataset.Dataset
	Device        device.Context
	Hidden        int
	Layers        int
	Dropout       float64
	LearningRate  float64
	WeightDecay   float64
	Normalization graph.Normalization
	SelfLoop      bool
	Epochs        int
	LogEvery      int
	Seed          int64
	// Recorder is optional.
	Recorder *metrics.Recorder
}

// Result is the outcome of a completed run.
type Result struct {
	Model    *model.GCN
	Losses   []float64
	TrainAcc float64
	ValAcc   float64
	TestAcc  float64
	Timing   metrics.Snapshot
}

// Run trains a GCN on cfg.Dataset for cfg.Epochs full-graph epochs and
// evaluates it. Cancellation is checked between epochs.
func Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if cfg.Dataset == nil {
		return nil, errors.New("trainer: dataset is nil")
	}
	if cfg.Epochs <= 0 {
		return nil, errors.New("trainer: epochs must be > 0")
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 1
	}
	data := cfg.Dataset

	g, err := data.Graph()
	if err != nil {
		return nil, fmt.Errorf("trainer: build graph: %w", err)
	}
	if cfg.SelfLoop {
		g = g.AddSelfLoops()
	}
	coef, err := g.Coefficients(cfg.Normalization)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	log.Printf("dataset=%s nodes=%d edges=%d classes=%d features=%d train=%d val=%d test=%d device=%s",
		data.Name,
		g.NumNodes(),
		g.NumEdges(),
		data.NumClasses,
		data.NumFeatures(),
		dataset.CountMask(data.TrainMask),
		dataset.CountMask(data.ValMask),
		dataset.CountMask(data.TestMask),
		cfg.Device,
	)
	if cfg.Recorder != nil {
		cfg.Recorder.GraphNodes.Set(float64(g.NumNodes()))
		cfg.Recorder.GraphEdges.Set(float64(g.NumEdges()))
	}

	mdl, err := model.NewGCN(g, coef, model.Options{
		InFeats: data.NumFeatures(),
		Hidden:  cfg.Hidden,
		Classes: data.NumClasses,
		Layers:  cfg.Layers,
		Dropout: cfg.Dropout,
		Seed:    cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	for _, l := range mdl.Layers() {
		log.Printf("layer %s", l)
	}
	for _, p := range mdl.Params() {
		r, c := p.Value.Dims()
		log.Printf("param name=%s shape=(%d, %d)", p.Name, r, c)
	}

	opt, err := optim.NewAdam(mdl.Params(), optim.AdamConfig{
		LearningRate: cfg.LearningRate,
		WeightDecay:  cfg.WeightDecay,
	})
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}

	batch := model.Batch{Features: data.Features, Labels: data.Labels, Mask: data.TrainMask}
	window := metrics.Window{Warmup: warmupEpochs, Edges: g.NumEdges()}
	res := &Result{Model: mdl, Losses: make([]float64, 0, cfg.Epochs)}

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		loss := TrainStep(mdl, opt, batch)
		elapsed := time.Since(start)

		res.Losses = append(res.Losses, loss)
		timed := window.Record(epoch, elapsed, loss)
		snap := window.Snapshot()
		if cfg.Recorder != nil {
			cfg.Recorder.ObserveEpoch(elapsed, loss, timed, snap)
		}

		if timed && (epoch-warmupEpochs)%cfg.LogEvery == 0 {
			log.Printf("epoch=%05d loss=%.4f time_s=%.4f kteps=%.2f",
				epoch,
				snap.LastLoss,
				snap.MeanEpoch.Seconds(),
				snap.KTEPS,
			)
		}
	}
	res.Timing = window.Snapshot()

	logits := mdl.Forward(data.Features, false)
	res.TrainAcc = model.Accuracy(logits, data.Labels, data.TrainMask)
	res.ValAcc = model.Accuracy(logits, data.Labels, data.ValMask)
	res.TestAcc = model.Accuracy(logits, data.Labels, data.TestMask)

	if cfg.Recorder != nil {
		cfg.Recorder.Accuracy.WithLabelValues("train").Set(res.TrainAcc)
		cfg.Recorder.Accuracy.WithLabelValues("val").Set(res.ValAcc)
		cfg.Recorder.Accuracy.WithLabelValues("test").Set(res.TestAcc)
	}
	if dataset.CountMask(data.ValMask) > 0 {
		log.Printf("val_accuracy=%.2f%%", res.ValAcc*100)
	}
	if dataset.CountMask(data.TestMask) > 0 {
		log.Printf("test_accuracy=%.2f%%", res.TestAcc*100)
	}
	log.Printf("final_accuracy=%.2f%%", res.TrainAcc*100)

	return res, nil
}

// TrainStep runs one forward/backward pass over the whole graph, applies
// one optimizer update and returns the masked loss.
func TrainStep(m model.Model, opt *optim.Adam, batch model.Batch) float64 {
	model.ZeroGrad(m.Params())
	logits := m.Forward(batch.Features, true)
	loss, grad := model.SoftmaxCrossEntropy(logits, batch.Labels, batch.Mask)
	m.Backward(grad)
	opt.Step()
	return loss
}
