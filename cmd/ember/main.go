// Command ember trains and evaluates an MNIST digit classifier on the CPU.
//
// Data can come from the original IDX files (-data), a Kaggle-style CSV
// (-csv), or a built-in synthetic dataset (-synthetic) for smoke runs
// without any downloads.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/dataset/mnist"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/tensor"
	"github.com/ember-ml/ember/internal/train"
)

type backendT = *autodiff.AutodiffBackend[*cpu.Backend]

type config struct {
	dataDir   string
	csvPath   string
	synthetic int
	samples   int
	epochs    int
	batchSize int
	hidden    int
	lr        float64
	momentum  float64
	adam      bool
	seed      int64
	show      int
}

func main() {
	var cfg config
	flag.StringVar(&cfg.dataDir, "data", "", "directory containing the MNIST IDX files")
	flag.StringVar(&cfg.csvPath, "csv", "", "path to a Kaggle-style MNIST CSV file")
	flag.IntVar(&cfg.synthetic, "synthetic", 0, "train on N synthetic samples instead of real data")
	flag.IntVar(&cfg.samples, "samples", 0, "cap the number of samples loaded (0 = all)")
	flag.IntVar(&cfg.epochs, "epochs", 5, "number of training epochs")
	flag.IntVar(&cfg.batchSize, "batch", mnist.DefaultBatchSize, "mini-batch size")
	flag.IntVar(&cfg.hidden, "hidden", 128, "hidden layer width")
	flag.Float64Var(&cfg.lr, "lr", 0.01, "learning rate")
	flag.Float64Var(&cfg.momentum, "momentum", 0, "SGD momentum")
	flag.BoolVar(&cfg.adam, "adam", false, "use Adam instead of SGD")
	flag.Int64Var(&cfg.seed, "seed", 42, "random seed for init and shuffling")
	flag.IntVar(&cfg.show, "show", 1, "number of test samples to render after training")
	flag.Parse()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "ember: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	tensor.Seed(cfg.seed)

	trainSet, testSet, err := loadData(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("train: %d samples, test: %d samples\n", trainSet.Len(), testSet.Len())

	backend := autodiff.New(cpu.New())
	model := buildModel(backend, cfg.hidden)

	var optimizer optim.Optimizer
	if cfg.adam {
		optimizer = optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: float32(cfg.lr)})
	} else {
		optimizer = optim.NewSGD(model.Parameters(), optim.SGDConfig{
			LR:       float32(cfg.lr),
			Momentum: float32(cfg.momentum),
		})
	}

	trainLoader := mnist.NewLoader(trainSet, cfg.batchSize, backend)
	testLoader := mnist.NewLoader(testSet, cfg.batchSize, backend)

	trainer := train.New(backend, model, optimizer, os.Stdout)
	trainer.Fit(trainLoader, cfg.epochs, rand.New(rand.NewSource(cfg.seed)))

	metrics := trainer.Evaluate(testLoader)
	fmt.Printf("test: loss=%.4f accuracy=%.2f%% (%d samples)\n",
		metrics.Loss, metrics.Accuracy*100, metrics.Samples)

	for i := 0; i < cfg.show && i < testSet.Len(); i++ {
		if err := showSample(trainer, backend, testSet, i); err != nil {
			return err
		}
	}
	return nil
}

func loadData(cfg config) (trainSet, testSet *mnist.Dataset, err error) {
	switch {
	case cfg.synthetic > 0:
		trainSet, testSet = mnist.Synthetic(cfg.synthetic).Split(0.9)
	case cfg.csvPath != "":
		data, err := mnist.LoadCSV(cfg.csvPath, cfg.samples)
		if err != nil {
			return nil, nil, err
		}
		trainSet, testSet = data.Split(0.9)
	case cfg.dataDir != "":
		trainSet, err = mnist.LoadIDX(cfg.dataDir, true, cfg.samples)
		if err != nil {
			return nil, nil, err
		}
		testSet, err = mnist.LoadIDX(cfg.dataDir, false, cfg.samples)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("no data source: pass -data, -csv, or -synthetic")
	}
	return trainSet, testSet, nil
}

// buildModel assembles the classifier: 784 -> hidden -> hidden/2 -> 10
// with ReLU between the affine layers and a log-softmax head.
func buildModel(backend backendT, hidden int) *nn.Sequential[backendT] {
	return nn.NewSequential[backendT](
		nn.NewLinear(mnist.ImageSize, hidden, backend),
		nn.NewReLU[backendT](),
		nn.NewLinear(hidden, hidden/2, backend),
		nn.NewReLU[backendT](),
		nn.NewLinear(hidden/2, mnist.NumClasses, backend),
		nn.NewLogSoftmax[backendT](),
	)
}

func showSample(trainer *train.Trainer[*cpu.Backend], backend backendT, data *mnist.Dataset, i int) error {
	image := data.Images[i]

	input, err := tensor.FromSlice(image, tensor.Shape{1, mnist.ImageSize}, backend)
	if err != nil {
		return err
	}

	probs := trainer.Probabilities(input)[0]
	pred := trainer.Predict(input)[0]

	fmt.Printf("\nsample %d (label %d, predicted %d):\n", i, data.Labels[i], pred)
	if err := train.RenderImage(os.Stdout, image); err != nil {
		return err
	}
	return train.RenderPrediction(os.Stdout, probs)
}
