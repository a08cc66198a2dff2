// Command disk trains the 2-25-25-25-2 network on the disk classification
// task and prints the loss and error rates after every epoch.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/born-ml/siamese/backend/cpu"
	"github.com/born-ml/siamese/internal/disk"
	"github.com/born-ml/siamese/nn"
)

func main() {
	epochs := flag.Int("epochs", 50, "Number of training epochs")
	lr := flag.Float64("lr", 0.1, "SGD learning rate")
	momentum := flag.Float64("momentum", 0, "SGD momentum")
	batch := flag.Int("batch", 100, "Mini-batch size")
	samples := flag.Int("samples", 1000, "Points per split")
	seed := flag.Int64("seed", 0, "PRNG seed")
	verbose := flag.Bool("v", false, "Log progress to stderr")

	flag.Parse()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := cpu.New()
	logger.Info("device selected", "backend", backend.Describe())

	history, model, err := disk.Train(ctx, backend, disk.Config{
		Samples:   *samples,
		Epochs:    *epochs,
		LR:        float32(*lr),
		Momentum:  float32(*momentum),
		BatchSize: *batch,
		Seed:      *seed,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	for i, e := range history {
		fmt.Printf("epoch %3d  loss %.4f  train error %5.2f%%  test error %5.2f%%\n",
			i+1, e.Loss, 100*e.TrainError, 100*e.TestError)
	}
	fmt.Printf("%d parameters\n", nn.CountParameters(model))
}
