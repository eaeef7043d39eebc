package main

import (
	"flag"
	"log"
	"math/rand"

	"github.com/sailsim/sailtrain/internal/dataset"
	"github.com/sailsim/sailtrain/internal/nn"
	"github.com/sailsim/sailtrain/internal/trainer"
)

type Config struct {
	dataPath     string
	outputPath   string
	configPath   string
	reportPath   string
	epochs       int
	batchSize    int
	learningRate float64
	patience     int
	valFraction  float64
	seed         int64
}

var config Config

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	flag.StringVar(&config.dataPath, "data", "data/training_data.csv", "Path to training CSV")
	flag.StringVar(&config.outputPath, "output", "checkpoints/sailing_ai.pt", "Checkpoint output path")
	flag.StringVar(&config.configPath, "config", "", "Optional TOML config file")
	flag.StringVar(&config.reportPath, "report", "", "Optional HTML loss-curve report path")
	flag.IntVar(&config.epochs, "epochs", 50, "Number of epochs")
	flag.IntVar(&config.batchSize, "batch-size", 256, "Mini-batch size")
	flag.Float64Var(&config.learningRate, "lr", 1e-3, "Initial learning rate")
	flag.IntVar(&config.patience, "patience", 10, "Early-stopping patience in epochs")
	flag.Float64Var(&config.valFraction, "val-fraction", 0.2, "Validation split fraction")
	flag.Int64Var(&config.seed, "seed", 42, "Split and shuffle seed")
	flag.Parse()

	if config.configPath != "" {
		if err := applyConfigFile(config.configPath); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("%+v", config)

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	training, validation, err := dataset.LoadAndSplit(config.dataPath, config.valFraction, config.seed)
	if err != nil {
		return err
	}
	log.Printf("Training samples: %v, Validation samples: %v", training.Len(), validation.Len())

	var model = nn.NewModel(rand.New(rand.NewSource(config.seed)))
	var t = trainer.NewTrainer(model, training, validation, trainer.Config{
		Epochs:         config.epochs,
		BatchSize:      config.batchSize,
		LearningRate:   config.learningRate,
		Patience:       config.patience,
		CheckpointPath: config.outputPath,
		Seed:           config.seed,
	})
	result, err := t.Train()
	if err != nil {
		return err
	}
	log.Printf("Training complete. Best validation loss: %.6f (epoch %v)", result.BestLoss, result.BestEpoch)
	log.Println("Model saved to", config.outputPath)

	if config.reportPath != "" {
		if err := trainer.WriteReport(result, config.reportPath); err != nil {
			return err
		}
		log.Println("Stored report", config.reportPath)
	}
	return nil
}
