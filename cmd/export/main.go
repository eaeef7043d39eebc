package main

import (
	"flag"
	"log"
	"math/rand"

	"github.com/sailsim/sailtrain/internal/dataset"
	"github.com/sailsim/sailtrain/internal/nn"
	"github.com/sailsim/sailtrain/internal/onnx"
)

type Config struct {
	checkpointPath string
	outputPath     string
}

var config Config

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	flag.StringVar(&config.checkpointPath, "checkpoint", "checkpoints/sailing_ai.pt", "Trained checkpoint path")
	flag.StringVar(&config.outputPath, "output", "../server/models/sailing_ai.onnx", "ONNX output path")
	flag.Parse()

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var model = nn.NewModel(rand.New(rand.NewSource(0)))
	if err := model.LoadCheckpoint(config.checkpointPath); err != nil {
		return err
	}

	if err := onnx.Export(model, config.outputPath); err != nil {
		return err
	}
	log.Println("ONNX model exported to:", config.outputPath)
	log.Printf("Input shape: (batch, %v)", dataset.InputDim)
	log.Printf("Output shape: (batch, %v)  [sin(twa), cos(twa)]", dataset.OutputDim)
	return nil
}
