package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors the command-line settings. Pointer fields distinguish
// "absent" from zero values.
type fileConfig struct {
	Data         *string  `toml:"data"`
	Output       *string  `toml:"output"`
	Report       *string  `toml:"report"`
	Epochs       *int     `toml:"epochs"`
	BatchSize    *int     `toml:"batch_size"`
	LearningRate *float64 `toml:"lr"`
	Patience     *int     `toml:"patience"`
	ValFraction  *float64 `toml:"val_fraction"`
	Seed         *int64   `toml:"seed"`
}

// applyConfigFile fills settings from a TOML file. Flags set explicitly on
// the command line keep their value.
func applyConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %v: %v", path, err)
	}

	var fromCommandLine = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		fromCommandLine[f.Name] = true
	})

	if fc.Data != nil && !fromCommandLine["data"] {
		config.dataPath = *fc.Data
	}
	if fc.Output != nil && !fromCommandLine["output"] {
		config.outputPath = *fc.Output
	}
	if fc.Report != nil && !fromCommandLine["report"] {
		config.reportPath = *fc.Report
	}
	if fc.Epochs != nil && !fromCommandLine["epochs"] {
		config.epochs = *fc.Epochs
	}
	if fc.BatchSize != nil && !fromCommandLine["batch-size"] {
		config.batchSize = *fc.BatchSize
	}
	if fc.LearningRate != nil && !fromCommandLine["lr"] {
		config.learningRate = *fc.LearningRate
	}
	if fc.Patience != nil && !fromCommandLine["patience"] {
		config.patience = *fc.Patience
	}
	if fc.ValFraction != nil && !fromCommandLine["val-fraction"] {
		config.valFraction = *fc.ValFraction
	}
	if fc.Seed != nil && !fromCommandLine["seed"] {
		config.seed = *fc.Seed
	}
	return nil
}
