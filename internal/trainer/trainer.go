package trainer

import (
	"log"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/sailsim/sailtrain/internal/dataset"
	"github.com/sailsim/sailtrain/internal/ml"
	"github.com/sailsim/sailtrain/internal/nn"
)

type Config struct {
	Epochs         int
	BatchSize      int
	LearningRate   float64
	Patience       int
	CheckpointPath string
	Seed           int64
}

// Result describes a finished run. BestLoss is the lowest average validation
// loss seen, not necessarily the last epoch's.
type Result struct {
	BestLoss  float64
	BestEpoch int
	Epochs    int
	Stopped   bool // stopped early on patience
	TrainLoss []float64
	ValLoss   []float64
}

type Trainer struct {
	config     Config
	model      *nn.Model
	training   *dataset.View
	validation *dataset.View
	cost       ml.Cost
	rnd        *rand.Rand
}

func NewTrainer(model *nn.Model, training, validation *dataset.View, config Config) *Trainer {
	return &Trainer{
		config:     config,
		model:      model,
		training:   training,
		validation: validation,
		cost:       &ml.MSECost{},
		rnd:        rand.New(rand.NewSource(config.Seed)),
	}
}

func (t *Trainer) Train() (*Result, error) {
	log.Println("Train started")
	defer log.Println("Train finished")

	if t.training.Len() < 100 {
		log.Printf("Warning: very small dataset (%v training samples), model quality will be limited",
			t.training.Len())
	}

	var result = &Result{BestLoss: math.Inf(1)}
	var stall int

	for epoch := 1; epoch <= t.config.Epochs; epoch++ {
		var learningRate = t.cosineRate(epoch - 1)
		var trainLoss = t.runEpoch(learningRate)
		var valLoss = t.validate()

		result.TrainLoss = append(result.TrainLoss, trainLoss)
		result.ValLoss = append(result.ValLoss, valLoss)
		result.Epochs = epoch

		log.Printf("Epoch %3d/%d | Train loss: %.6f | Val loss: %.6f | LR: %.2e",
			epoch, t.config.Epochs, trainLoss, valLoss, learningRate)

		if valLoss < result.BestLoss {
			result.BestLoss = valLoss
			result.BestEpoch = epoch
			stall = 0
			if t.config.CheckpointPath != "" {
				if err := t.model.SaveCheckpoint(t.config.CheckpointPath); err != nil {
					return nil, err
				}
				log.Printf("Saved best model (val_loss=%.6f)", valLoss)
			}
		} else {
			stall++
			if stall >= t.config.Patience {
				log.Printf("Early stopping after %v epochs (patience=%v)", epoch, t.config.Patience)
				result.Stopped = true
				break
			}
		}
	}

	return result, nil
}

// cosineRate anneals the base learning rate toward zero over Epochs steps.
func (t *Trainer) cosineRate(step int) float64 {
	return t.config.LearningRate * (1 + math.Cos(math.Pi*float64(step)/float64(t.config.Epochs))) / 2
}

// runEpoch iterates the training view in shuffled fixed-size batches, dropping
// the short tail, and returns the average batch loss.
func (t *Trainer) runEpoch(learningRate float64) float64 {
	var order = t.rnd.Perm(t.training.Len())
	var totalLoss float64
	var batches int
	for i := 0; i+t.config.BatchSize <= len(order); i += t.config.BatchSize {
		var x, y = makeBatch(t.training, order[i:i+t.config.BatchSize])
		var pred = t.model.Forward(x)
		t.model.Backward(t.lossGrad(pred, y))
		t.model.ApplyGradients(learningRate)
		totalLoss += t.batchLoss(pred, y)
		batches++
	}
	return totalLoss / float64(max(batches, 1))
}

// validate iterates the validation view in order, tail included, forward only.
func (t *Trainer) validate() float64 {
	var totalLoss float64
	var batches int
	for lo := 0; lo < t.validation.Len(); lo += t.config.BatchSize {
		var hi = min(lo+t.config.BatchSize, t.validation.Len())
		var indices = make([]int, hi-lo)
		for i := range indices {
			indices[i] = lo + i
		}
		var x, y = makeBatch(t.validation, indices)
		totalLoss += t.batchLoss(t.model.Forward(x), y)
		batches++
	}
	return totalLoss / float64(max(batches, 1))
}

func makeBatch(view *dataset.View, positions []int) (x, y *mat.Dense) {
	x = mat.NewDense(len(positions), dataset.InputDim, nil)
	y = mat.NewDense(len(positions), dataset.OutputDim, nil)
	for i, position := range positions {
		var features, targets = view.At(position)
		x.SetRow(i, features)
		y.SetRow(i, targets)
	}
	return x, y
}

// batchLoss is the squared error averaged over every element of the batch.
func (t *Trainer) batchLoss(pred, y *mat.Dense) float64 {
	var rows, cols = pred.Dims()
	var total float64
	for i := 0; i < rows; i++ {
		var p = pred.RawRowView(i)
		var target = y.RawRowView(i)
		for j := range p {
			total += t.cost.Cost(p[j], target[j])
		}
	}
	return total / float64(rows*cols)
}

// lossGrad is the cost gradient with respect to the predictions under mean
// reduction.
func (t *Trainer) lossGrad(pred, y *mat.Dense) *mat.Dense {
	var rows, cols = pred.Dims()
	var grad = mat.NewDense(rows, cols, nil)
	var scale = 1 / float64(rows*cols)
	for i := 0; i < rows; i++ {
		var p = pred.RawRowView(i)
		var target = y.RawRowView(i)
		var g = grad.RawRowView(i)
		for j := range p {
			g[j] = t.cost.CostPrime(p[j], target[j]) * scale
		}
	}
	return grad
}
