package dataset

// FeatureColumns is the canonical input order of the heading model. The CSV
// may store columns in any order; tensors always follow this one.
var FeatureColumns = []string{
	"twaSin", "twaCos", "windSpeed", "boatSpeed",
	"bearingToMarkSin", "bearingToMarkCos", "distToMark",
	"legUpwind", "legDownwind", "tack", "raceTime",
	"stallTimer", "tackTimer",
	"near1Bearing", "near1Dist",
	"near2Bearing", "near2Dist",
	"near3Bearing", "near3Dist",
}

// TargetColumns holds the sin/cos encoding of the demonstrated true wind angle.
var TargetColumns = []string{"target_twa_sin", "target_twa_cos"}

const (
	InputDim  = 19
	OutputDim = 2
)
