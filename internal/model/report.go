package model

// Term is one additive contribution to the verifiability score. Data carries
// the inputs and formula so the score is fully explainable.
type Term struct {
	Label   string                 `json:"label"`
	Delta   float64                `json:"delta"`
	Applied bool                   `json:"applied"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// VerifiabilityReport is the explainable form of a verifiability score.
type VerifiabilityReport struct {
	Score      float64  `json:"score"`
	Breakdown  []string `json:"breakdown"`
	Terms      []Term   `json:"terms"`
	Verifiable bool     `json:"verifiable"`
}
