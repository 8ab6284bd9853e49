package api

type EncodeRequest struct {
	Tokens []string `json:"tokens"`
}

type EncodeResponse struct {
	IDs []int `json:"ids"`
}

type DecodeRequest struct {
	IDs []int `json:"ids"`
}

type DecodeResponse struct {
	Tokens []string `json:"tokens"`
	Text   string   `json:"text"`
}

type GenerateRequest struct {
	Seed         []string  `json:"seed"`
	Temperatures []float64 `json:"temperatures,omitempty"`
	Steps        *int      `json:"steps,omitempty"`
	RNGSeed      *int64    `json:"rng_seed,omitempty"`
	Parallel     *bool     `json:"parallel,omitempty"`
	Store        *bool     `json:"store,omitempty"`
}

type GenerateResponse struct {
	ID        string             `json:"id"`
	Object    string             `json:"object"`
	CreatedAt int64              `json:"created_at"`
	Seed      []string           `json:"seed"`
	Steps     int                `json:"steps"`
	Results   []GenerationResult `json:"results"`
}

type GenerationResult struct {
	ID          string          `json:"id"`
	Temperature float64         `json:"temperature"`
	Text        string          `json:"text"`
	IDs         []int           `json:"ids"`
	Usage       GenerationUsage `json:"usage"`
}

type GenerationUsage struct {
	PrimingSteps    int     `json:"priming_steps"`
	GeneratedTokens int     `json:"generated_tokens"`
	TokensPerSecond float64 `json:"tokens_per_second"`
}

type VocabularyResponse struct {
	Object   string `json:"object"`
	Mode     string `json:"mode"`
	Size     int    `json:"size"`
	Sentinel string `json:"sentinel,omitempty"`
}

type DeleteGenerationResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}
