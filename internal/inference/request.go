package inference

// DefaultTemperatures is the diversity sweep evaluated when none is given.
var DefaultTemperatures = []float64{0.5, 1.0, 1.7, 3.0}

// DefaultSteps is the number of ids sampled after the seed.
const DefaultSteps = 50

// Request describes a sweep of generation runs over one seed.
type Request struct {
	Seed         []string
	Temperatures []float64
	Steps        int
	RNGSeed      int64
	Parallel     bool
}

// RequestOptions carries caller overrides; nil fields fall back to defaults.
type RequestOptions struct {
	Seed         []string
	Temperatures []float64

	Steps    *int
	RNGSeed  *int64
	Parallel *bool
}

// GenDefaults are configuration-level defaults applied beneath RequestOptions.
type GenDefaults struct {
	Temperatures []float64
	Steps        *int
	RNGSeed      *int64
}

// ResolveRequest merges opts over defaults over the built-in values.
func ResolveRequest(opts RequestOptions, defaults GenDefaults) Request {
	req := Request{
		Seed:         opts.Seed,
		Temperatures: DefaultTemperatures,
		Steps:        DefaultSteps,
		RNGSeed:      1,
	}

	if len(defaults.Temperatures) > 0 {
		req.Temperatures = defaults.Temperatures
	}
	if defaults.Steps != nil && *defaults.Steps >= 0 {
		req.Steps = *defaults.Steps
	}
	if defaults.RNGSeed != nil {
		req.RNGSeed = *defaults.RNGSeed
	}

	if len(opts.Temperatures) > 0 {
		req.Temperatures = opts.Temperatures
	}
	if opts.Steps != nil {
		req.Steps = *opts.Steps
	}
	if opts.RNGSeed != nil {
		req.RNGSeed = *opts.RNGSeed
	}
	if opts.Parallel != nil {
		req.Parallel = *opts.Parallel
	}

	req.Temperatures = append([]float64(nil), req.Temperatures...)
	return req
}
