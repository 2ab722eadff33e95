package agent

// Weights are the scoring constants of the decision engine. They are tuning
// parameters; only their ordering matters for behaviour.
type Weights struct {
	// Number scores (start mode).
	Seven      float64 // the number is 7
	Complement float64 // pairs with a number this agent already collected
	Extreme    float64 // smallest or largest number still in play
	Scarce     float64 // at most ScarceAt copies at unknown locations
	PerCopy    float64 // per copy at an unknown location
	ScarceAt   int

	// Position scores (start mode).
	KnownMatch    float64 // slot known to hold the number
	UnknownBase   float64 // any unknown hand extreme
	UnknownSlope  float64 // scaled toward low numbers at heads, high at tails
	UnknownPublic float64 // unknown public slot, scaled by probability

	// Chase mode.
	ChaseCertain    float64 // slot known to hold the target
	ChaseMultiplier float64 // per unit of probability
}

// DefaultWeights returns the standard tuning.
func DefaultWeights() Weights {
	return Weights{
		Seven:           50,
		Complement:      40,
		Extreme:         30,
		Scarce:          20,
		PerCopy:         10,
		ScarceAt:        2,
		KnownMatch:      100,
		UnknownBase:     10,
		UnknownSlope:    30,
		UnknownPublic:   40,
		ChaseCertain:    1000,
		ChaseMultiplier: 100,
	}
}
