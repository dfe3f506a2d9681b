package sat

// EMA is an exponential moving average, used to track the recent learnt
// clause LBD (literal block distance) for the optional Glucose-style restart
// policy: a restart is triggered when the short-run average worsens sharply
// relative to the long-run average.
type EMA struct {
	decay float64
	value float64
	init  bool
}

// NewEMA returns an EMA with the given decay in (0, 1); values closer to 1
// weigh history more heavily.
func NewEMA(decay float64) EMA {
	return EMA{decay: decay}
}

// Add folds a new sample into the average.
func (e *EMA) Add(x float64) {
	if !e.init {
		e.init = true
		e.value = x
		return
	}
	e.value = e.decay*e.value + x*(1-e.decay)
}

// Value returns the current average.
func (e *EMA) Value() float64 {
	return e.value
}
