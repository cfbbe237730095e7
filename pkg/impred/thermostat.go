package impred

// Thermostat produces the temperature of each iteration.
type Thermostat interface {
	// Plan starts a run of n iterations.
	Plan(n int)
	// Next returns the temperature of the next iteration.
	Next() float64
}

// Constant keeps the temperature fixed.
type Constant struct {
	T float64
}

func (Constant) Plan(int) {}

func (c Constant) Next() float64 { return c.T }

// LinearCooldown lowers the temperature from 1 toward 0 across the planned
// run: iteration i of n has temperature (n-i)/n. Every Plan restarts the
// ramp; iterations past the end run at 0.
type LinearCooldown struct {
	total   int
	current int
}

// NewLinearCooldown returns a cool-down that has not been planned yet.
func NewLinearCooldown() *LinearCooldown { return &LinearCooldown{} }

func (l *LinearCooldown) Plan(n int) {
	l.total = n
	l.current = 0
}

func (l *LinearCooldown) Next() float64 {
	if l.total <= 0 || l.current >= l.total {
		l.current++
		return 0
	}
	t := float64(l.total-l.current) / float64(l.total)
	l.current++
	return t
}
