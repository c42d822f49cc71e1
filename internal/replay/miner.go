package replay

// Miner accumulates mined practice material across a whole session.
// Runs append to it; it is never reset between resumes.
type Miner struct {
	Words       []string
	Transitions []string
}

// Absorb appends one run's mined lists.
func (m *Miner) Absorb(res Result) {
	m.Words = append(m.Words, res.Words...)
	m.Transitions = append(m.Transitions, res.Transitions...)
}
