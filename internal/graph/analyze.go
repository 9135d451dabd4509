package graph

// Timing holds the CPM figures of one task, in minutes from the project start.
type Timing struct {
	TaskID      int  `json:"taskId"`
	EarlyStart  int  `json:"earlyStart"`
	EarlyFinish int  `json:"earlyFinish"`
	LateStart   int  `json:"lateStart"`
	LateFinish  int  `json:"lateFinish"`
	Slack       int  `json:"slack"`
	Critical    bool `json:"critical"`
}

// Analysis is the result of a forward and backward CPM pass.
type Analysis struct {
	Timings       map[int]*Timing `json:"timings"`
	Order         []int           `json:"order"`
	TotalDuration int             `json:"totalDuration"`
}

// Timing returns the figures for a task, or nil if unknown.
func (a *Analysis) Timing(id int) *Timing {
	if a == nil {
		return nil
	}
	return a.Timings[id]
}

// Analyze runs the critical path method over the graph.
// Unset durations count as zero. Tasks with zero slack are marked critical.
func Analyze(g *Graph) (*Analysis, error) {
	order, err := Order(g)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Timings: make(map[int]*Timing, len(order)),
		Order:   order,
	}

	// Forward pass
	for _, id := range order {
		tm := &Timing{TaskID: id}
		for _, req := range g.DependenciesOf(id) {
			if ef := a.Timings[req].EarlyFinish; ef > tm.EarlyStart {
				tm.EarlyStart = ef
			}
		}
		tm.EarlyFinish = tm.EarlyStart + g.Task(id).Duration()
		if tm.EarlyFinish > a.TotalDuration {
			a.TotalDuration = tm.EarlyFinish
		}
		a.Timings[id] = tm
	}

	// Backward pass
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		tm := a.Timings[id]
		tm.LateFinish = a.TotalDuration
		for _, dep := range g.NeighborsOf(id) {
			if ls := a.Timings[dep].LateStart; ls < tm.LateFinish {
				tm.LateFinish = ls
			}
		}
		tm.LateStart = tm.LateFinish - g.Task(id).Duration()
		tm.Slack = tm.LateStart - tm.EarlyStart
		tm.Critical = tm.Slack == 0
	}

	return a, nil
}
