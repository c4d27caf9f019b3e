package counter

type State struct {
	Number int `json:"number"`
	Diff   int `json:"diff"`
}

func InitialState() State {
	return State{Number: 0, Diff: 1}
}
