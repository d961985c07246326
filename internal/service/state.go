package service

type State int32

const (
	StateIdle State = iota
	StateLoading
	StateMatching
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateLoading:
		return "LOADING"
	case StateMatching:
		return "MATCHING"
	case StateSubmitting:
		return "SUBMITTING"
	default:
		return "UNKNOWN"
	}
}
