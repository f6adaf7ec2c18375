package rte

type state int

const (
	uninitialized state = iota
	initialized
	terminated
)

func (s state) String() string {
	switch s {
	case uninitialized:
		return "uninitialized"
	case initialized:
		return "initialized"
	default:
		return "terminated"
	}
}

// kind groups the runtime functions by how the state machine treats them.
type kind int

const (
	kindInitialize kind = iota
	kindData            // LMSGetValue, LMSSetValue, LMSCommit
	kindFinish
)

type transition struct {
	next    state
	allowed bool
	code    Code // reported when not allowed
}

// transitions is the full legality table; terminated has no way out.
var transitions = map[state]map[kind]transition{
	uninitialized: {
		kindInitialize: {next: initialized, allowed: true},
		kindData:       {next: uninitialized, code: NotInitialized},
		kindFinish:     {next: uninitialized, code: NotInitialized},
	},
	initialized: {
		kindInitialize: {next: initialized, code: GeneralException},
		kindData:       {next: initialized, allowed: true},
		kindFinish:     {next: terminated, allowed: true},
	},
	terminated: {
		kindInitialize: {next: terminated, code: GeneralException},
		kindData:       {next: terminated, code: GeneralException},
		kindFinish:     {next: terminated, code: GeneralException},
	},
}
