package rte

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
	"github.com/Hanyshennawy/moe-scorm-lms/rte/flush"
)

var ErrUnknownFunction = errors.New("unknown runtime function")

type (
	Options struct {
		Sync flush.Options
	}

	// Function is one entry of the function table handed to content.
	Function func(args ...string) string

	interaction struct {
		id       string
		kind     string
		response string
		result   string
		weight   *float64
		latency  string
		patterns map[int]string
		sending  bool // handed to a flush, outcome not known yet
		sent     bool
	}

	// API is the runtime of one launch of one course. Content talks to it through the eight
	// LMS functions; reads and writes are served from a local mirror and reach the backend via the syncer.
	API struct {
		mu        sync.Mutex
		state     state
		lastError Code

		courseID  string
		sessionID string
		transport flush.Transport
		opts      Options
		syncer    *flush.Syncer

		mirror         map[string]string
		written        map[string]bool
		sessionSeconds int64
		interactions   []*interaction
	}
)

// Launch asks the backend to start a session and returns a runtime seeded with the learner's data.
// The runtime stays uninitialized until content calls LMSInitialize.
func Launch(ctx context.Context, transport flush.Transport, courseID string, opts Options) (*API, error) {
	launch, err := transport.Initialize(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "initializing session")
	}
	mirror := make(map[string]string, len(launch.ScormData))
	for k, v := range launch.ScormData {
		mirror[k] = v
	}
	api := &API{
		courseID:  courseID,
		sessionID: launch.SessionID,
		transport: transport,
		opts:      opts,
		mirror:    mirror,
		written:   make(map[string]bool),
	}
	api.syncer = flush.New(transport, courseID, launch.SessionID, api.snapshot, opts.Sync)
	return api, nil
}

func (api *API) SessionID() string { return api.sessionID }

// enter applies the state machine for a call. The lock must be held.
func (api *API) enter(k kind) bool {
	t := transitions[api.state][k]
	if !t.allowed {
		api.lastError = t.code
		return false
	}
	api.state = t.next
	api.lastError = NoError
	return true
}

func (api *API) fail(code Code) string {
	api.lastError = code
	return "false"
}

func (api *API) LMSInitialize(param string) string {
	api.mu.Lock()
	defer api.mu.Unlock()

	if param != "" && api.state == uninitialized {
		return api.fail(InvalidArgument)
	}
	if !api.enter(kindInitialize) {
		return "false"
	}
	api.syncer.Start()
	return "true"
}

func (api *API) LMSFinish(param string) string {
	api.mu.Lock()
	defer api.mu.Unlock()

	if param != "" && api.state == initialized {
		return api.fail(InvalidArgument)
	}
	if !api.enter(kindFinish) {
		return "false"
	}
	api.syncer.Finish()
	return "true"
}

func (api *API) LMSCommit(param string) string {
	api.mu.Lock()
	defer api.mu.Unlock()

	if !api.enter(kindData) {
		return "false"
	}
	if param != "" {
		return api.fail(InvalidArgument)
	}
	api.syncer.Commit()
	return "true"
}

func (api *API) LMSGetValue(element string) string {
	api.mu.Lock()
	defer api.mu.Unlock()

	if !api.enter(kindData) {
		return ""
	}
	if value, hasChildren, ok := cmi.Children(element); ok {
		if !hasChildren {
			api.lastError = CannotHaveChildren
		}
		return value
	}
	if element == cmi.InteractionsCount {
		return strconv.Itoa(len(api.interactions))
	}
	if _, _, ok := cmi.ParseInteraction(element); ok {
		api.lastError = WriteOnlyElement
		return ""
	}
	access, ok := cmi.Lookup(element)
	switch {
	case !ok:
		api.lastError = NotImplemented
		return ""
	case access == cmi.WriteOnly:
		api.lastError = WriteOnlyElement
		return ""
	}
	return api.mirror[element]
}

func (api *API) LMSSetValue(element, value string) string {
	api.mu.Lock()
	defer api.mu.Unlock()

	if !api.enter(kindData) {
		return "false"
	}
	if strings.HasSuffix(element, "._children") || strings.HasSuffix(element, "._count") {
		return api.fail(InvalidSetValue)
	}
	if index, field, ok := cmi.ParseInteraction(element); ok {
		return api.setInteraction(index, field, value)
	}

	access, ok := cmi.Lookup(element)
	if !ok {
		// unknown elements are accepted and dropped
		return "true"
	}
	if access == cmi.ReadOnly {
		return api.fail(ReadOnlyElement)
	}

	switch {
	case cmi.IsNumeric(element):
		value = strings.TrimSpace(value)
		if value != "" {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return api.fail(IncorrectDataType)
			}
		}
	case element == cmi.LessonStatus:
		if !cmi.IsVocabulary(value) {
			return api.fail(IncorrectDataType)
		}
		value = cmi.Normalize(value).Vocabulary()
	case element == cmi.SessionTime:
		if !cmi.IsTimespan(value) {
			return api.fail(IncorrectDataType)
		}
		api.sessionSeconds = cmi.DecodeTime(value)
		return "true"
	}

	api.mirror[element] = value
	api.written[element] = true
	if cmi.IsHighValue(element) {
		api.syncer.Push(element, value)
	}
	return "true"
}

func (api *API) setInteraction(index int, field, value string) string {
	if index > len(api.interactions) {
		return api.fail(InvalidArgument)
	}
	if index == len(api.interactions) {
		api.interactions = append(api.interactions, &interaction{patterns: make(map[int]string)})
	}
	in := api.interactions[index]
	if in.sent || in.sending {
		// handed over; interactions are write-once
		return "true"
	}

	switch field {
	case "id":
		in.id = value
	case "type":
		in.kind = value
	case "student_response":
		in.response = value
	case "result":
		in.result = value
	case "weighting":
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return api.fail(IncorrectDataType)
		}
		in.weight = &w
	case "latency":
		if !cmi.IsTimespan(value) {
			return api.fail(IncorrectDataType)
		}
		in.latency = value
	case "time":
	default: // correct_responses.m.pattern
		m, _ := strconv.Atoi(strings.Split(field, ".")[1])
		in.patterns[m] = value
	}
	return "true"
}

func (api *API) LMSGetLastError() string {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.lastError.String()
}

func (api *API) LMSGetErrorString(code string) string {
	return ErrorString(code)
}

// LMSGetDiagnostic describes `code`, or the last error when code is empty.
func (api *API) LMSGetDiagnostic(code string) string {
	if code == "" {
		code = api.LMSGetLastError()
	}
	return ErrorString(code)
}

// Teardown is called when the hosting page goes away: it makes one best-effort flush bounded by ctx.
// The session is left open.
func (api *API) Teardown(ctx context.Context) error {
	api.mu.Lock()
	if api.state != initialized {
		api.mu.Unlock()
		return nil
	}
	api.state = terminated
	api.mu.Unlock()
	return api.syncer.Teardown(ctx)
}

// Wait blocks until the flushes dispatched so far are done.
func (api *API) Wait() {
	api.syncer.Wait()
}

// snapshot is handed to the syncer; it runs on the syncer's goroutines.
func (api *API) snapshot(final bool) flush.State {
	api.mu.Lock()
	defer api.mu.Unlock()

	written := func(element string) *string {
		if !api.written[element] {
			return nil
		}
		v := api.mirror[element]
		return &v
	}
	st := flush.State{
		Delta: cmi.Delta{
			LessonStatus:   written(cmi.LessonStatus),
			LessonLocation: written(cmi.LessonLocation),
			ScoreRaw:       written(cmi.ScoreRaw),
			ScoreMin:       written(cmi.ScoreMin),
			ScoreMax:       written(cmi.ScoreMax),
			SuspendData:    written(cmi.SuspendData),
			Exit:           written(cmi.Exit),
		},
		SessionSeconds: api.sessionSeconds,
	}
	var handed []*interaction
	for _, in := range api.interactions {
		if in.sent || in.sending || in.id == "" || (in.result == "" && !final) {
			continue
		}
		in.sending = true
		handed = append(handed, in)
		st.Interactions = append(st.Interactions, in.toCMI())
	}
	if len(handed) > 0 {
		st.Settle = func(i int, recorded bool) {
			api.mu.Lock()
			defer api.mu.Unlock()
			handed[i].sending = false
			handed[i].sent = recorded
		}
	}
	return st
}

func (in *interaction) toCMI() cmi.Interaction {
	keys := make([]int, 0, len(in.patterns))
	for k := range in.patterns {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	patterns := make([]string, 0, len(keys))
	for _, k := range keys {
		patterns = append(patterns, in.patterns[k])
	}
	return cmi.Interaction{
		ID:              in.id,
		Type:            in.kind,
		LearnerResponse: in.response,
		CorrectResponse: strings.Join(patterns, ","),
		Result:          in.result,
		Weighting:       in.weight,
		Latency:         in.latency,
	}
}

// FunctionTable returns the eight runtime functions keyed by their SCORM names, ready to be
// registered with the frame hosting the content.
func (api *API) FunctionTable() map[string]Function {
	arg := func(args []string, i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	return map[string]Function{
		"LMSInitialize":     func(a ...string) string { return api.LMSInitialize(arg(a, 0)) },
		"LMSFinish":         func(a ...string) string { return api.LMSFinish(arg(a, 0)) },
		"LMSGetValue":       func(a ...string) string { return api.LMSGetValue(arg(a, 0)) },
		"LMSSetValue":       func(a ...string) string { return api.LMSSetValue(arg(a, 0), arg(a, 1)) },
		"LMSCommit":         func(a ...string) string { return api.LMSCommit(arg(a, 0)) },
		"LMSGetLastError":   func(...string) string { return api.LMSGetLastError() },
		"LMSGetErrorString": func(a ...string) string { return api.LMSGetErrorString(arg(a, 0)) },
		"LMSGetDiagnostic":  func(a ...string) string { return api.LMSGetDiagnostic(arg(a, 0)) },
	}
}

// Call dispatches a function by its SCORM name.
func (api *API) Call(name string, args ...string) (string, error) {
	fn, ok := api.FunctionTable()[name]
	if !ok {
		return "", errors.Wrap(ErrUnknownFunction, name)
	}
	return fn(args...), nil
}
