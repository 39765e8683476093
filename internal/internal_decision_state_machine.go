// Copyright (c) 2017 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package internal

import (
	"container/list"
	"fmt"

	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
	"github.com/orbitflow/orbit-go/internal/common/util"
)

// One state machine exists per in-flight command. Rather than a type per
// command kind, a single decisionMachine carries the command's payload and
// consults the per-kind reaction table below for every history stimulus; the
// table is the complete statement of which transitions are legal. Feeding a
// machine an event its table rejects means the history no longer matches what
// re-running the workflow code produces, and the machine panics with its full
// transition log so the task handler can surface non-determinism.

type (
	decisionState int32
	decisionType  int32

	// decisionID keys one outstanding command within an execution:
	// (command kind, engine-scoped id).
	decisionID struct {
		decisionType decisionType
		id           string
	}

	decisionStateMachine interface {
		getState() decisionState
		getID() decisionID
		isDone() bool
		getDecision() *apiv1.Decision // nil when the current state emits nothing
		cancel()

		handleStartedEvent()
		handleCancelInitiatedEvent()
		handleCanceledEvent()
		handleCancelFailedEvent()
		handleCompletionEvent()
		handleInitiationFailedEvent()
		handleInitiatedEvent()

		handleDecisionSent()

		setData(data interface{})
		getData() interface{}
	}

	// decisionMachine is the one concrete decisionStateMachine. Exactly one
	// of the payload fields below is set, matching kind.
	decisionMachine struct {
		id     decisionID
		kind   decisionType
		state  decisionState
		log    []string
		data   interface{}
		helper *decisionsHelper

		scheduleAttrs *apiv1.ScheduleActivityTaskDecisionAttributes
		timerAttrs    *apiv1.StartTimerDecisionAttributes
		childAttrs    *apiv1.StartChildWorkflowExecutionDecisionAttributes
		prebuilt      *apiv1.Decision

		// Timer cancellation is locally effective; the machine counts as done
		// the moment the workflow asked, without waiting for the service.
		timerCanceledLocally bool
	}

	// decisionsHelper owns every live machine in emission order. Iteration
	// order of orderedDecisions is the order commands appear in the response.
	decisionsHelper struct {
		orderedDecisions *list.List
		decisions        map[decisionID]*list.Element

		scheduledEventIDToActivityID     map[int64]string
		scheduledEventIDToCancellationID map[int64]string
		scheduledEventIDToSignalID       map[int64]string
	}

	// stateMachineIllegalStatePanic is thrown on an illegal transition and
	// recognized by the task handler as a non-determinism error.
	stateMachineIllegalStatePanic struct {
		message string
	}
)

const (
	decisionStateCreated                                decisionState = 0
	decisionStateDecisionSent                           decisionState = 1
	decisionStateCanceledBeforeInitiated                decisionState = 2
	decisionStateInitiated                              decisionState = 3
	decisionStateStarted                                decisionState = 4
	decisionStateCanceledAfterInitiated                 decisionState = 5
	decisionStateCanceledAfterStarted                   decisionState = 6
	decisionStateCancellationDecisionSent               decisionState = 7
	decisionStateCompletedAfterCancellationDecisionSent decisionState = 8
	decisionStateCompleted                              decisionState = 9
)

const (
	decisionTypeActivity               decisionType = 0
	decisionTypeChildWorkflow          decisionType = 1
	decisionTypeCancellation           decisionType = 2
	decisionTypeMarker                 decisionType = 3
	decisionTypeTimer                  decisionType = 4
	decisionTypeSignal                 decisionType = 5
	decisionTypeUpsertSearchAttributes decisionType = 6
)

// Stimulus names. They end up in transition logs and panic messages.
const (
	eventCancel           = "cancel"
	eventDecisionSent     = "decisionSent"
	eventInitiated        = "initiated"
	eventInitiationFailed = "initiationFailed"
	eventStarted          = "started"
	eventCompletion       = "completion"
	eventCancelInitiated  = "cancelInitiated"
	eventCancelFailed     = "cancelFailed"
	eventCanceled         = "canceled"
)

const (
	sideEffectMarkerName        = "SideEffect"
	versionMarkerName           = "Version"
	localActivityMarkerName     = "LocalActivity"
	mutableSideEffectMarkerName = "MutableSideEffect"
)

var decisionStateNames = map[decisionState]string{
	decisionStateCreated:                                "Created",
	decisionStateDecisionSent:                           "DecisionSent",
	decisionStateCanceledBeforeInitiated:                "CanceledBeforeInitiated",
	decisionStateInitiated:                              "Initiated",
	decisionStateStarted:                                "Started",
	decisionStateCanceledAfterInitiated:                 "CanceledAfterInitiated",
	decisionStateCanceledAfterStarted:                   "CanceledAfterStarted",
	decisionStateCancellationDecisionSent:               "CancellationDecisionSent",
	decisionStateCompletedAfterCancellationDecisionSent: "CompletedAfterCancellationDecisionSent",
	decisionStateCompleted:                              "Completed",
}

var decisionTypeNames = map[decisionType]string{
	decisionTypeActivity:               "Activity",
	decisionTypeChildWorkflow:          "ChildWorkflow",
	decisionTypeCancellation:           "Cancellation",
	decisionTypeMarker:                 "Marker",
	decisionTypeTimer:                  "Timer",
	decisionTypeSignal:                 "Signal",
	decisionTypeUpsertSearchAttributes: "UpsertSearchAttributes",
}

func (d decisionState) String() string {
	if name, ok := decisionStateNames[d]; ok {
		return name
	}
	return "Unknown"
}

func (d decisionType) String() string {
	if name, ok := decisionTypeNames[d]; ok {
		return name
	}
	return "Unknown"
}

func (d decisionID) String() string {
	return fmt.Sprintf("DecisionType: %v, ID: %v", d.decisionType, d.id)
}

func makeDecisionID(decisionType decisionType, id string) decisionID {
	return decisionID{decisionType: decisionType, id: id}
}

// noMovePolicy is what happens when an event arrives in a state its rule has
// no move for and does not tolerate.
type noMovePolicy int

const (
	// ignoreEvent drops the stimulus silently.
	ignoreEvent noMovePolicy = iota
	// recordEvent appends the stimulus to the transition log without moving.
	recordEvent
	// rejectEvent panics: the event is incompatible with the machine's state.
	rejectEvent
)

// fsmRule is one machine kind's reaction to one stimulus.
type fsmRule struct {
	moves     map[decisionState]decisionState
	tolerated []decisionState
	otherwise noMovePolicy
	// prelog appends the stimulus to the log before evaluating it, so even a
	// tolerated no-op leaves a trace.
	prelog bool
}

// decisionRules is the full behavior of every machine kind. A stimulus with
// no entry for a kind is an API misuse and panics outright (it can never be
// produced by history for that kind).
var decisionRules = map[decisionType]map[string]fsmRule{
	decisionTypeActivity: {
		eventDecisionSent: {
			moves: map[decisionState]decisionState{
				decisionStateCreated:                decisionStateDecisionSent,
				decisionStateCanceledAfterInitiated: decisionStateCancellationDecisionSent,
			},
			otherwise: ignoreEvent,
		},
		eventCancel: {
			moves: map[decisionState]decisionState{
				decisionStateCreated:      decisionStateCompleted,
				decisionStateDecisionSent: decisionStateCanceledBeforeInitiated,
				decisionStateInitiated:    decisionStateCanceledAfterInitiated,
			},
			// Canceling after completion is legal user behavior, not an error.
			tolerated: []decisionState{decisionStateCompleted, decisionStateCompletedAfterCancellationDecisionSent},
			otherwise: rejectEvent,
		},
		eventInitiated:        baseInitiatedRule,
		eventInitiationFailed: baseInitiationFailedRule,
		eventStarted:          {otherwise: recordEvent},
		eventCompletion:       baseCompletionRule,
		eventCancelInitiated:  baseCancelInitiatedRule,
		eventCancelFailed: {
			moves: map[decisionState]decisionState{
				decisionStateCancellationDecisionSent:               decisionStateInitiated,
				decisionStateCompletedAfterCancellationDecisionSent: decisionStateCompleted,
			},
			otherwise: rejectEvent,
		},
		eventCanceled: baseCanceledRule,
	},

	decisionTypeTimer: {
		eventDecisionSent: {
			moves: map[decisionState]decisionState{
				decisionStateCreated:                decisionStateDecisionSent,
				decisionStateCanceledAfterInitiated: decisionStateCancellationDecisionSent,
			},
			otherwise: ignoreEvent,
		},
		eventCancel: {
			moves: map[decisionState]decisionState{
				decisionStateCreated:      decisionStateCompleted,
				decisionStateDecisionSent: decisionStateCanceledBeforeInitiated,
				decisionStateInitiated:    decisionStateCanceledAfterInitiated,
			},
			tolerated: []decisionState{decisionStateCompleted, decisionStateCompletedAfterCancellationDecisionSent},
			otherwise: rejectEvent,
		},
		eventInitiated:        baseInitiatedRule,
		eventInitiationFailed: baseInitiationFailedRule,
		eventStarted:          {otherwise: recordEvent},
		eventCompletion:       baseCompletionRule,
		eventCancelInitiated:  baseCancelInitiatedRule,
		eventCancelFailed: {
			moves: map[decisionState]decisionState{
				decisionStateCancellationDecisionSent:               decisionStateInitiated,
				decisionStateCompletedAfterCancellationDecisionSent: decisionStateCompleted,
			},
			otherwise: rejectEvent,
		},
		eventCanceled: baseCanceledRule,
	},

	decisionTypeChildWorkflow: {
		eventDecisionSent: {
			moves: map[decisionState]decisionState{
				decisionStateCreated:              decisionStateDecisionSent,
				decisionStateCanceledAfterStarted: decisionStateCancellationDecisionSent,
			},
			otherwise: ignoreEvent,
		},
		eventCancel: {
			moves: map[decisionState]decisionState{
				decisionStateCreated:      decisionStateCompleted,
				decisionStateDecisionSent: decisionStateCanceledBeforeInitiated,
				decisionStateInitiated:    decisionStateCanceledAfterInitiated,
				decisionStateStarted:      decisionStateCanceledAfterStarted,
			},
			tolerated: []decisionState{decisionStateCompleted, decisionStateCompletedAfterCancellationDecisionSent},
			otherwise: rejectEvent,
		},
		eventInitiated:        baseInitiatedRule,
		eventInitiationFailed: baseInitiationFailedRule,
		eventStarted: {
			moves: map[decisionState]decisionState{
				decisionStateInitiated:              decisionStateStarted,
				decisionStateCanceledAfterInitiated: decisionStateCanceledAfterStarted,
			},
			otherwise: recordEvent,
		},
		eventCompletion: {
			moves: map[decisionState]decisionState{
				decisionStateInitiated:                decisionStateCompleted,
				decisionStateStarted:                  decisionStateCompleted,
				decisionStateCanceledAfterInitiated:   decisionStateCompleted,
				decisionStateCanceledAfterStarted:     decisionStateCompleted,
				decisionStateCancellationDecisionSent: decisionStateCompletedAfterCancellationDecisionSent,
			},
			otherwise: rejectEvent,
		},
		eventCancelInitiated: baseCancelInitiatedRule,
		eventCancelFailed: {
			moves: map[decisionState]decisionState{
				decisionStateCancellationDecisionSent:               decisionStateStarted,
				decisionStateCompletedAfterCancellationDecisionSent: decisionStateCompleted,
			},
			otherwise: rejectEvent,
		},
		eventCanceled: {
			moves: map[decisionState]decisionState{
				decisionStateStarted:                  decisionStateCompleted,
				decisionStateCancellationDecisionSent: decisionStateCompleted,
			},
			otherwise: rejectEvent,
		},
	},

	// External-workflow cancellations and signals never see start, cancel or
	// failure stimuli; their lifecycle is Created -> Sent -> Initiated ->
	// Completed.
	decisionTypeCancellation: {
		eventDecisionSent: {
			moves:     map[decisionState]decisionState{decisionStateCreated: decisionStateDecisionSent},
			otherwise: ignoreEvent,
		},
		eventInitiated: {
			moves:     map[decisionState]decisionState{decisionStateDecisionSent: decisionStateInitiated},
			otherwise: rejectEvent,
		},
		eventCompletion: {
			moves:     map[decisionState]decisionState{decisionStateInitiated: decisionStateCompleted},
			otherwise: rejectEvent,
		},
	},
	decisionTypeSignal: {
		eventDecisionSent: {
			moves:     map[decisionState]decisionState{decisionStateCreated: decisionStateDecisionSent},
			otherwise: ignoreEvent,
		},
		eventInitiated: {
			moves:     map[decisionState]decisionState{decisionStateDecisionSent: decisionStateInitiated},
			otherwise: rejectEvent,
		},
		eventCompletion: {
			moves:     map[decisionState]decisionState{decisionStateInitiated: decisionStateCompleted},
			otherwise: rejectEvent,
		},
	},

	// Markers and search-attribute upserts complete the moment their decision
	// goes out; history never drives them further. Every marker machine,
	// local activity markers included, starts in Created like any other
	// decision. Side-effect and version markers applied from history have no
	// machine at all (they are preloaded).
	decisionTypeMarker: {
		eventDecisionSent: {
			moves:     map[decisionState]decisionState{decisionStateCreated: decisionStateCompleted},
			otherwise: ignoreEvent,
		},
	},
	decisionTypeUpsertSearchAttributes: {
		eventDecisionSent: {
			moves:     map[decisionState]decisionState{decisionStateCreated: decisionStateCompleted},
			otherwise: ignoreEvent,
		},
	},
}

// Rules shared verbatim by the activity, timer and child-workflow kinds.
var (
	baseInitiatedRule = fsmRule{
		moves: map[decisionState]decisionState{
			decisionStateDecisionSent:            decisionStateInitiated,
			decisionStateCanceledBeforeInitiated: decisionStateCanceledAfterInitiated,
		},
		otherwise: rejectEvent,
	}
	baseInitiationFailedRule = fsmRule{
		moves: map[decisionState]decisionState{
			decisionStateDecisionSent:            decisionStateCompleted,
			decisionStateInitiated:               decisionStateCompleted,
			decisionStateCanceledBeforeInitiated: decisionStateCompleted,
		},
		otherwise: rejectEvent,
	}
	baseCompletionRule = fsmRule{
		moves: map[decisionState]decisionState{
			decisionStateInitiated:                decisionStateCompleted,
			decisionStateCanceledAfterInitiated:   decisionStateCompleted,
			decisionStateCancellationDecisionSent: decisionStateCompletedAfterCancellationDecisionSent,
		},
		otherwise: rejectEvent,
	}
	baseCancelInitiatedRule = fsmRule{
		tolerated: []decisionState{decisionStateCancellationDecisionSent},
		otherwise: rejectEvent,
		prelog:    true,
	}
	baseCanceledRule = fsmRule{
		moves: map[decisionState]decisionState{
			decisionStateCancellationDecisionSent: decisionStateCompleted,
		},
		otherwise: rejectEvent,
	}
)

func (d stateMachineIllegalStatePanic) String() string {
	return d.message
}

func panicIllegalState(message string) {
	panic(stateMachineIllegalStatePanic{message: message})
}

func (h *decisionsHelper) newDecisionMachine(kind decisionType, id string) *decisionMachine {
	return &decisionMachine{
		id:     makeDecisionID(kind, id),
		kind:   kind,
		state:  decisionStateCreated,
		log:    []string{decisionStateCreated.String()},
		helper: h,
	}
}

func (h *decisionsHelper) newActivityDecisionStateMachine(attributes *apiv1.ScheduleActivityTaskDecisionAttributes) *decisionMachine {
	m := h.newDecisionMachine(decisionTypeActivity, attributes.GetActivityId())
	m.scheduleAttrs = attributes
	return m
}

func (h *decisionsHelper) newTimerDecisionStateMachine(attributes *apiv1.StartTimerDecisionAttributes) *decisionMachine {
	m := h.newDecisionMachine(decisionTypeTimer, attributes.GetTimerId())
	m.timerAttrs = attributes
	return m
}

func (h *decisionsHelper) newChildWorkflowDecisionStateMachine(attributes *apiv1.StartChildWorkflowExecutionDecisionAttributes) *decisionMachine {
	m := h.newDecisionMachine(decisionTypeChildWorkflow, attributes.GetWorkflowId())
	m.childAttrs = attributes
	return m
}

func (h *decisionsHelper) newPrebuiltDecisionStateMachine(kind decisionType, id string, decision *apiv1.Decision) *decisionMachine {
	m := h.newDecisionMachine(kind, id)
	m.prebuilt = decision
	return m
}

func (h *decisionsHelper) newMarkerDecisionStateMachine(id string, attributes *apiv1.RecordMarkerDecisionAttributes) *decisionMachine {
	return h.newPrebuiltDecisionStateMachine(decisionTypeMarker, id, &apiv1.Decision{
		Attributes: &apiv1.Decision_RecordMarkerDecisionAttributes{
			RecordMarkerDecisionAttributes: attributes,
		},
	})
}

func (h *decisionsHelper) newCancelExternalWorkflowStateMachine(attributes *apiv1.RequestCancelExternalWorkflowExecutionDecisionAttributes, cancellationID string) *decisionMachine {
	return h.newPrebuiltDecisionStateMachine(decisionTypeCancellation, cancellationID, &apiv1.Decision{
		Attributes: &apiv1.Decision_RequestCancelExternalWorkflowExecutionDecisionAttributes{
			RequestCancelExternalWorkflowExecutionDecisionAttributes: attributes,
		},
	})
}

func (h *decisionsHelper) newSignalExternalWorkflowStateMachine(attributes *apiv1.SignalExternalWorkflowExecutionDecisionAttributes, signalID string) *decisionMachine {
	return h.newPrebuiltDecisionStateMachine(decisionTypeSignal, signalID, &apiv1.Decision{
		Attributes: &apiv1.Decision_SignalExternalWorkflowExecutionDecisionAttributes{
			SignalExternalWorkflowExecutionDecisionAttributes: attributes,
		},
	})
}

func (h *decisionsHelper) newUpsertSearchAttributesStateMachine(attributes *apiv1.UpsertWorkflowSearchAttributesDecisionAttributes, upsertID string) *decisionMachine {
	return h.newPrebuiltDecisionStateMachine(decisionTypeUpsertSearchAttributes, upsertID, &apiv1.Decision{
		Attributes: &apiv1.Decision_UpsertWorkflowSearchAttributesDecisionAttributes{
			UpsertWorkflowSearchAttributesDecisionAttributes: attributes,
		},
	})
}

func (m *decisionMachine) getState() decisionState {
	return m.state
}

func (m *decisionMachine) getID() decisionID {
	return m.id
}

func (m *decisionMachine) isDone() bool {
	if m.kind == decisionTypeTimer && m.timerCanceledLocally {
		return true
	}
	return m.state == decisionStateCompleted || m.state == decisionStateCompletedAfterCancellationDecisionSent
}

func (m *decisionMachine) setData(data interface{}) {
	m.data = data
}

func (m *decisionMachine) getData() interface{} {
	return m.data
}

func (m *decisionMachine) String() string {
	return fmt.Sprintf("%v, state=%v, isDone()=%v, history=%v",
		m.id, m.state, m.isDone(), m.log)
}

// apply feeds one stimulus through the machine's reaction table.
func (m *decisionMachine) apply(event string) {
	rule, known := decisionRules[m.kind][event]
	if !known {
		panic("unsupported operation")
	}
	if rule.prelog {
		m.log = append(m.log, event)
	}
	if to, ok := rule.moves[m.state]; ok {
		m.moveTo(to, event)
		return
	}
	for _, s := range rule.tolerated {
		if m.state == s {
			return
		}
	}
	switch rule.otherwise {
	case recordEvent:
		m.log = append(m.log, event)
	case rejectEvent:
		panicIllegalState(fmt.Sprintf("invalid state transition: attempt to %v, %v", event, m))
	}
}

func (m *decisionMachine) moveTo(next decisionState, event string) {
	m.log = append(m.log, event, next.String())
	m.state = next

	// Completed machines can no longer emit; drop them from the ordered map.
	if next == decisionStateCompleted {
		if elem, ok := m.helper.decisions[m.id]; ok {
			m.helper.orderedDecisions.Remove(elem)
			delete(m.helper.decisions, m.id)
		}
	}
}

func (m *decisionMachine) cancel() {
	if m.kind == decisionTypeTimer {
		m.timerCanceledLocally = true
	}
	m.apply(eventCancel)
}

func (m *decisionMachine) handleDecisionSent()          { m.apply(eventDecisionSent) }
func (m *decisionMachine) handleInitiatedEvent()        { m.apply(eventInitiated) }
func (m *decisionMachine) handleInitiationFailedEvent() { m.apply(eventInitiationFailed) }
func (m *decisionMachine) handleStartedEvent()          { m.apply(eventStarted) }
func (m *decisionMachine) handleCompletionEvent()       { m.apply(eventCompletion) }
func (m *decisionMachine) handleCancelInitiatedEvent()  { m.apply(eventCancelInitiated) }
func (m *decisionMachine) handleCancelFailedEvent()     { m.apply(eventCancelFailed) }
func (m *decisionMachine) handleCanceledEvent()         { m.apply(eventCanceled) }

// getDecision emits the command the machine wants sent in its current state:
// the originating command while Created, the cancellation request while a
// cancel is pending service acknowledgement, nothing otherwise.
func (m *decisionMachine) getDecision() *apiv1.Decision {
	switch m.kind {
	case decisionTypeActivity:
		switch m.state {
		case decisionStateCreated:
			return &apiv1.Decision{
				Attributes: &apiv1.Decision_ScheduleActivityTaskDecisionAttributes{
					ScheduleActivityTaskDecisionAttributes: m.scheduleAttrs,
				},
			}
		case decisionStateCanceledAfterInitiated:
			return &apiv1.Decision{
				Attributes: &apiv1.Decision_RequestCancelActivityTaskDecisionAttributes{
					RequestCancelActivityTaskDecisionAttributes: &apiv1.RequestCancelActivityTaskDecisionAttributes{
						ActivityId: m.scheduleAttrs.ActivityId,
					},
				},
			}
		}

	case decisionTypeTimer:
		switch m.state {
		case decisionStateCreated:
			return &apiv1.Decision{
				Attributes: &apiv1.Decision_StartTimerDecisionAttributes{
					StartTimerDecisionAttributes: m.timerAttrs,
				},
			}
		case decisionStateCanceledAfterInitiated:
			return &apiv1.Decision{
				Attributes: &apiv1.Decision_CancelTimerDecisionAttributes{
					CancelTimerDecisionAttributes: &apiv1.CancelTimerDecisionAttributes{
						TimerId: m.timerAttrs.TimerId,
					},
				},
			}
		}

	case decisionTypeChildWorkflow:
		switch m.state {
		case decisionStateCreated:
			return &apiv1.Decision{
				Attributes: &apiv1.Decision_StartChildWorkflowExecutionDecisionAttributes{
					StartChildWorkflowExecutionDecisionAttributes: m.childAttrs,
				},
			}
		case decisionStateCanceledAfterStarted:
			return &apiv1.Decision{
				Attributes: &apiv1.Decision_RequestCancelExternalWorkflowExecutionDecisionAttributes{
					RequestCancelExternalWorkflowExecutionDecisionAttributes: &apiv1.RequestCancelExternalWorkflowExecutionDecisionAttributes{
						Domain: m.childAttrs.Domain,
						WorkflowExecution: &apiv1.WorkflowExecution{
							WorkflowId: m.childAttrs.WorkflowId,
						},
						ChildWorkflowOnly: true,
					},
				},
			}
		}

	default:
		if m.state == decisionStateCreated {
			return m.prebuilt
		}
	}
	return nil
}

func newDecisionsHelper() *decisionsHelper {
	return &decisionsHelper{
		orderedDecisions: list.New(),
		decisions:        make(map[decisionID]*list.Element),

		scheduledEventIDToActivityID:     make(map[int64]string),
		scheduledEventIDToCancellationID: make(map[int64]string),
		scheduledEventIDToSignalID:       make(map[int64]string),
	}
}

func (h *decisionsHelper) getDecision(id decisionID) decisionStateMachine {
	decision, ok := h.decisions[id]
	if !ok {
		panicIllegalState(fmt.Sprintf("unknown decision %v, possible causes are nondeterministic workflow definition code"+
			" or incompatible change in the workflow definition", id))
	}
	// The most recently touched machine goes to the back of the emission
	// order so follow-up commands (a timer cancellation, say) come out after
	// whatever the workflow issued since.
	h.orderedDecisions.MoveToBack(decision)
	return decision.Value.(decisionStateMachine)
}

// mustFind is getDecision over the (kind, id) pair most handlers hold.
func (h *decisionsHelper) mustFind(kind decisionType, id string) decisionStateMachine {
	return h.getDecision(makeDecisionID(kind, id))
}

func (h *decisionsHelper) addDecision(decision decisionStateMachine) {
	if _, ok := h.decisions[decision.getID()]; ok {
		panicIllegalState(fmt.Sprintf("adding duplicate decision %v", decision))
	}
	h.decisions[decision.getID()] = h.orderedDecisions.PushBack(decision)
}

// track registers a freshly created machine and returns it, the shared tail
// of every command-emitting operation below.
func (h *decisionsHelper) track(m *decisionMachine) decisionStateMachine {
	h.addDecision(m)
	return m
}

func (h *decisionsHelper) scheduleActivityTask(attributes *apiv1.ScheduleActivityTaskDecisionAttributes) decisionStateMachine {
	return h.track(h.newActivityDecisionStateMachine(attributes))
}

func (h *decisionsHelper) requestCancelActivityTask(activityID string) decisionStateMachine {
	decision := h.mustFind(decisionTypeActivity, activityID)
	decision.cancel()
	return decision
}

func (h *decisionsHelper) handleActivityTaskClosed(activityID string) decisionStateMachine {
	decision := h.mustFind(decisionTypeActivity, activityID)
	decision.handleCompletionEvent()
	return decision
}

func (h *decisionsHelper) handleActivityTaskScheduled(scheduledEventID int64, activityID string) {
	h.scheduledEventIDToActivityID[scheduledEventID] = activityID
	h.mustFind(decisionTypeActivity, activityID).handleInitiatedEvent()
}

func (h *decisionsHelper) handleActivityTaskCancelRequested(activityID string) {
	h.mustFind(decisionTypeActivity, activityID).handleCancelInitiatedEvent()
}

func (h *decisionsHelper) handleActivityTaskCanceled(activityID string) decisionStateMachine {
	decision := h.mustFind(decisionTypeActivity, activityID)
	decision.handleCanceledEvent()
	return decision
}

func (h *decisionsHelper) handleRequestCancelActivityTaskFailed(activityID string) {
	h.mustFind(decisionTypeActivity, activityID).handleCancelFailedEvent()
}

// getActivityID recovers the engine-scoped activity ID for an activity
// close event through the scheduled-event-id index. A miss means the history
// closes an activity this replay never scheduled.
func (h *decisionsHelper) getActivityID(event *apiv1.HistoryEvent) string {
	var scheduledEventID int64 = -1
	switch attr := event.Attributes.(type) {
	case *apiv1.HistoryEvent_ActivityTaskCanceledEventAttributes:
		scheduledEventID = attr.ActivityTaskCanceledEventAttributes.GetScheduledEventId()
	case *apiv1.HistoryEvent_ActivityTaskCompletedEventAttributes:
		scheduledEventID = attr.ActivityTaskCompletedEventAttributes.GetScheduledEventId()
	case *apiv1.HistoryEvent_ActivityTaskFailedEventAttributes:
		scheduledEventID = attr.ActivityTaskFailedEventAttributes.GetScheduledEventId()
	case *apiv1.HistoryEvent_ActivityTaskTimedOutEventAttributes:
		scheduledEventID = attr.ActivityTaskTimedOutEventAttributes.GetScheduledEventId()
	default:
		panicIllegalState(fmt.Sprintf("unexpected event type %v", util.GetHistoryEventType(event)))
	}

	activityID, ok := h.scheduledEventIDToActivityID[scheduledEventID]
	if !ok {
		panicIllegalState(fmt.Sprintf("unable to find activity ID for the event %v", util.HistoryEventToString(event)))
	}
	return activityID
}

func (h *decisionsHelper) recordMarker(markerName, markerID string, details []byte) decisionStateMachine {
	return h.track(h.newMarkerDecisionStateMachine(markerID, &apiv1.RecordMarkerDecisionAttributes{
		MarkerName: markerName,
		Details:    &apiv1.Payload{Data: details},
	}))
}

func (h *decisionsHelper) recordVersionMarker(changeID string, version Version, dataConverter DataConverter) decisionStateMachine {
	details, err := encodeArgs(dataConverter, []interface{}{changeID, version})
	if err != nil {
		panic(err)
	}
	return h.recordMarker(versionMarkerName, fmt.Sprintf("%v_%v", versionMarkerName, changeID), details)
}

func (h *decisionsHelper) recordSideEffectMarker(sideEffectID int32, data []byte) decisionStateMachine {
	return h.recordMarker(sideEffectMarkerName, fmt.Sprintf("%v_%v", sideEffectMarkerName, sideEffectID), data)
}

func (h *decisionsHelper) recordLocalActivityMarker(activityID string, result []byte) decisionStateMachine {
	return h.recordMarker(localActivityMarkerName, fmt.Sprintf("%v_%v", localActivityMarkerName, activityID), result)
}

func (h *decisionsHelper) recordMutableSideEffectMarker(mutableSideEffectID string, data []byte) decisionStateMachine {
	return h.recordMarker(mutableSideEffectMarkerName, fmt.Sprintf("%v_%v", mutableSideEffectMarkerName, mutableSideEffectID), data)
}

func (h *decisionsHelper) startChildWorkflowExecution(attributes *apiv1.StartChildWorkflowExecutionDecisionAttributes) decisionStateMachine {
	return h.track(h.newChildWorkflowDecisionStateMachine(attributes))
}

func (h *decisionsHelper) handleStartChildWorkflowExecutionInitiated(workflowID string) {
	h.mustFind(decisionTypeChildWorkflow, workflowID).handleInitiatedEvent()
}

func (h *decisionsHelper) handleStartChildWorkflowExecutionFailed(workflowID string) decisionStateMachine {
	decision := h.mustFind(decisionTypeChildWorkflow, workflowID)
	decision.handleInitiationFailedEvent()
	return decision
}

// requestCancelExternalWorkflowExecution covers two distinct flows. A cancel
// targeted at a child workflow rides the child's own state machine, keyed by
// workflow ID with no cancellation ID or run ID (continue-as-new changes the
// run ID under us; the service validates the parent-child relation). A cancel
// of an unrelated external workflow gets its own machine keyed by a
// client-generated cancellation ID, which also rides the decision's Control
// field so the response events can be matched back.
func (h *decisionsHelper) requestCancelExternalWorkflowExecution(domain, workflowID, runID string, cancellationID string, childWorkflowOnly bool) decisionStateMachine {
	if childWorkflowOnly {
		if len(cancellationID) != 0 {
			panicIllegalState("cancellation on child workflow should not use cancellation ID")
		}
		if len(runID) != 0 {
			panicIllegalState("cancellation on child workflow should not use run ID")
		}
		decision := h.mustFind(decisionTypeChildWorkflow, workflowID)
		decision.cancel()
		return decision
	}

	if len(cancellationID) == 0 {
		panicIllegalState("cancellation on external workflow should use cancellation ID")
	}
	return h.track(h.newCancelExternalWorkflowStateMachine(
		&apiv1.RequestCancelExternalWorkflowExecutionDecisionAttributes{
			Domain: domain,
			WorkflowExecution: &apiv1.WorkflowExecution{
				WorkflowId: workflowID,
				RunId:      runID,
			},
			Control:           []byte(cancellationID),
			ChildWorkflowOnly: false,
		},
		cancellationID,
	))
}

func (h *decisionsHelper) handleRequestCancelExternalWorkflowExecutionInitiated(initiatedEventID int64, workflowID, cancellationID string) {
	if h.isCancelExternalWorkflowEventForChildWorkflow(cancellationID) {
		h.mustFind(decisionTypeChildWorkflow, workflowID).handleCancelInitiatedEvent()
		return
	}
	h.scheduledEventIDToCancellationID[initiatedEventID] = cancellationID
	h.mustFind(decisionTypeCancellation, cancellationID).handleInitiatedEvent()
}

func (h *decisionsHelper) handleExternalWorkflowExecutionCancelRequested(initiatedEventID int64, workflowID string) (bool, decisionStateMachine) {
	cancellationID, isExternal := h.scheduledEventIDToCancellationID[initiatedEventID]
	if !isExternal {
		// A child stays in CancellationDecisionSent until it actually closes.
		return false, h.mustFind(decisionTypeChildWorkflow, workflowID)
	}
	decision := h.mustFind(decisionTypeCancellation, cancellationID)
	decision.handleCompletionEvent()
	return true, decision
}

func (h *decisionsHelper) handleRequestCancelExternalWorkflowExecutionFailed(initiatedEventID int64, workflowID string) (bool, decisionStateMachine) {
	cancellationID, isExternal := h.scheduledEventIDToCancellationID[initiatedEventID]
	if !isExternal {
		decision := h.mustFind(decisionTypeChildWorkflow, workflowID)
		decision.handleCancelFailedEvent()
		return false, decision
	}
	decision := h.mustFind(decisionTypeCancellation, cancellationID)
	decision.handleCompletionEvent()
	return true, decision
}

func (h *decisionsHelper) signalExternalWorkflowExecution(domain, workflowID, runID, signalName string, input []byte, signalID string, childWorkflowOnly bool) decisionStateMachine {
	return h.track(h.newSignalExternalWorkflowStateMachine(
		&apiv1.SignalExternalWorkflowExecutionDecisionAttributes{
			Domain: domain,
			WorkflowExecution: &apiv1.WorkflowExecution{
				WorkflowId: workflowID,
				RunId:      runID,
			},
			SignalName:        signalName,
			Input:             &apiv1.Payload{Data: input},
			Control:           []byte(signalID),
			ChildWorkflowOnly: childWorkflowOnly,
		},
		signalID,
	))
}

func (h *decisionsHelper) upsertSearchAttributes(upsertID string, searchAttr *apiv1.SearchAttributes) decisionStateMachine {
	return h.track(h.newUpsertSearchAttributesStateMachine(
		&apiv1.UpsertWorkflowSearchAttributesDecisionAttributes{
			SearchAttributes: searchAttr,
		},
		upsertID,
	))
}

func (h *decisionsHelper) handleSignalExternalWorkflowExecutionInitiated(initiatedEventID int64, signalID string) {
	h.scheduledEventIDToSignalID[initiatedEventID] = signalID
	h.mustFind(decisionTypeSignal, signalID).handleInitiatedEvent()
}

func (h *decisionsHelper) handleSignalExternalWorkflowExecutionCompleted(initiatedEventID int64) decisionStateMachine {
	decision := h.mustFind(decisionTypeSignal, h.getSignalID(initiatedEventID))
	decision.handleCompletionEvent()
	return decision
}

func (h *decisionsHelper) handleSignalExternalWorkflowExecutionFailed(initiatedEventID int64) decisionStateMachine {
	decision := h.mustFind(decisionTypeSignal, h.getSignalID(initiatedEventID))
	decision.handleCompletionEvent()
	return decision
}

func (h *decisionsHelper) getSignalID(initiatedEventID int64) string {
	signalID, ok := h.scheduledEventIDToSignalID[initiatedEventID]
	if !ok {
		panicIllegalState(fmt.Sprintf("unable to find signal ID: %v", initiatedEventID))
	}
	return signalID
}

func (h *decisionsHelper) startTimer(attributes *apiv1.StartTimerDecisionAttributes) decisionStateMachine {
	return h.track(h.newTimerDecisionStateMachine(attributes))
}

func (h *decisionsHelper) cancelTimer(timerID string) decisionStateMachine {
	decision := h.mustFind(decisionTypeTimer, timerID)
	decision.cancel()
	return decision
}

func (h *decisionsHelper) handleTimerClosed(timerID string) decisionStateMachine {
	decision := h.mustFind(decisionTypeTimer, timerID)
	decision.handleCompletionEvent()
	return decision
}

func (h *decisionsHelper) handleTimerStarted(timerID string) {
	h.mustFind(decisionTypeTimer, timerID).handleInitiatedEvent()
}

func (h *decisionsHelper) handleTimerCanceled(timerID string) {
	h.mustFind(decisionTypeTimer, timerID).handleCanceledEvent()
}

func (h *decisionsHelper) handleCancelTimerFailed(timerID string) {
	h.mustFind(decisionTypeTimer, timerID).handleCancelFailedEvent()
}

func (h *decisionsHelper) handleChildWorkflowExecutionStarted(workflowID string) decisionStateMachine {
	decision := h.mustFind(decisionTypeChildWorkflow, workflowID)
	decision.handleStartedEvent()
	return decision
}

func (h *decisionsHelper) handleChildWorkflowExecutionClosed(workflowID string) decisionStateMachine {
	decision := h.mustFind(decisionTypeChildWorkflow, workflowID)
	decision.handleCompletionEvent()
	return decision
}

func (h *decisionsHelper) handleChildWorkflowExecutionCanceled(workflowID string) decisionStateMachine {
	decision := h.mustFind(decisionTypeChildWorkflow, workflowID)
	decision.handleCanceledEvent()
	return decision
}

// getDecisions walks the machines in emission order and collects whatever
// each one currently wants to send. markAsSent additionally acknowledges the
// hand-off, driving Created machines to DecisionSent and dropping the ones
// that completed on the spot.
func (h *decisionsHelper) getDecisions(markAsSent bool) []*apiv1.Decision {
	var result []*apiv1.Decision
	for curr := h.orderedDecisions.Front(); curr != nil; {
		next := curr.Next() // the current element may be removed below
		d := curr.Value.(decisionStateMachine)
		if decision := d.getDecision(); decision != nil {
			result = append(result, decision)
		}

		if markAsSent {
			d.handleDecisionSent()
		}

		if d.getState() == decisionStateCompleted {
			h.orderedDecisions.Remove(curr)
			delete(h.decisions, d.getID())
		}

		curr = next
	}

	return result
}

// An empty Control field on the cancel-initiated event marks a cancellation
// that targets a child workflow; external cancellations carry the
// client-generated cancellation ID there.
func (h *decisionsHelper) isCancelExternalWorkflowEventForChildWorkflow(cancellationID string) bool {
	return len(cancellationID) == 0
}
