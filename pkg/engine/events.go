package engine

import (
	"slices"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
)

// EventKind classifies an [Event].
type EventKind int

const (
	EventNodes EventKind = iota
	EventEdges
	EventSelection
	EventViewport
	EventConnection
)

var eventKindNames = [...]string{"nodes", "edges", "selection", "viewport", "connection"}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// ConnectionPhase tells connection events apart.
type ConnectionPhase string

const (
	ConnectionStarted ConnectionPhase = "start"
	ConnectionEnded   ConnectionPhase = "end"
)

// Event is one state change notification.
//
// Changes is set for node, edge and selection events. Viewport and Previous
// are set for viewport events. From, Phase, Connection and Committed are set
// for connection events.
type Event struct {
	Kind    EventKind
	Changes []flow.Change

	Viewport geometry.Viewport
	Previous geometry.Viewport

	Phase      ConnectionPhase
	From       flow.HandlePoint
	Connection flow.Connection
	Committed  bool
}

// Subscribe registers fn for every event. Listeners run synchronously, in
// registration order, after the state they describe is in place. The returned
// function removes the registration.
func (i *Instance) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := i.nextListener
	i.nextListener++
	i.listeners = append(i.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		i.listeners = slices.DeleteFunc(i.listeners, func(e listenerEntry) bool { return e.id == id })
	}
}

// onChanges splits a store change set into node, edge and selection events.
func (i *Instance) onChanges(changes []flow.Change) {
	var nodes, edges, selection []flow.Change
	for _, c := range changes {
		switch {
		case c.Type == flow.ChangeSelect:
			selection = append(selection, c)
		case c.Kind == flow.KindNode:
			nodes = append(nodes, c)
		default:
			edges = append(edges, c)
		}
	}
	if len(nodes) > 0 {
		i.emit(Event{Kind: EventNodes, Changes: nodes})
	}
	if len(edges) > 0 {
		i.emit(Event{Kind: EventEdges, Changes: edges})
	}
	if len(selection) > 0 {
		i.emit(Event{Kind: EventSelection, Changes: selection})
	}
}

func (i *Instance) onViewport(prev, next geometry.Viewport) {
	i.emit(Event{Kind: EventViewport, Viewport: next, Previous: prev})
}
