package proclog

import (
	"github.com/willibrandon/proclog/core"
)

// FlowObject identifies an element of a process definition, such as a
// task, an event or a gateway.
type FlowObject struct {
	Name string
	Type string
}

// DeferredEvent is an event whose handling was postponed, with the data
// it carries.
type DeferredEvent struct {
	FlowObject
	Data any
}

// EventLogger is the logging capability a process engine needs.
type EventLogger interface {
	HandlerError(handlerName string, err error)
	CallDefaultEventHandler(eventType, flowObjectName, handlerName, reason string)
	SendMessage(messageFlowName string, source, target *FlowObject, data any)
	TriggerEvent(event *FlowObject, data any)
	TaskDone(taskName string, data any)
	CatchBoundaryEvent(eventName string, data any)
	TriggerDeferredEvents(event *DeferredEvent)
	CallHandler(eventType, flowObjectName, handlerName string, data any)
	CallHandlerDone(eventType, flowObjectName, handlerName string)
	PutTokenAt(flowObjectName string, data any)
	TokenArrivedAt(flowObject *FlowObject, data any)
	DoneSaving(savedData any)
}

var _ EventLogger = (*Logger)(nil)

func (f *FlowObject) name() string {
	if f == nil {
		return ""
	}
	return f.Name
}

func (f *FlowObject) typ() string {
	if f == nil {
		return ""
	}
	return f.Type
}

// HandlerError logs that the named handler failed with err.
func (l *Logger) HandlerError(handlerName string, err error) {
	if !l.IsEnabled(core.ErrorLevel) {
		return
	}
	text := ""
	if err != nil {
		text = err.Error()
	}
	l.Log(core.ErrorLevel, "Error in handler '"+handlerName+"': "+text)
}

// CallDefaultEventHandler logs an event no handler was found for.
func (l *Logger) CallDefaultEventHandler(eventType, flowObjectName, handlerName, reason string) {
	l.Log(core.ErrorLevel, "Unhandled event: '"+eventType+"' for flow object '"+flowObjectName+
		"'. Handler name: "+handlerName+". Reason: "+reason)
}

// SendMessage logs a message sent along a message flow. A nil source or
// target renders as an empty name.
func (l *Logger) SendMessage(messageFlowName string, source, target *FlowObject, data any) {
	l.Log(core.TraceLevel, "Send '"+messageFlowName+"' from '"+source.name()+"' to '"+target.name()+"'.", data)
}

// TriggerEvent logs that event was triggered.
func (l *Logger) TriggerEvent(event *FlowObject, data any) {
	l.Log(core.TraceLevel, "Trigger "+event.typ()+" '"+event.name()+"'", data)
}

// TaskDone logs the completion of a task.
func (l *Logger) TaskDone(taskName string, data any) {
	l.Log(core.TraceLevel, "Task '"+taskName+"' done.", data)
}

// CatchBoundaryEvent logs a caught boundary event.
func (l *Logger) CatchBoundaryEvent(eventName string, data any) {
	l.Log(core.TraceLevel, "Catch boundary event '"+eventName+"' done.", data)
}

// TriggerDeferredEvents logs the emission of a deferred event, with the
// event's own data as payload.
func (l *Logger) TriggerDeferredEvents(event *DeferredEvent) {
	if event == nil {
		l.Log(core.TraceLevel, "Emit deferred events  ''")
		return
	}
	l.Log(core.TraceLevel, "Emit deferred events "+event.Type+" '"+event.Name+"'", event.Data)
}

// CallHandler logs the start of a handler call.
func (l *Logger) CallHandler(eventType, flowObjectName, handlerName string, data any) {
	l.Log(core.TraceLevel, "Call handler for: '"+eventType+"' for flow object '"+flowObjectName+
		"'. Handler name: "+handlerName+".", data)
}

// CallHandlerDone logs the end of a handler call.
func (l *Logger) CallHandlerDone(eventType, flowObjectName, handlerName string) {
	l.Log(core.TraceLevel, "Call handlerDone for: '"+eventType+"' for flow object '"+flowObjectName+
		"'. Handler name: "+handlerName+".")
}

// PutTokenAt logs a token placed on a flow object.
func (l *Logger) PutTokenAt(flowObjectName string, data any) {
	l.Log(core.DebugLevel, "Token was put on '"+flowObjectName+"'", data)
}

// TokenArrivedAt logs a token arriving at a flow object.
func (l *Logger) TokenArrivedAt(flowObject *FlowObject, data any) {
	l.Log(core.DebugLevel, "Token arrived at "+flowObject.typ()+" '"+flowObject.name()+"'", data)
}

// DoneSaving logs persisted process state.
func (l *Logger) DoneSaving(savedData any) {
	l.Log(core.DebugLevel, "SavedData", savedData)
}
