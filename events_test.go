package proclog

import (
	"errors"
	"strings"
	"testing"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/testutil"
)

func TestEventDescriptions(t *testing.T) {
	task := &FlowObject{Name: "Ship", Type: "task"}
	start := &FlowObject{Name: "Start", Type: "startEvent"}

	tests := []struct {
		name  string
		call  func(EventLogger)
		level core.Level
		want  string
	}{
		{
			name:  "HandlerError",
			call:  func(l EventLogger) { l.HandlerError("onShip", errors.New("no carrier")) },
			level: core.ErrorLevel,
			want:  "Error in handler 'onShip': no carrier",
		},
		{
			name:  "CallDefaultEventHandler",
			call:  func(l EventLogger) { l.CallDefaultEventHandler("timer", "Wait", "onWait", "no handler") },
			level: core.ErrorLevel,
			want:  "Unhandled event: 'timer' for flow object 'Wait'. Handler name: onWait. Reason: no handler",
		},
		{
			name:  "SendMessage",
			call:  func(l EventLogger) { l.SendMessage("Invoice", task, start, nil) },
			level: core.TraceLevel,
			want:  "Send 'Invoice' from 'Ship' to 'Start'.",
		},
		{
			name:  "TriggerEvent",
			call:  func(l EventLogger) { l.TriggerEvent(start, nil) },
			level: core.TraceLevel,
			want:  "Trigger startEvent 'Start'",
		},
		{
			name:  "TaskDone",
			call:  func(l EventLogger) { l.TaskDone("Ship", nil) },
			level: core.TraceLevel,
			want:  "Task 'Ship' done.",
		},
		{
			name:  "CatchBoundaryEvent",
			call:  func(l EventLogger) { l.CatchBoundaryEvent("Timeout", nil) },
			level: core.TraceLevel,
			want:  "Catch boundary event 'Timeout' done.",
		},
		{
			name: "TriggerDeferredEvents",
			call: func(l EventLogger) {
				l.TriggerDeferredEvents(&DeferredEvent{FlowObject: FlowObject{Name: "Paid", Type: "intermediateCatchEvent"}})
			},
			level: core.TraceLevel,
			want:  "Emit deferred events intermediateCatchEvent 'Paid'",
		},
		{
			name:  "CallHandler",
			call:  func(l EventLogger) { l.CallHandler("end", "Ship", "onShip", nil) },
			level: core.TraceLevel,
			want:  "Call handler for: 'end' for flow object 'Ship'. Handler name: onShip.",
		},
		{
			name:  "CallHandlerDone",
			call:  func(l EventLogger) { l.CallHandlerDone("end", "Ship", "onShip") },
			level: core.TraceLevel,
			want:  "Call handlerDone for: 'end' for flow object 'Ship'. Handler name: onShip.",
		},
		{
			name:  "PutTokenAt",
			call:  func(l EventLogger) { l.PutTokenAt("Ship", nil) },
			level: core.DebugLevel,
			want:  "Token was put on 'Ship'",
		},
		{
			name:  "TokenArrivedAt",
			call:  func(l EventLogger) { l.TokenArrivedAt(task, nil) },
			level: core.DebugLevel,
			want:  "Token arrived at task 'Ship'",
		},
		{
			name:  "DoneSaving",
			call:  func(l EventLogger) { l.DoneSaving(nil) },
			level: core.DebugLevel,
			want:  "SavedData",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, sink := newTestLogger(t, WithLevel(core.SillyLevel))
			tt.call(logger)

			record := sink.LastRecord()
			if record == nil {
				t.Fatal("Expected a record")
			}
			if record.Level != tt.level {
				t.Errorf("Expected level %v, got %v", tt.level, record.Level)
			}
			if record.Description != tt.want {
				t.Errorf("Expected description %q, got %q", tt.want, record.Description)
			}
		})
	}
}

func TestEventLevelsAreFiltered(t *testing.T) {
	logger, sink := newTestLogger(t, WithLevel(core.TraceLevel))

	logger.PutTokenAt("Ship", nil)
	logger.TokenArrivedAt(&FlowObject{Name: "Ship"}, nil)
	logger.DoneSaving(map[string]int{"v": 1})
	logger.TaskDone("Ship", nil)
	logger.HandlerError("h", errors.New("e"))

	if sink.Count() != 2 {
		t.Errorf("Debug events must be filtered at threshold trace, got %d records", sink.Count())
	}
}

func TestSendMessageMissingNames(t *testing.T) {
	var lines testutil.LineCollector
	logger, _ := newTestLogger(t, WithLevel(core.TraceLevel), WithAppender(lines.Append))

	logger.SendMessage("", &FlowObject{Name: "S"}, nil, nil)
	logger.SendMessage("Flow", nil, &FlowObject{}, nil)

	got := lines.Lines()
	if len(got) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(got))
	}
	if got[0] != "[trace][P][42][Send '' from 'S' to ''.]" {
		t.Errorf("Unexpected line %q", got[0])
	}
	if got[1] != "[trace][P][42][Send 'Flow' from '' to ''.]" {
		t.Errorf("Unexpected line %q", got[1])
	}
	for _, line := range got {
		if strings.Contains(line, "undefined") || strings.Contains(line, "<nil>") {
			t.Errorf("Missing names must render empty, got %q", line)
		}
	}
}

func TestEventPayloads(t *testing.T) {
	logger, sink := newTestLogger(t, WithLevel(core.SillyLevel))

	logger.TriggerDeferredEvents(&DeferredEvent{
		FlowObject: FlowObject{Name: "Paid", Type: "messageEvent"},
		Data:       map[string]string{"invoice": "A-1"},
	})
	if got := sink.LastRecord().Message; !strings.Contains(got, `"data":{"invoice":"A-1"}`) {
		t.Errorf("Deferred event data should be the payload, got %s", got)
	}

	logger.DoneSaving(map[string]int{"tokens": 2})
	if got := sink.LastRecord().Message; got != `{"process":"P","id":"42","description":"SavedData","data":{"tokens":2}}` {
		t.Errorf("Unexpected saved data record %s", got)
	}

	logger.CallHandlerDone("end", "Ship", "onShip")
	if sink.LastRecord().HasData() {
		t.Error("CallHandlerDone carries no payload")
	}
}

func TestEventNilInputs(t *testing.T) {
	logger, sink := newTestLogger(t, WithLevel(core.SillyLevel))

	logger.TriggerEvent(nil, nil)
	logger.TokenArrivedAt(nil, nil)
	logger.TriggerDeferredEvents(nil)
	logger.HandlerError("h", nil)

	want := []string{
		"Trigger  ''",
		"Token arrived at  ''",
		"Emit deferred events  ''",
		"Error in handler 'h': ",
	}
	records := sink.Records()
	if len(records) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(records))
	}
	for i, w := range want {
		if records[i].Description != w {
			t.Errorf("Record %d: expected %q, got %q", i, w, records[i].Description)
		}
	}
}
