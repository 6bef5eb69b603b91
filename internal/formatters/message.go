// Package formatters renders accepted log calls for the two output paths:
// the structured record delivered to sinks and the single raw line handed
// to an installed appender.
package formatters

import (
	"fmt"
	"strings"

	"github.com/willibrandon/proclog/core"
)

// structuredMessage is the wire shape of a record delivered to sinks.
type structuredMessage struct {
	Process     string `json:"process"`
	ID          any    `json:"id"`
	Description string `json:"description"`
	Data        any    `json:"data,omitempty"`
}

// StructuredMessage serializes the structured record
// {"process":...,"id":...,"description":...,"data":...}.
// The data key is omitted when no payload is given. If the payload cannot
// be encoded, it is replaced by its plain-string rendering and a
// *core.FormatError is returned together with the usable message.
func StructuredMessage(ctx core.Context, description string, data any) (string, error) {
	msg := structuredMessage{
		Process:     ctx.DefinitionName(),
		ID:          ctx.InstanceID(),
		Description: description,
	}
	if !core.IsAbsent(data) {
		msg.Data = data
	}

	b, err := marshal(msg)
	if err == nil {
		return string(b), nil
	}

	ferr := &core.FormatError{Payload: fmt.Sprintf("%T", data), Err: err}
	msg.Data = FallbackString(data)
	if b, err = marshal(msg); err != nil {
		// Only the instance id is left that could fail.
		msg.ID = fmt.Sprint(msg.ID)
		b, _ = marshal(msg)
	}
	return string(b), ferr
}

// RawLine renders "[<level>][<process>][<id>][<description>][<payload>]".
// The payload segment is omitted when no payload is given.
func RawLine(level core.Level, ctx core.Context, description string, data any) (string, error) {
	var b strings.Builder
	b.Grow(len(description) + 64)
	writeSegment(&b, level.String())
	writeSegment(&b, ctx.DefinitionName())
	writeSegment(&b, ctx.InstanceIDString())
	writeSegment(&b, description)

	if core.IsAbsent(data) {
		return b.String(), nil
	}
	payload, err := PayloadString(data)
	writeSegment(&b, payload)
	return b.String(), err
}

func writeSegment(b *strings.Builder, s string) {
	b.WriteByte('[')
	b.WriteString(s)
	b.WriteByte(']')
}
