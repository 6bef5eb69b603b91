package core

import (
	"fmt"

	"github.com/google/uuid"
)

// Context identifies the process instance that produced a record.
// It is owned by the hosting process instance and never modified by loggers.
type Context struct {
	definitionName string
	instanceID     any
}

// NewContext returns the context of a process instance. The instance id may
// be a string or a number.
func NewContext(definitionName string, instanceID any) Context {
	return Context{definitionName: definitionName, instanceID: instanceID}
}

// NewContextWithGeneratedID returns a context with a random UUID as instance id.
func NewContextWithGeneratedID(definitionName string) Context {
	return NewContext(definitionName, uuid.NewString())
}

// DefinitionName returns the name of the process definition.
func (c Context) DefinitionName() string {
	return c.definitionName
}

// InstanceID returns the process instance identifier as supplied.
func (c Context) InstanceID() any {
	return c.instanceID
}

// InstanceIDString returns the instance identifier in its plain string form.
// A missing identifier renders as an empty string.
func (c Context) InstanceIDString() string {
	if c.instanceID == nil {
		return ""
	}
	if s, ok := c.instanceID.(string); ok {
		return s
	}
	return fmt.Sprint(c.instanceID)
}
