package scanner

// ParseContext identifies where in the JSON grammar the scanner currently
// sits. Recovery decisions (string termination, missing-quote inference)
// depend on it.
type ParseContext int

const (
	// ContextRoot is the top level, outside any structure.
	ContextRoot ParseContext = iota
	// ContextObject is inside an object, between members.
	ContextObject
	// ContextObjectKey is reading an object key.
	ContextObjectKey
	// ContextObjectValue is reading the value of an object member.
	ContextObjectValue
	// ContextArray is reading array elements.
	ContextArray
)

// String returns the context name for log output.
func (c ParseContext) String() string {
	switch c {
	case ContextRoot:
		return "root"
	case ContextObject:
		return "object"
	case ContextObjectKey:
		return "object_key"
	case ContextObjectValue:
		return "object_value"
	case ContextArray:
		return "array"
	}
	return "unknown"
}

// ContextStack tracks the nesting of parse contexts. Only the top element
// is ever consulted for decisions; the rest exist so that leaving a
// structure restores the enclosing context.
type ContextStack struct {
	stack []ParseContext
}

// NewContextStack returns an empty stack.
func NewContextStack() *ContextStack {
	return &ContextStack{}
}

// Push enters a new context.
func (s *ContextStack) Push(c ParseContext) {
	s.stack = append(s.stack, c)
}

// Pop leaves the current context. Returns false if the stack is empty.
func (s *ContextStack) Pop() (ParseContext, bool) {
	if len(s.stack) == 0 {
		return ContextRoot, false
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return top, true
}

// Current returns the top context without removing it. Returns false if
// the stack is empty, which callers treat as root level.
func (s *ContextStack) Current() (ParseContext, bool) {
	if len(s.stack) == 0 {
		return ContextRoot, false
	}
	return s.stack[len(s.stack)-1], true
}

// Empty reports whether no context has been entered.
func (s *ContextStack) Empty() bool {
	return len(s.stack) == 0
}

// Depth returns the number of contexts currently entered.
func (s *ContextStack) Depth() int {
	return len(s.stack)
}

// Reset drops all contexts.
func (s *ContextStack) Reset() {
	s.stack = s.stack[:0]
}
