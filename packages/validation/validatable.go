package validation

// Validatable is a subject whose attributes can be probed.
type Validatable interface {
	// SetAttribute assigns value to the named attribute. A nil value means
	// the attribute is absent.
	SetAttribute(name string, value any) error
	// Validate runs the subject's validations against its current state.
	Validate() Errors
}

// AttributeReader exposes the current value of an attribute.
type AttributeReader interface {
	Attribute(name string) (any, bool)
}

// FailureReporter is implemented by subjects that can fail outside their
// validations, such as a dropped connection. Err reports the first such
// failure and stays set once it is.
type FailureReporter interface {
	Err() error
}

// KindReporter declares the value kind of an attribute.
type KindReporter interface {
	AttributeKind(name string) Kind
}

// AttributeKind resolves the kind of attribute on subject: a KindReporter
// wins, then the current value of an AttributeReader, then KindString.
func AttributeKind(subject Validatable, attribute string) Kind {
	if kr, ok := subject.(KindReporter); ok {
		return kr.AttributeKind(attribute)
	}
	if ar, ok := subject.(AttributeReader); ok {
		if v, found := ar.Attribute(attribute); found && v != nil {
			return KindOf(v)
		}
	}
	return KindString
}
