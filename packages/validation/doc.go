// Package validation defines the contract between matchers and the objects
// they probe.
//
// A subject is anything that can take a value for a named attribute and then
// report the validation messages recorded against it:
//   - Validatable: SetAttribute + Validate (required)
//   - AttributeReader: read back the current attribute value (optional)
//   - KindReporter: declare the attribute's value kind (optional)
//
// StructSubject adapts a plain struct pointer and a validation function to the
// contract, so most Go models can be tested without writing an adapter.
package validation
