package types

import (
	"fmt"
	"strings"
)

// CyclicHierarchyError reports a type that is its own base. Path starts and
// ends with the same type.
type CyclicHierarchyError struct {
	Path []string
}

func (e *CyclicHierarchyError) Error() string {
	return "types: cyclic type hierarchy: " + strings.Join(e.Path, " -> ")
}

// PrivateFieldPromotedError reports a private field that was given an
// explicit descriptor.
type PrivateFieldPromotedError struct {
	Type  string
	Field string
}

func (e *PrivateFieldPromotedError) Error() string {
	return fmt.Sprintf("types: field %s.%s is private and cannot have an explicit descriptor", e.Type, e.Field)
}

// ConflictingDefaultError reports a field with both a resolver and a
// default value.
type ConflictingDefaultError struct {
	Type  string
	Field string
}

func (e *ConflictingDefaultError) Error() string {
	return fmt.Sprintf("types: field %s.%s has both a resolver and a default value", e.Type, e.Field)
}

// ConflictingDefaultFactoryError reports a field with both a resolver and a
// default factory.
type ConflictingDefaultFactoryError struct {
	Type  string
	Field string
}

func (e *ConflictingDefaultFactoryError) Error() string {
	return fmt.Sprintf("types: field %s.%s has both a resolver and a default factory", e.Type, e.Field)
}

// UntypedFieldError reports a field whose type cannot be determined.
type UntypedFieldError struct {
	Type  string
	Field string
}

func (e *UntypedFieldError) Error() string {
	return fmt.Sprintf("types: field %s.%s has no type", e.Type, e.Field)
}

// DuplicateFieldError reports two fields exposed under one name.
type DuplicateFieldError struct {
	Type       string
	PublicName string
	Fields     [2]string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("types: fields %s and %s of %s are both exposed as %q",
		e.Fields[0], e.Fields[1], e.Type, e.PublicName)
}
