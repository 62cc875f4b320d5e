// SPDX-License-Identifier: MPL-2.0

package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownModel is the sentinel error wrapped by UnknownModelError.
	ErrUnknownModel = errors.New("unknown model")
	// ErrCyclicInheritance is the sentinel error wrapped by CyclicModelInheritanceError.
	ErrCyclicInheritance = errors.New("cyclic model inheritance")
	// ErrDanglingTextureVariable is the sentinel error wrapped by DanglingTextureVariableError.
	ErrDanglingTextureVariable = errors.New("dangling texture variable")
)

type (
	// UnknownModelError is returned when a model id has no raw definition in
	// the distribution. It wraps ErrUnknownModel for errors.Is() compatibility.
	UnknownModelError struct {
		ID ID
	}

	// CyclicModelInheritanceError is returned when a parent chain revisits a
	// model that is already being resolved. Chain holds the ids from the
	// first occurrence to the repeat, in resolution order.
	CyclicModelInheritanceError struct {
		Chain []ID
	}

	// DanglingTextureVariableError is returned when an element face needs a
	// texture variable that no model in the chain binds to a concrete path.
	DanglingTextureVariableError struct {
		Model    ID
		Variable string
	}
)

// Error implements the error interface.
func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model: %s", e.ID)
}

// Unwrap returns ErrUnknownModel.
func (e *UnknownModelError) Unwrap() error {
	return ErrUnknownModel
}

// Error implements the error interface.
func (e *CyclicModelInheritanceError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, id := range e.Chain {
		parts[i] = id.String()
	}
	return fmt.Sprintf("cyclic model inheritance: %s", strings.Join(parts, " -> "))
}

// Unwrap returns ErrCyclicInheritance.
func (e *CyclicModelInheritanceError) Unwrap() error {
	return ErrCyclicInheritance
}

// Error implements the error interface.
func (e *DanglingTextureVariableError) Error() string {
	return fmt.Sprintf("model %s: texture variable #%s has no binding", e.Model, e.Variable)
}

// Unwrap returns ErrDanglingTextureVariable.
func (e *DanglingTextureVariableError) Unwrap() error {
	return ErrDanglingTextureVariable
}
