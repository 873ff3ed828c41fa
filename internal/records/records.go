// Package records holds the closed set of typed table records and the
// registry that binds each kind to a place in the document.
package records

import (
	"fmt"
	"strings"
)

// Record is one typed row. The set of implementations is closed: every
// Kind has exactly one concrete type in this package.
type Record interface {
	Kind() Kind
	// Values returns the fields in Kind.Fields order, verbatim.
	Values() []string
	isRecord()
}

// ShapeError reports a row that does not fit a record shape.
type ShapeError struct {
	Kind   Kind
	Want   int
	Got    int
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: want %d cells, got %d", e.Kind, e.Want, e.Got)
}

// Construct builds a record of kind k from a row's cells. It never panics;
// a row that does not fit returns a *ShapeError.
func Construct(k Kind, cells []string) (Record, error) {
	if !k.valid() {
		return nil, fmt.Errorf("construct: %w", &ShapeError{Kind: k, Reason: "unknown kind"})
	}
	if len(cells) != k.Arity() {
		return nil, &ShapeError{Kind: k, Want: k.Arity(), Got: len(cells)}
	}
	if strings.TrimSpace(cells[0]) == "" {
		return nil, &ShapeError{Kind: k, Want: k.Arity(), Got: len(cells), Reason: "empty first cell"}
	}
	for i, c := range cells {
		if strings.ContainsAny(c, "\r\n") {
			return nil, &ShapeError{Kind: k, Want: k.Arity(), Got: len(cells),
				Reason: fmt.Sprintf("line break in cell %d", i)}
		}
	}

	c := cells
	switch k {
	case KindSecurityLevel:
		return SecurityLevel{c[0], c[1], c[2]}, nil
	case KindTestedHardware:
		return TestedHardware{c[0], c[1], c[2], c[3]}, nil
	case KindTestedSoftware:
		return TestedSoftware{c[0], c[1], c[2], c[3]}, nil
	case KindTestedHybridHardware:
		return TestedHybridHardware{c[0], c[1], c[2], c[3], c[4]}, nil
	case KindTestedOpEnv:
		return TestedOpEnv{c[0], c[1], c[2], c[3], c[4], c[5]}, nil
	case KindVendorAffirmedOpEnv:
		return VendorAffirmedOpEnv{c[0], c[1]}, nil
	case KindModeOfOperation:
		return ModeOfOperation{c[0], c[1], c[2], c[3]}, nil
	case KindApprovedAlgorithm:
		return ApprovedAlgorithm{c[0], c[1], c[2], c[3]}, nil
	case KindVendorAffirmedAlgorithm:
		return VendorAffirmedAlgorithm{c[0], c[1], c[2], c[3]}, nil
	case KindNonApprovedAllowed:
		return NonApprovedAllowed{c[0], c[1], c[2], c[3]}, nil
	case KindNonApprovedAllowedNSC:
		return NonApprovedAllowedNSC{c[0], c[1], c[2]}, nil
	case KindNonApprovedNotAllowed:
		return NonApprovedNotAllowed{c[0], c[1]}, nil
	case KindSecurityFunction:
		return SecurityFunction{c[0], c[1], c[2], c[3], c[4]}, nil
	case KindEntropyCertificate:
		return EntropyCertificate{c[0], c[1]}, nil
	case KindEntropySource:
		return EntropySource{c[0], c[1], c[2], c[3], c[4], c[5]}, nil
	case KindPortInterface:
		return PortInterface{c[0], c[1], c[2]}, nil
	case KindAuthMethod:
		return AuthMethod{c[0], c[1], c[2], c[3], c[4]}, nil
	case KindRole:
		return Role{c[0], c[1], c[2], c[3]}, nil
	case KindApprovedService:
		return ApprovedService{c[0], c[1], c[2], c[3], c[4], c[5], c[6]}, nil
	case KindNonApprovedService:
		return NonApprovedService{c[0], c[1], c[2], c[3]}, nil
	case KindStorageArea:
		return StorageArea{c[0], c[1], c[2]}, nil
	case KindZeroizationMethod:
		return ZeroizationMethod{c[0], c[1], c[2], c[3]}, nil
	case KindSelfTest:
		return SelfTest{c[0], c[1], c[2], c[3], c[4], c[5]}, nil
	case KindConditionalSelfTest:
		return ConditionalSelfTest{c[0], c[1], c[2], c[3], c[4], c[5], c[6]}, nil
	case KindErrorState:
		return ErrorState{c[0], c[1], c[2], c[3], c[4]}, nil
	}
	return nil, &ShapeError{Kind: k, Reason: "unknown kind"}
}

// Map returns the record as field name to value.
func Map(r Record) map[string]string {
	fields := r.Kind().Fields()
	values := r.Values()
	m := make(map[string]string, len(fields))
	for i, f := range fields {
		m[f] = values[i]
	}
	return m
}
