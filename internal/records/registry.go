package records

import (
	"fmt"

	"github.com/dgallion1/secpolicy/internal/doctree"
)

// Schema binds a record kind to the place its table is expected.
type Schema struct {
	Kind      Kind
	Position  doctree.Position
	Name      string // caption inside the section; empty when the section is the table
	MultiPage bool   // merge same-header tables split by page breaks
}

// Registry is the ordered list of expected tables.
type Registry []Schema

// DefaultRegistry returns the tables of the FIPS 140-3 security policy template.
func DefaultRegistry() Registry {
	at := func(ch, sub int) doctree.Position { return doctree.Position{Chapter: ch, Sub: sub} }
	return Registry{
		{Kind: KindSecurityLevel, Position: at(1, 2), MultiPage: true},

		{Kind: KindTestedHardware, Position: at(2, 2), Name: "Tested Module Identification - Hardware", MultiPage: true},
		{Kind: KindTestedSoftware, Position: at(2, 2), Name: "Tested Module Identification – Software, Firmware, Hybrid", MultiPage: true},
		{Kind: KindTestedHybridHardware, Position: at(2, 2), Name: "Tested Module Identification – Hybrid Disjoint Hardware", MultiPage: true},
		{Kind: KindTestedOpEnv, Position: at(2, 2), Name: "Tested Operational Environments - Software, Firmware, Hybrid", MultiPage: true},
		{Kind: KindVendorAffirmedOpEnv, Position: at(2, 2), Name: "Vendor-Affirmed Operational Environments - Software, Firmware, Hybrid", MultiPage: true},

		{Kind: KindModeOfOperation, Position: at(2, 4), MultiPage: true},

		{Kind: KindApprovedAlgorithm, Position: at(2, 5), Name: "Approved Algorithms", MultiPage: true},
		{Kind: KindVendorAffirmedAlgorithm, Position: at(2, 5), Name: "Vendor-Affirmed Algorithms", MultiPage: true},
		{Kind: KindNonApprovedAllowed, Position: at(2, 5), Name: "Non-Approved, Allowed Algorithms", MultiPage: true},
		{Kind: KindNonApprovedAllowedNSC, Position: at(2, 5), Name: "Non-Approved, Allowed Algorithms with No Security Claimed", MultiPage: true},
		{Kind: KindNonApprovedNotAllowed, Position: at(2, 5), Name: "Non-Approved, Not Allowed Algorithms", MultiPage: true},

		{Kind: KindSecurityFunction, Position: at(2, 6), MultiPage: true},
		{Kind: KindEntropyCertificate, Position: at(2, 8), Name: "Entropy Certificates", MultiPage: true},
		{Kind: KindEntropySource, Position: at(2, 8), Name: "Entropy Sources", MultiPage: true},

		{Kind: KindPortInterface, Position: at(3, 1), MultiPage: true},

		{Kind: KindAuthMethod, Position: at(4, 1), MultiPage: true},
		{Kind: KindRole, Position: at(4, 2), MultiPage: true},
		{Kind: KindApprovedService, Position: at(4, 3), MultiPage: true},
		{Kind: KindNonApprovedService, Position: at(4, 4), MultiPage: true},

		{Kind: KindStorageArea, Position: at(9, 1), MultiPage: true},
		{Kind: KindZeroizationMethod, Position: at(9, 3), MultiPage: true},

		{Kind: KindSelfTest, Position: at(10, 1), MultiPage: true},
		{Kind: KindConditionalSelfTest, Position: at(10, 2), MultiPage: true},
		{Kind: KindErrorState, Position: at(10, 4), MultiPage: true},
	}
}

// Names returns the captions of every named table registered at p, in
// registry order.
func (r Registry) Names(p doctree.Position) []string {
	var names []string
	for _, s := range r {
		if s.Position == p && s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}

// Validate checks that every entry has a known kind, appears once, and
// points at a subchapter that exists in sections.
func (r Registry) Validate(sections *doctree.Tree) error {
	seen := make(map[Kind]bool, len(r))
	for i, s := range r {
		if !s.Kind.valid() {
			return fmt.Errorf("table %d: unknown kind", i)
		}
		if seen[s.Kind] {
			return fmt.Errorf("table %d: duplicate kind %s", i, s.Kind)
		}
		seen[s.Kind] = true
		if sections.At(s.Position) == nil {
			return fmt.Errorf("table %s: position %s not in section tree", s.Kind, s.Position)
		}
	}
	return nil
}
