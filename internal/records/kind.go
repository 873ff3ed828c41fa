package records

import "fmt"

// Kind identifies one record shape.
type Kind int

const (
	KindUnknown Kind = iota
	KindSecurityLevel
	KindTestedHardware
	KindTestedSoftware
	KindTestedHybridHardware
	KindTestedOpEnv
	KindVendorAffirmedOpEnv
	KindModeOfOperation
	KindApprovedAlgorithm
	KindVendorAffirmedAlgorithm
	KindNonApprovedAllowed
	KindNonApprovedAllowedNSC
	KindNonApprovedNotAllowed
	KindSecurityFunction
	KindEntropyCertificate
	KindEntropySource
	KindPortInterface
	KindAuthMethod
	KindRole
	KindApprovedService
	KindNonApprovedService
	KindStorageArea
	KindZeroizationMethod
	KindSelfTest
	KindConditionalSelfTest
	KindErrorState
	kindCount
)

type kindInfo struct {
	slug   string
	fields []string
}

var kinds = [kindCount]kindInfo{
	KindUnknown:              {"unknown", nil},
	KindSecurityLevel:        {"security_level", []string{"section", "sectionTitle", "securityLevel"}},
	KindTestedHardware:       {"tested_hw", []string{"modelPartNum", "hwVersion", "processors", "features"}},
	KindTestedSoftware:       {"tested_sw_fw_hy", []string{"packageFileName", "swFwVersion", "features", "integrityTest"}},
	KindTestedHybridHardware: {"tested_hy_hw", []string{"modelPartNum", "hwVersion", "fwVersion", "processors", "features"}},
	KindTestedOpEnv: {"tested_op_env", []string{
		"operatingSystem", "hardwarePlatform", "processors", "paaPai", "hypervisorHostOs", "version",
	}},
	KindVendorAffirmedOpEnv:     {"vendor_affirmed_op_env", []string{"operatingSystem", "hardwarePlatform"}},
	KindModeOfOperation:         {"mode_of_operation", []string{"name", "description", "type", "statusIndicator"}},
	KindApprovedAlgorithm:       {"approved_algorithm", []string{"algorithm", "cavpCertName", "properties", "reference"}},
	KindVendorAffirmedAlgorithm: {"vendor_affirmed_algorithm", []string{"name", "algoPropList", "implName", "reference"}},
	KindNonApprovedAllowed:      {"non_approved_allowed", []string{"name", "algoPropList", "implName", "reference"}},
	KindNonApprovedAllowedNSC:   {"non_approved_allowed_nsc", []string{"name", "caveat", "use"}},
	KindNonApprovedNotAllowed:   {"non_approved_not_allowed", []string{"name", "use"}},
	KindSecurityFunction:        {"security_function", []string{"name", "type", "description", "properties", "algorithms"}},
	KindEntropyCertificate:      {"entropy_certificate", []string{"vendorName", "esvCert"}},
	KindEntropySource: {"entropy_source", []string{
		"name", "type", "operationalEnvironment", "sampleSize", "entropyPerSample", "conditioningComponent",
	}},
	KindPortInterface: {"port_interface", []string{"physicalPort", "logicalInterface", "data"}},
	KindAuthMethod: {"auth_method", []string{
		"name", "description", "mechanism", "strengthPerAttempt", "strengthPerMinute",
	}},
	KindRole: {"role", []string{"name", "type", "operatorType", "authMethods"}},
	KindApprovedService: {"approved_service", []string{
		"name", "description", "indicator", "inputs", "outputs", "securityFunctions", "ssps",
	}},
	KindNonApprovedService: {"non_approved_service", []string{"name", "description", "algorithms", "role"}},
	KindStorageArea:        {"storage_area", []string{"name", "description", "persistenceType"}},
	KindZeroizationMethod: {"zeroization_method", []string{
		"method", "description", "rationale", "operatorInitiation",
	}},
	KindSelfTest: {"self_test", []string{
		"algorithm", "testProperties", "testMethod", "testType", "indicator", "details",
	}},
	KindConditionalSelfTest: {"conditional_self_test", []string{
		"algorithm", "testProperties", "testMethod", "testType", "indicator", "details", "conditions",
	}},
	KindErrorState: {"error_state", []string{"name", "description", "conditions", "recoveryMethod", "indicator"}},
}

func (k Kind) valid() bool { return k > KindUnknown && k < kindCount }

// String returns the kind's slug, e.g. "approved_algorithm".
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kinds[k].slug
}

// Fields returns the ordered field names of the kind's record shape.
func (k Kind) Fields() []string {
	if !k.valid() {
		return nil
	}
	return append([]string(nil), kinds[k].fields...)
}

// Arity is the number of columns a row needs to build this kind.
func (k Kind) Arity() int {
	if !k.valid() {
		return 0
	}
	return len(kinds[k].fields)
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindUnknown + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind resolves a slug.
func ParseKind(s string) (Kind, error) {
	for k := KindUnknown + 1; k < kindCount; k++ {
		if kinds[k].slug == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown record kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("invalid record kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
