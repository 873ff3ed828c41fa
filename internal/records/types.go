package records

// One concrete type per Kind. Field order matches Kind.Fields.

// SecurityLevel is one row of the per-area security level table.
type SecurityLevel struct {
	Section       string `json:"section"`
	SectionTitle  string `json:"sectionTitle"`
	SecurityLevel string `json:"securityLevel"`
}

func (SecurityLevel) Kind() Kind { return KindSecurityLevel }
func (r SecurityLevel) Values() []string {
	return []string{r.Section, r.SectionTitle, r.SecurityLevel}
}
func (SecurityLevel) isRecord() {}

// TestedHardware identifies a tested hardware module.
type TestedHardware struct {
	ModelPartNum string `json:"modelPartNum"`
	HWVersion    string `json:"hwVersion"`
	Processors   string `json:"processors"`
	Features     string `json:"features"`
}

func (TestedHardware) Kind() Kind { return KindTestedHardware }
func (r TestedHardware) Values() []string {
	return []string{r.ModelPartNum, r.HWVersion, r.Processors, r.Features}
}
func (TestedHardware) isRecord() {}

type TestedSoftware struct {
	PackageFileName string `json:"packageFileName"`
	SWFWVersion     string `json:"swFwVersion"`
	Features        string `json:"features"`
	IntegrityTest   string `json:"integrityTest"`
}

func (TestedSoftware) Kind() Kind { return KindTestedSoftware }
func (r TestedSoftware) Values() []string {
	return []string{r.PackageFileName, r.SWFWVersion, r.Features, r.IntegrityTest}
}
func (TestedSoftware) isRecord() {}

type TestedHybridHardware struct {
	ModelPartNum string `json:"modelPartNum"`
	HWVersion    string `json:"hwVersion"`
	FWVersion    string `json:"fwVersion"`
	Processors   string `json:"processors"`
	Features     string `json:"features"`
}

func (TestedHybridHardware) Kind() Kind { return KindTestedHybridHardware }
func (r TestedHybridHardware) Values() []string {
	return []string{r.ModelPartNum, r.HWVersion, r.FWVersion, r.Processors, r.Features}
}
func (TestedHybridHardware) isRecord() {}

// TestedOpEnv is an operational environment the module was tested on.
type TestedOpEnv struct {
	OperatingSystem  string `json:"operatingSystem"`
	HardwarePlatform string `json:"hardwarePlatform"`
	Processors       string `json:"processors"`
	PAAPAI           string `json:"paaPai"`
	HypervisorHostOS string `json:"hypervisorHostOs"`
	Version          string `json:"version"`
}

func (TestedOpEnv) Kind() Kind { return KindTestedOpEnv }
func (r TestedOpEnv) Values() []string {
	return []string{r.OperatingSystem, r.HardwarePlatform, r.Processors, r.PAAPAI, r.HypervisorHostOS, r.Version}
}
func (TestedOpEnv) isRecord() {}

type VendorAffirmedOpEnv struct {
	OperatingSystem  string `json:"operatingSystem"`
	HardwarePlatform string `json:"hardwarePlatform"`
}

func (VendorAffirmedOpEnv) Kind() Kind { return KindVendorAffirmedOpEnv }
func (r VendorAffirmedOpEnv) Values() []string {
	return []string{r.OperatingSystem, r.HardwarePlatform}
}
func (VendorAffirmedOpEnv) isRecord() {}

type ModeOfOperation struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	StatusIndicator string `json:"statusIndicator"`
}

func (ModeOfOperation) Kind() Kind { return KindModeOfOperation }
func (r ModeOfOperation) Values() []string {
	return []string{r.Name, r.Description, r.Type, r.StatusIndicator}
}
func (ModeOfOperation) isRecord() {}

// ApprovedAlgorithm is an algorithm with a CAVP certificate.
type ApprovedAlgorithm struct {
	Algorithm    string `json:"algorithm"`
	CAVPCertName string `json:"cavpCertName"`
	Properties   string `json:"properties"`
	Reference    string `json:"reference"`
}

func (ApprovedAlgorithm) Kind() Kind { return KindApprovedAlgorithm }
func (r ApprovedAlgorithm) Values() []string {
	return []string{r.Algorithm, r.CAVPCertName, r.Properties, r.Reference}
}
func (ApprovedAlgorithm) isRecord() {}

type VendorAffirmedAlgorithm struct {
	Name         string `json:"name"`
	AlgoPropList string `json:"algoPropList"`
	ImplName     string `json:"implName"`
	Reference    string `json:"reference"`
}

func (VendorAffirmedAlgorithm) Kind() Kind { return KindVendorAffirmedAlgorithm }
func (r VendorAffirmedAlgorithm) Values() []string {
	return []string{r.Name, r.AlgoPropList, r.ImplName, r.Reference}
}
func (VendorAffirmedAlgorithm) isRecord() {}

type NonApprovedAllowed struct {
	Name         string `json:"name"`
	AlgoPropList string `json:"algoPropList"`
	ImplName     string `json:"implName"`
	Reference    string `json:"reference"`
}

func (NonApprovedAllowed) Kind() Kind { return KindNonApprovedAllowed }
func (r NonApprovedAllowed) Values() []string {
	return []string{r.Name, r.AlgoPropList, r.ImplName, r.Reference}
}
func (NonApprovedAllowed) isRecord() {}

// NonApprovedAllowedNSC is a non-approved algorithm allowed with no security claimed.
type NonApprovedAllowedNSC struct {
	Name   string `json:"name"`
	Caveat string `json:"caveat"`
	Use    string `json:"use"`
}

func (NonApprovedAllowedNSC) Kind() Kind { return KindNonApprovedAllowedNSC }
func (r NonApprovedAllowedNSC) Values() []string {
	return []string{r.Name, r.Caveat, r.Use}
}
func (NonApprovedAllowedNSC) isRecord() {}

type NonApprovedNotAllowed struct {
	Name string `json:"name"`
	Use  string `json:"use"`
}

func (NonApprovedNotAllowed) Kind() Kind { return KindNonApprovedNotAllowed }
func (r NonApprovedNotAllowed) Values() []string {
	return []string{r.Name, r.Use}
}
func (NonApprovedNotAllowed) isRecord() {}

type SecurityFunction struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Properties  string `json:"properties"`
	Algorithms  string `json:"algorithms"`
}

func (SecurityFunction) Kind() Kind { return KindSecurityFunction }
func (r SecurityFunction) Values() []string {
	return []string{r.Name, r.Type, r.Description, r.Properties, r.Algorithms}
}
func (SecurityFunction) isRecord() {}

type EntropyCertificate struct {
	VendorName string `json:"vendorName"`
	ESVCert    string `json:"esvCert"`
}

func (EntropyCertificate) Kind() Kind { return KindEntropyCertificate }
func (r EntropyCertificate) Values() []string {
	return []string{r.VendorName, r.ESVCert}
}
func (EntropyCertificate) isRecord() {}

type EntropySource struct {
	Name                   string `json:"name"`
	Type                   string `json:"type"`
	OperationalEnvironment string `json:"operationalEnvironment"`
	SampleSize             string `json:"sampleSize"`
	EntropyPerSample       string `json:"entropyPerSample"`
	ConditioningComponent  string `json:"conditioningComponent"`
}

func (EntropySource) Kind() Kind { return KindEntropySource }
func (r EntropySource) Values() []string {
	return []string{r.Name, r.Type, r.OperationalEnvironment, r.SampleSize, r.EntropyPerSample, r.ConditioningComponent}
}
func (EntropySource) isRecord() {}

// PortInterface maps a physical port to its logical interfaces.
type PortInterface struct {
	PhysicalPort     string `json:"physicalPort"`
	LogicalInterface string `json:"logicalInterface"`
	Data             string `json:"data"`
}

func (PortInterface) Kind() Kind { return KindPortInterface }
func (r PortInterface) Values() []string {
	return []string{r.PhysicalPort, r.LogicalInterface, r.Data}
}
func (PortInterface) isRecord() {}

type AuthMethod struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	Mechanism          string `json:"mechanism"`
	StrengthPerAttempt string `json:"strengthPerAttempt"`
	StrengthPerMinute  string `json:"strengthPerMinute"`
}

func (AuthMethod) Kind() Kind { return KindAuthMethod }
func (r AuthMethod) Values() []string {
	return []string{r.Name, r.Description, r.Mechanism, r.StrengthPerAttempt, r.StrengthPerMinute}
}
func (AuthMethod) isRecord() {}

type Role struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	OperatorType string `json:"operatorType"`
	AuthMethods  string `json:"authMethods"`
}

func (Role) Kind() Kind { return KindRole }
func (r Role) Values() []string {
	return []string{r.Name, r.Type, r.OperatorType, r.AuthMethods}
}
func (Role) isRecord() {}

type ApprovedService struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	Indicator         string `json:"indicator"`
	Inputs            string `json:"inputs"`
	Outputs           string `json:"outputs"`
	SecurityFunctions string `json:"securityFunctions"`
	SSPs              string `json:"ssps"`
}

func (ApprovedService) Kind() Kind { return KindApprovedService }
func (r ApprovedService) Values() []string {
	return []string{r.Name, r.Description, r.Indicator, r.Inputs, r.Outputs, r.SecurityFunctions, r.SSPs}
}
func (ApprovedService) isRecord() {}

type NonApprovedService struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Algorithms  string `json:"algorithms"`
	Role        string `json:"role"`
}

func (NonApprovedService) Kind() Kind { return KindNonApprovedService }
func (r NonApprovedService) Values() []string {
	return []string{r.Name, r.Description, r.Algorithms, r.Role}
}
func (NonApprovedService) isRecord() {}

type StorageArea struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	PersistenceType string `json:"persistenceType"`
}

func (StorageArea) Kind() Kind { return KindStorageArea }
func (r StorageArea) Values() []string {
	return []string{r.Name, r.Description, r.PersistenceType}
}
func (StorageArea) isRecord() {}

type ZeroizationMethod struct {
	Method             string `json:"method"`
	Description        string `json:"description"`
	Rationale          string `json:"rationale"`
	OperatorInitiation string `json:"operatorInitiation"`
}

func (ZeroizationMethod) Kind() Kind { return KindZeroizationMethod }
func (r ZeroizationMethod) Values() []string {
	return []string{r.Method, r.Description, r.Rationale, r.OperatorInitiation}
}
func (ZeroizationMethod) isRecord() {}

// SelfTest is a pre-operational self-test.
type SelfTest struct {
	Algorithm      string `json:"algorithm"`
	TestProperties string `json:"testProperties"`
	TestMethod     string `json:"testMethod"`
	TestType       string `json:"testType"`
	Indicator      string `json:"indicator"`
	Details        string `json:"details"`
}

func (SelfTest) Kind() Kind { return KindSelfTest }
func (r SelfTest) Values() []string {
	return []string{r.Algorithm, r.TestProperties, r.TestMethod, r.TestType, r.Indicator, r.Details}
}
func (SelfTest) isRecord() {}

type ConditionalSelfTest struct {
	Algorithm      string `json:"algorithm"`
	TestProperties string `json:"testProperties"`
	TestMethod     string `json:"testMethod"`
	TestType       string `json:"testType"`
	Indicator      string `json:"indicator"`
	Details        string `json:"details"`
	Conditions     string `json:"conditions"`
}

func (ConditionalSelfTest) Kind() Kind { return KindConditionalSelfTest }
func (r ConditionalSelfTest) Values() []string {
	return []string{r.Algorithm, r.TestProperties, r.TestMethod, r.TestType, r.Indicator, r.Details, r.Conditions}
}
func (ConditionalSelfTest) isRecord() {}

type ErrorState struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Conditions     string `json:"conditions"`
	RecoveryMethod string `json:"recoveryMethod"`
	Indicator      string `json:"indicator"`
}

func (ErrorState) Kind() Kind { return KindErrorState }
func (r ErrorState) Values() []string {
	return []string{r.Name, r.Description, r.Conditions, r.RecoveryMethod, r.Indicator}
}
func (ErrorState) isRecord() {}
