package authz

// Capability names gating route access.
const (
	CreateReport        = "createReport"
	GetReports          = "getReports"
	GetOwnReports       = "getOwnReports"
	ManageReports       = "manageReports"
	CreateReportPharos  = "createReportPharos"
	GetReportsPharos    = "getReportsPharos"
	ManageReportsPharos = "manageReportsPharos"
)

// roleCapabilities is the static access policy: role -> permitted capabilities.
// It is pure data, loaded once and never mutated after init.
var roleCapabilities = map[string]map[string]bool{
	"user": toSet(
		CreateReport,
		GetOwnReports,
		CreateReportPharos,
		GetReportsPharos,
	),
	"admin": toSet(
		GetReports,
		ManageReports,
		GetReportsPharos,
		ManageReportsPharos,
	),
}

func toSet(caps ...string) map[string]bool {
	set := make(map[string]bool, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return set
}

// Can reports whether the given role holds the capability. Unknown roles hold
// nothing.
func Can(role, capability string) bool {
	return roleCapabilities[role][capability]
}

// Roles returns the known role names.
func Roles() []string {
	names := make([]string, 0, len(roleCapabilities))
	for r := range roleCapabilities {
		names = append(names, r)
	}
	return names
}
