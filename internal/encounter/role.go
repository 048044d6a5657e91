package encounter

import "strings"

const (
	RoleTop     = "Top"
	RoleJungle  = "Jungle"
	RoleMid     = "Mid"
	RoleADC     = "ADC"
	RoleSupport = "Support"
	RoleUnknown = "Unknown"
)

var roleAliases = map[string]string{
	"top":         RoleTop,
	"jungle":      RoleJungle,
	"jungler":     RoleJungle,
	"jg":          RoleJungle,
	"mid":         RoleMid,
	"middle":      RoleMid,
	"adc":         RoleADC,
	"bottom":      RoleADC,
	"bot":         RoleADC,
	"carry":       RoleADC,
	"duo_carry":   RoleADC,
	"marksman":    RoleADC,
	"support":     RoleSupport,
	"utility":     RoleSupport,
	"sup":         RoleSupport,
	"supp":        RoleSupport,
	"duo_support": RoleSupport,
}

// NormalizeRole maps a lane/position label onto the fixed role vocabulary. Unrecognized
// labels, including "", NONE and INVALID, become Unknown.
func NormalizeRole(raw string) string {
	if role, ok := roleAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return role
	}
	return RoleUnknown
}
