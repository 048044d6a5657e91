package riot

import "strings"

const (
	RouteAmericas = "americas"
	RouteEurope   = "europe"
	RouteAsia     = "asia"
	RouteSEA      = "sea"
)

var platformRoutes = map[string]string{
	"na1":  RouteAmericas,
	"br1":  RouteAmericas,
	"la1":  RouteAmericas,
	"la2":  RouteAmericas,
	"euw1": RouteEurope,
	"eun1": RouteEurope,
	"tr1":  RouteEurope,
	"ru":   RouteEurope,
	"me1":  RouteEurope,
	"kr":   RouteAsia,
	"jp1":  RouteAsia,
	"oc1":  RouteSEA,
	"sg2":  RouteSEA,
	"tw2":  RouteSEA,
	"vn2":  RouteSEA,
	"ph2":  RouteSEA,
}

var platformAliases = map[string]string{
	"na":   "na1",
	"euw":  "euw1",
	"eune": "eun1",
	"br":   "br1",
	"lan":  "la1",
	"las":  "la2",
	"tr":   "tr1",
	"jp":   "jp1",
	"oce":  "oc1",
	"me":   "me1",
	"sg":   "sg2",
	"tw":   "tw2",
	"vn":   "vn2",
	"ph":   "ph2",
}

// NormalizePlatform accepts platform ids ("euw1") and the short region names players use
// ("EUW"). Unknown values are returned lowercased.
func NormalizePlatform(region string) string {
	r := strings.ToLower(strings.TrimSpace(region))
	if p, ok := platformAliases[r]; ok {
		return p
	}
	return r
}

// RegionalRoute maps a platform to the regional cluster serving account and match data.
// Unknown platforms go to americas.
func RegionalRoute(platform string) string {
	if route, ok := platformRoutes[NormalizePlatform(platform)]; ok {
		return route
	}
	return RouteAmericas
}
