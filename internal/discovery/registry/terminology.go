package registry

import (
	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

// terminologyVariants maps each boundary type to the synonymous names local
// governments publish that boundary under, ordered by how much of the
// country each variant covers (widest coverage first). The catalog source
// searches every variant and picks a winner; see the terminology package.
var terminologyVariants = map[boundary.Type][]string{
	boundary.Municipal: {
		"city council districts",
		"council districts",
		"wards",
		"aldermanic districts",
		"supervisorial districts",
		"commission districts",
		"borough boundaries",
	},
	boundary.County: {
		"county commission districts",
		"county boundaries",
		"supervisorial districts",
		"commissioner precincts",
		"county council districts",
		"county board districts",
	},
	boundary.StateHouse: {
		"state house districts",
		"state assembly districts",
		"state representative districts",
		"house of delegates districts",
		"lower legislative districts",
	},
	boundary.StateSenate: {
		"state senate districts",
		"senate districts",
		"upper legislative districts",
	},
	boundary.Congressional: {
		"congressional districts",
		"us house districts",
		"federal congressional districts",
	},
	boundary.SchoolBoard: {
		"school board districts",
		"unified school districts",
		"school district boundaries",
		"trustee areas",
		"board of education districts",
	},
	boundary.SpecialDistrict: {
		"special districts",
		"water districts",
		"utility districts",
		"fire protection districts",
		"improvement districts",
		"conservation districts",
	},
	boundary.Judicial: {
		"judicial districts",
		"court districts",
		"judicial circuits",
		"circuit court boundaries",
	},
	boundary.VotingPrecinct: {
		"voting precincts",
		"election precincts",
		"voting districts",
		"precinct boundaries",
	},
}

// TerminologyVariants returns the ordered variant list for a boundary type.
// The returned slice must be treated as read-only.
func TerminologyVariants(t boundary.Type) []string {
	return terminologyVariants[t]
}
