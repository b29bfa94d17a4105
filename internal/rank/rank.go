// Package rank models the ranked ladder: tiers, divisions and the single
// numeric scale that totally orders every (tier, division, LP) combination.
package rank

import "strings"

type Tier string

const (
	TierUnranked    Tier = "UNRANKED"
	TierIron        Tier = "IRON"
	TierBronze      Tier = "BRONZE"
	TierSilver      Tier = "SILVER"
	TierGold        Tier = "GOLD"
	TierPlatinum    Tier = "PLATINUM"
	TierEmerald     Tier = "EMERALD"
	TierDiamond     Tier = "DIAMOND"
	TierMaster      Tier = "MASTER"
	TierGrandmaster Tier = "GRANDMASTER"
	TierChallenger  Tier = "CHALLENGER"
)

type Division string

const (
	DivisionNone Division = ""
	DivisionIV   Division = "IV"
	DivisionIII  Division = "III"
	DivisionII   Division = "II"
	DivisionI    Division = "I"
)

// Each tier spans 400 scale points (4 divisions x 100 LP). Unranked sits a
// full tier below Iron so it sorts under every real rank.
var tierBases = map[Tier]int{
	TierUnranked:    -400,
	TierIron:        0,
	TierBronze:      400,
	TierSilver:      800,
	TierGold:        1200,
	TierPlatinum:    1600,
	TierEmerald:     2000,
	TierDiamond:     2400,
	TierMaster:      2800,
	TierGrandmaster: 3200,
	TierChallenger:  3600,
}

var divisionBases = map[Division]int{
	DivisionIV:  0,
	DivisionIII: 100,
	DivisionII:  200,
	DivisionI:   300,
}

// Ordering used by peak comparison. Unranked is 0 and never beats a real tier.
var tierOrder = map[Tier]int{
	TierIron:        1,
	TierBronze:      2,
	TierSilver:      3,
	TierGold:        4,
	TierPlatinum:    5,
	TierEmerald:     6,
	TierDiamond:     7,
	TierMaster:      8,
	TierGrandmaster: 9,
	TierChallenger:  10,
}

var divisionOrder = map[Division]int{
	DivisionIV:  1,
	DivisionIII: 2,
	DivisionII:  3,
	DivisionI:   4,
}

// Tiers ordered low to high, used for the approximate scale inverse.
var tiersAscending = []Tier{
	TierIron, TierBronze, TierSilver, TierGold, TierPlatinum,
	TierEmerald, TierDiamond, TierMaster, TierGrandmaster, TierChallenger,
}

var divisionsAscending = []Division{DivisionIV, DivisionIII, DivisionII, DivisionI}

// ParseTier maps an upstream tier string onto a known tier. Unknown or empty
// values fall back to UNRANKED; the Riot vocabulary drifts and a bad string
// must never fail a poll cycle.
func ParseTier(s string) Tier {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := tierBases[t]; ok {
		return t
	}
	return TierUnranked
}

// ParseDivision maps an upstream division string. Empty stays empty (apex
// tiers and unranked report no division); anything else unknown falls back
// to IV.
func ParseDivision(s string) Division {
	d := Division(strings.ToUpper(strings.TrimSpace(s)))
	if d == DivisionNone {
		return DivisionNone
	}
	if _, ok := divisionBases[d]; ok {
		return d
	}
	return DivisionIV
}

// IsApex reports whether the tier has no divisions and differentiates
// players by LP alone.
func (t Tier) IsApex() bool {
	return t == TierMaster || t == TierGrandmaster || t == TierChallenger
}

// Point is one immutable position on the ladder.
type Point struct {
	Tier         Tier
	Division     Division
	LeaguePoints int
}

// Scale collapses the point into a single comparable integer:
// tier base + division base + LP. Division contributes nothing at apex
// tiers, where LP alone differentiates and may exceed 100.
func (p Point) Scale() int {
	base, ok := tierBases[p.Tier]
	if !ok {
		base = tierBases[TierUnranked]
	}
	division := 0
	if !p.Tier.IsApex() {
		division = divisionBases[p.Division]
	}
	return base + division + p.LeaguePoints
}

// FromScale is the approximate inverse of Scale, used for display only.
// Values below the Iron base collapse to Unranked.
func FromScale(v int) Point {
	if v < tierBases[TierIron] {
		return Point{Tier: TierUnranked}
	}

	tier := TierIron
	for i := len(tiersAscending) - 1; i >= 0; i-- {
		if v >= tierBases[tiersAscending[i]] {
			tier = tiersAscending[i]
			break
		}
	}

	remaining := v - tierBases[tier]
	if tier.IsApex() {
		return Point{Tier: tier, LeaguePoints: remaining}
	}

	division := DivisionIV
	for i := len(divisionsAscending) - 1; i >= 0; i-- {
		if remaining >= divisionBases[divisionsAscending[i]] {
			division = divisionsAscending[i]
			break
		}
	}

	return Point{Tier: tier, Division: division, LeaguePoints: remaining - divisionBases[division]}
}

// Beats reports whether p outranks other under peak ordering: tier first,
// then division (LP only at apex tiers), then LP. Equal points do not beat
// each other.
func (p Point) Beats(other Point) bool {
	pt, ot := tierOrder[p.Tier], tierOrder[other.Tier]
	if pt != ot {
		return pt > ot
	}

	if p.Tier.IsApex() {
		return p.LeaguePoints > other.LeaguePoints
	}

	pd, od := divisionOrder[p.Division], divisionOrder[other.Division]
	if pd != od {
		return pd > od
	}

	return p.LeaguePoints > other.LeaguePoints
}

// Format renders the point for display: "Gold II", "Master" (no division at
// apex tiers) or the "Unranked" literal.
func (p Point) Format() string {
	if p.Tier == TierUnranked {
		return "Unranked"
	}

	name := titleCase(string(p.Tier))
	if p.Tier.IsApex() || p.Division == DivisionNone {
		return name
	}
	return name + " " + string(p.Division)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
