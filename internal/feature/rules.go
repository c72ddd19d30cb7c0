package feature

// Tag is one OSM tag condition. Several values mean "any of".
type Tag struct {
	Key    string
	Values []string
}

type Rule struct {
	Kind        Kind
	Description string
	Tags        []Tag
}

var rules = map[Kind]Rule{
	Water: {Water, "water features", []Tag{
		{"natural", []string{"water"}},
		{"waterway", []string{"riverbank"}},
	}},
	Parks: {Parks, "parks/green spaces", []Tag{
		{"leisure", []string{"park"}},
		{"landuse", []string{"grass"}},
	}},
	Stadiums: {Stadiums, "stadiums", []Tag{
		{"leisure", []string{"stadium"}},
		{"building", []string{"stadium"}},
	}},
	Railway: {Railway, "railways/transit", []Tag{
		{"railway", []string{"rail", "subway", "tram", "light_rail"}},
	}},
	Forest: {Forest, "forests/woods", []Tag{
		{"natural", []string{"wood"}},
		{"landuse", []string{"forest"}},
	}},
	Beach: {Beach, "beaches", []Tag{
		{"natural", []string{"beach"}},
	}},
	Coastline: {Coastline, "coastlines", []Tag{
		{"natural", []string{"coastline"}},
	}},
	Education: {Education, "education facilities", []Tag{
		{"amenity", []string{"university", "college", "school"}},
	}},
	Worship: {Worship, "places of worship", []Tag{
		{"amenity", []string{"place_of_worship"}},
	}},
	Airport: {Airport, "airports", []Tag{
		{"aeroway", []string{"aerodrome", "runway", "apron"}},
	}},
}

// RuleFor returns the tag rule for an optional kind. Streets have no tag rule;
// their filter depends on the network type.
func RuleFor(k Kind) (Rule, bool) {
	r, ok := rules[k]
	return r, ok
}

// Description is the human label used in progress output.
func (k Kind) Description() string {
	if k == Streets {
		return "street network"
	}
	if r, ok := rules[k]; ok {
		return r.Description
	}
	return string(k)
}
