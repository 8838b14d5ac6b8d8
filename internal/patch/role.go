package patch

// Role is the semantic role of a variable. It selects how the land axis of
// the variable is reduced or placed.
type Role int

const (
	// RoleGeneric variables are fraction-weighted sums.
	RoleGeneric Role = iota
	// RoleLatitude variables hold the land point latitude.
	RoleLatitude
	// RoleLongitude variables hold the land point longitude.
	RoleLongitude
	// RoleArea variables are plain sums.
	RoleArea
)

func (r Role) String() string {
	switch r {
	case RoleLatitude:
		return "latitude"
	case RoleLongitude:
		return "longitude"
	case RoleArea:
		return "area"
	default:
		return "generic"
	}
}

// IsCoordinate reports whether r is a latitude or longitude role.
func (r Role) IsCoordinate() bool {
	return r == RoleLatitude || r == RoleLongitude
}

// Names lists the variable names carrying each special role.
type Names struct {
	Latitude  []string
	Longitude []string
	Area      []string
}

// ResolveRoles tags every variable name once. Names matching none of the
// lists are RoleGeneric.
func ResolveRoles(vars []string, names Names) map[string]Role {
	lookup := make(map[string]Role)
	for _, n := range names.Area {
		lookup[n] = RoleArea
	}
	for _, n := range names.Longitude {
		lookup[n] = RoleLongitude
	}
	for _, n := range names.Latitude {
		lookup[n] = RoleLatitude
	}
	roles := make(map[string]Role, len(vars))
	for _, v := range vars {
		roles[v] = lookup[v]
	}
	return roles
}
