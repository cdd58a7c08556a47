package climate

// DefaultLocations are the three cities tracked by the dashboard, in display order.
var DefaultLocations = []Location{
	{Name: "Lilongwe (Central)", Latitude: -13.9626, Longitude: 33.7741},
	{Name: "Blantyre (South)", Latitude: -15.7861, Longitude: 35.0058},
	{Name: "Mzuzu (North)", Latitude: -11.4656, Longitude: 34.0207},
}

// LookupLocation finds a location by its exact name.
func LookupLocation(locations []Location, name string) (Location, bool) {
	for _, loc := range locations {
		if loc.Name == name {
			return loc, true
		}
	}
	return Location{}, false
}
