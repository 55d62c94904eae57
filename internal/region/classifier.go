package region

// Classifier maps a raw address to its administrative region.
type Classifier interface {
	Classify(address string) Name
}

// Parser implements Classifier with prefix matching and suffix extraction.
type Parser struct{}

// Classify extracts the city and then the district following it.
func (Parser) Classify(address string) Name {
	city := ExtractCity(address)
	return Name{City: city, District: ExtractDistrict(address, city)}
}
