package region

import (
	"regexp"
	"strings"
)

// City is one of Taiwan's 22 top-level administrative regions, spelled with 台.
type City string

const (
	Taipei        City = "台北市"
	NewTaipei     City = "新北市"
	Taoyuan       City = "桃園市"
	Taichung      City = "台中市"
	Tainan        City = "台南市"
	Kaohsiung     City = "高雄市"
	Keelung       City = "基隆市"
	HsinchuCity   City = "新竹市"
	ChiayiCity    City = "嘉義市"
	HsinchuCounty City = "新竹縣"
	Miaoli        City = "苗栗縣"
	Changhua      City = "彰化縣"
	Nantou        City = "南投縣"
	Yunlin        City = "雲林縣"
	ChiayiCounty  City = "嘉義縣"
	Pingtung      City = "屏東縣"
	Yilan         City = "宜蘭縣"
	Hualien       City = "花蓮縣"
	Taitung       City = "台東縣"
	Penghu        City = "澎湖縣"
	Kinmen        City = "金門縣"
	Lienchiang    City = "連江縣"
)

const (
	variantTai  = "臺"
	standardTai = "台"

	// districtSuffixes are the characters a second-level district name ends in.
	districtSuffixes = "區鄉鎮市"
)

// cities is the classification order. No entry is a prefix of another, so
// the order never changes which city an address resolves to.
var cities = [...]City{
	Taipei, NewTaipei, Taoyuan, Taichung, Tainan, Kaohsiung,
	Keelung, HsinchuCity, ChiayiCity,
	HsinchuCounty, Miaoli, Changhua, Nantou, Yunlin,
	ChiayiCounty, Pingtung, Yilan, Hualien, Taitung,
	Penghu, Kinmen, Lienchiang,
}

var (
	validCities = func() map[City]struct{} {
		m := make(map[City]struct{}, len(cities))
		for _, c := range cities {
			m[c] = struct{}{}
		}
		return m
	}()

	// districtRe matches the shortest leading run ending in a district suffix,
	// e.g. "竹北市光明路6號" -> "竹北市".
	districtRe = regexp.MustCompile(`^(.+?[` + districtSuffixes + `])`)
)

// Name is a classified (city, district) pair. Either field may be empty when
// the address could not be classified that far.
type Name struct {
	City     City
	District string
}

// Cities returns the 22 valid cities in classification order.
func Cities() []City {
	out := make([]City, len(cities))
	copy(out, cities[:])
	return out
}

// IsValid reports whether s is one of the 22 valid cities.
func IsValid(s string) bool {
	_, ok := validCities[City(s)]
	return ok
}

// NormalizeChar replaces every 臺 with 台. It is idempotent.
func NormalizeChar(s string) string {
	return strings.ReplaceAll(s, variantTai, standardTai)
}

// ExtractCity returns the city the address starts with, or "" if none match.
func ExtractCity(address string) City {
	if address == "" {
		return ""
	}
	address = NormalizeChar(address)
	for _, c := range cities {
		if strings.HasPrefix(address, string(c)) {
			return c
		}
	}
	return ""
}

// ExtractDistrict strips city from the front of address and returns the
// district that follows it. Returns "" when either input is empty or no
// district suffix is found.
func ExtractDistrict(address string, city City) string {
	if address == "" || city == "" {
		return ""
	}
	address = NormalizeChar(address)

	runes := []rune(address)
	skip := len([]rune(string(city)))
	if skip >= len(runes) {
		return ""
	}
	rest := string(runes[skip:])

	m := districtRe.FindStringSubmatch(rest)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}
