// Package region classifies Taiwanese postal addresses into administrative
// regions.
//
// # Naming Conventions
//
// Government feeds spell the "Tai" of Taipei, Taichung, Tainan and Taitung
// with either the traditional form 臺 or the common form 台. The city list
// here uses 台 throughout, so every address and name is passed through
// [NormalizeChar] before comparison:
//
//	"臺北市中正區忠孝西路100號" → "台北市中正區忠孝西路100號"
//
// # Address Format
//
// Addresses start with the top-level region (one of 22 cities and counties),
// followed by the second-level district and then the street:
//
//	<city><district><street...>
//	"台北市" + "中正區" + "忠孝西路100號"
//	"新竹縣" + "竹北市" + "光明路6號"
//
// Districts end in one of four suffix characters: 區 (district), 鄉 (rural
// township), 鎮 (urban township) or 市 (county-administered city). The
// district is the shortest run of characters after the city that ends in one
// of these suffixes, so "竹北市光明路" yields "竹北市" and never swallows a
// later 市 in the street name.
//
// Addresses that do not start with a known city classify to an empty [Name];
// the caller decides whether to drop them.
package region
