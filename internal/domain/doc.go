// Package domain models Taiwan's motorcycle emissions inspection stations and
// air-quality monitoring readings, and derives the city-level comparison
// between the two.
//
// # Data Sources
//
// Both datasets are open-data XML exports from the Ministry of Environment
// (MOENV, formerly EPA):
//
//   - Inspection stations: one element per station with the children sno,
//     sname, tel, address, latitude, longitude and note. The feed carries no
//     region columns; city and district are derived from the address by
//     package region.
//   - Air quality: one element per monitoring site with sitename, county, aqi,
//     pollutant, status, co, pm2.5, pm2.5_avg and nox. The wrapper elements
//     vary between exports, so the parser looks for sitename/county pairs at
//     any depth.
//
// # Missing Values
//
// Station text fields are always strings; a missing child reads as "".
// Air-quality numeric fields are *float64; a missing or non-numeric value
// reads as nil, never 0. The distinction matters downstream: a station with
// an empty district is dropped by [Clean], while a nil PM2.5 reading is
// skipped by [MeanByCounty] without pulling the mean towards zero.
//
// # Cleaning
//
// [Clean] normalizes 臺 to 台 in the region fields, keeps only the 22 valid
// cities, drops rows whose district is blank, and collapses exact duplicate
// rows, keeping first-seen order. It is idempotent.
//
// # Aggregation
//
// Station counts are grouped by city ([CountByCity]) and by city and district
// ([CountByCityDistrict]). Air-quality readings are averaged per county
// ([MeanByCounty]). [InnerJoinOnCity] joins the two on the exact city name:
// the join does no fuzzy matching, so both sides must already be normalized.
package domain
