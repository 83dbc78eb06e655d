// Package entity defines the asset-management records the console works
// with: typed rows decoded from API records, the alias specs used to decode
// them, form descriptions with payload parsing, and the aggregate figures
// each page shows.
package entity
