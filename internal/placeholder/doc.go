// Package placeholder serves the stand-in API that answers on the legacy
// backend port. It reports its own health and points every other API call
// at the real asset-management API.
package placeholder
