package services

import (
	"fmt"
	"strings"
)

// Collections are partitioned per country so a query never crosses
// jurisdictions unless the caller asks for it.
const collectionPrefix = "laws_"

// SupportedCountries are the jurisdictions the platform currently serves.
var SupportedCountries = []string{"jordan", "uae", "saudi", "egypt", "kuwait", "qatar"}

// SupportedLawTypes are the accepted values for the law_type payload field.
var SupportedLawTypes = []string{
	"civil", "criminal", "commercial", "labor", "family",
	"administrative", "constitutional", "tax",
}

// CollectionName returns the canonical collection for a country, e.g.
// "laws_jordan".
func CollectionName(country string) string {
	return collectionPrefix + strings.ToLower(strings.TrimSpace(country))
}

// CountryFromCollection inverts CollectionName; false for names outside the
// law namespace.
func CountryFromCollection(name string) (string, bool) {
	if !strings.HasPrefix(name, collectionPrefix) {
		return "", false
	}
	return strings.TrimPrefix(name, collectionPrefix), true
}

// ValidateCountry rejects countries outside the supported set.
func ValidateCountry(country string) error {
	c := strings.ToLower(strings.TrimSpace(country))
	for _, s := range SupportedCountries {
		if c == s {
			return nil
		}
	}
	return fmt.Errorf("unsupported country %q (supported: %s)", country, strings.Join(SupportedCountries, ", "))
}

// ValidateLawType rejects law types outside the supported set. Empty is
// allowed; it means "no filter" on the query side.
func ValidateLawType(lawType string) error {
	if lawType == "" {
		return nil
	}
	t := strings.ToLower(strings.TrimSpace(lawType))
	for _, s := range SupportedLawTypes {
		if t == s {
			return nil
		}
	}
	return fmt.Errorf("unsupported law type %q (supported: %s)", lawType, strings.Join(SupportedLawTypes, ", "))
}
