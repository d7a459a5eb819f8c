package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "laws_jordan", CollectionName("jordan"))
	assert.Equal(t, "laws_uae", CollectionName(" UAE "))
}

func TestCountryFromCollection(t *testing.T) {
	country, ok := CountryFromCollection("laws_egypt")
	assert.True(t, ok)
	assert.Equal(t, "egypt", country)

	_, ok = CountryFromCollection("sessions")
	assert.False(t, ok)
}

func TestValidateCountry(t *testing.T) {
	assert.NoError(t, ValidateCountry("jordan"))
	assert.NoError(t, ValidateCountry("SAUDI"))
	assert.Error(t, ValidateCountry(""))
	assert.Error(t, ValidateCountry("atlantis"))
}

func TestValidateLawType(t *testing.T) {
	assert.NoError(t, ValidateLawType("civil"))
	assert.NoError(t, ValidateLawType("Labor"))
	assert.NoError(t, ValidateLawType(""), "empty means no filter")
	assert.Error(t, ValidateLawType("maritime"))
}
