package geoloc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountryCode(t *testing.T) {
	assert.Equal(t, uint8(77), CountryCode("GB"))
	assert.Equal(t, uint8(225), CountryCode("US"))
	assert.Equal(t, uint8(0), CountryCode("??"))
}

func TestLocatePrivateAddresses(t *testing.T) {
	c := New()

	for _, ip := range []string{"127.0.0.1", "10.0.0.5", "192.168.1.20"} {
		loc, err := c.Locate(context.Background(), ip)
		require.NoError(t, err, "ip %s", ip)
		assert.Equal(t, "XX", loc.Acronym)
		assert.Equal(t, uint8(0), loc.Code)
	}
}

func TestLocate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","countryCode":"DE","lon":13.4,"lat":52.5}`))
	}))
	defer ts.Close()

	c := New()
	c.baseURL = ts.URL

	loc, err := c.Locate(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "DE", loc.Acronym)
	assert.Equal(t, CountryCode("DE"), loc.Code)
	assert.InDelta(t, 13.4, loc.Longitude, 0.01)
	assert.InDelta(t, 52.5, loc.Latitude, 0.01)
}

func TestLocateFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
	}))
	defer ts.Close()

	c := New()
	c.baseURL = ts.URL

	_, err := c.Locate(context.Background(), "1.2.3.4")
	assert.ErrorContains(t, err, "reserved range")
}
