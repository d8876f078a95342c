package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var site = Point{Lat: 14.605213, Lng: 121.048929}

func TestDistanceMeters_ZeroDistance(t *testing.T) {
	d := DistanceMeters(site, site)
	assert.Equal(t, 0.0, d)
	assert.False(t, math.IsNaN(d))
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	other := Point{Lat: 14.5995, Lng: 120.9842} // Manila city center
	d1 := DistanceMeters(site, other)
	d2 := DistanceMeters(other, site)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistanceMeters_KnownDistance(t *testing.T) {
	// 站点到马尼拉市中心约 7km
	other := Point{Lat: 14.5995, Lng: 120.9842}
	d := DistanceMeters(site, other)
	assert.InDelta(t, 7000, d, 300)
}

func TestDistanceMeters_Antipodal(t *testing.T) {
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: 180}
	d := DistanceMeters(a, b)
	require.False(t, math.IsNaN(d))
	// 半周长约 2.0015e7 米
	assert.InDelta(t, math.Pi*earthRadiusMeters, d, 1)
}

func TestWithinRadius_Boundary(t *testing.T) {
	// 往正北移动，使距离略小于、约等于、大于 800m
	near := Point{Lat: site.Lat + 0.001, Lng: site.Lng} // ~111m
	far := Point{Lat: site.Lat + 0.02, Lng: site.Lng}   // ~2.2km

	assert.True(t, WithinRadius(near, site, 800))
	assert.False(t, WithinRadius(far, site, 800))

	// 边界恰好等于半径时必须放行（<= 比较）
	d := DistanceMeters(near, site)
	assert.True(t, WithinRadius(near, site, d))
}

func TestWithinRadius_ZeroRadius(t *testing.T) {
	assert.True(t, WithinRadius(site, site, 0))
}
