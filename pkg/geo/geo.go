package geo

import "math"

// 球面地球半径（米），与前端侧校验使用同一常数
const earthRadiusMeters = 6371000.0

// Point 一个 WGS84 坐标
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceMeters 计算两点间大圆距离（haversine 公式）。
// haversine 项在浮点舍入下可能略微超出 1，送入 asin 前需要截断，
// 否则对跖点附近会得到 NaN。
func DistanceMeters(a, b Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	if h > 1 {
		h = 1
	}
	if h < 0 {
		h = 0
	}

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// WithinRadius 判断 p 是否落在以 site 为圆心、radiusMeters 为半径的围栏内。
// 恰好处于边界上视为在围栏内（<= 比较）。
func WithinRadius(p, site Point, radiusMeters float64) bool {
	return DistanceMeters(p, site) <= radiusMeters
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
