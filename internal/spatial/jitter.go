package spatial

import (
	"github.com/minio/highwayhash"
)

// jitterKey seeds the hash; any fixed 32 bytes will do as long as it never changes
var jitterKey = []byte("incidentmap-marker-jitter-key-32")

// Jitter displaces a coordinate by up to maxMeters in a direction derived
// from key. The same key always yields the same displacement, so a marker's
// position never changes between renders.
func Jitter(key string, lat, lon, maxMeters float64) (float64, float64) {
	if maxMeters <= 0 {
		return lat, lon
	}
	h, err := highwayhash.New64(jitterKey)
	if err != nil {
		return lat, lon
	}
	h.Write([]byte(key))
	sum := h.Sum64()

	bearing := float64(uint32(sum)) / (1 << 32) * 360
	distance := float64(uint32(sum>>32)) / (1 << 32) * maxMeters
	return DestinationPoint(lat, lon, bearing, distance)
}
