package handler

import (
	"math"
	"testing"

	"fieldtrack-backend/internal/domain"
)

func TestHaversineMeters(t *testing.T) {
	// same point
	if d := haversineMeters(12.9716, 77.5946, 12.9716, 77.5946); d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
	// roughly 111 km per degree of latitude
	d := haversineMeters(0, 0, 1, 0)
	if math.Abs(d-111195) > 200 {
		t.Fatalf("one degree latitude: got %v m", d)
	}
	// symmetry
	a := haversineMeters(12.97, 77.59, 13.01, 77.62)
	b := haversineMeters(13.01, 77.62, 12.97, 77.59)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("not symmetric: %v vs %v", a, b)
	}
}

func TestNearestShopWithin(t *testing.T) {
	lat1, lng1 := 12.9700, 77.5900
	lat2, lng2 := 12.9705, 77.5905
	shops := []domain.Shop{
		{ID: 1, Name: "Far", Latitude: &lat1, Longitude: &lng1, GeofenceRadius: 30},
		{ID: 2, Name: "Near", Latitude: &lat2, Longitude: &lng2, GeofenceRadius: 200},
		{ID: 3, Name: "No Coords"},
	}

	// point right next to shop 2, outside shop 1's small fence
	got := nearestShopWithin(shops, 12.9706, 77.5906)
	if got == nil || got.ID != 2 {
		t.Fatalf("expected shop 2, got %+v", got)
	}

	// point far from everything
	if got := nearestShopWithin(shops, 13.5, 78.5); got != nil {
		t.Fatalf("expected nil outside all geofences, got %+v", got)
	}
}
