package handler

import (
	"math"
	"net/http"

	"fieldtrack-backend/internal/domain"
	"fieldtrack-backend/internal/repository"
	"fieldtrack-backend/internal/server/authctx"
	"github.com/go-chi/chi/v5"
)

type LiveMapHandler struct {
	Users repository.UserRepository
	Shops repository.ShopRepository
}

func (h LiveMapHandler) RegisterRoutes(r chi.Router) {
	r.Get("/owner/live-map", h.liveMap)
}

// liveMap returns every employee's last reported position together with the
// owner's shops, and flags which shop geofence (if any) each employee is in.
func (h LiveMapHandler) liveMap(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	employees, err := h.Users.ListEmployees(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	shops, err := h.Shops.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	markers := make([]map[string]any, 0, len(employees))
	for _, e := range employees {
		entry := map[string]any{
			"id":       e.ID,
			"name":     e.Name,
			"isOnDuty": e.IsOnDuty,
		}
		if e.LastLatitude != nil && e.LastLongitude != nil {
			entry["latitude"] = *e.LastLatitude
			entry["longitude"] = *e.LastLongitude
			if e.LastLocationUpdate != nil {
				entry["updatedAt"] = *e.LastLocationUpdate
			}
			if shop := nearestShopWithin(shops, *e.LastLatitude, *e.LastLongitude); shop != nil {
				entry["atShopId"] = shop.ID
				entry["atShopName"] = shop.Name
			}
		}
		markers = append(markers, entry)
	}

	shopMarkers := make([]map[string]any, 0, len(shops))
	for _, s := range shops {
		shopMarkers = append(shopMarkers, map[string]any{
			"id":             s.ID,
			"name":           s.Name,
			"latitude":       floatOrNil(s.Latitude),
			"longitude":      floatOrNil(s.Longitude),
			"geofenceRadius": s.GeofenceRadius,
			"dueAmount":      s.DueAmount,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"employees": markers,
		"shops":     shopMarkers,
	})
}

// nearestShopWithin picks the closest shop whose geofence contains the
// point, or nil when the point is outside every geofence.
func nearestShopWithin(shops []domain.Shop, lat, lng float64) *domain.Shop {
	var (
		best     *domain.Shop
		bestDist float64
	)
	for i := range shops {
		s := &shops[i]
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		d := haversineMeters(lat, lng, *s.Latitude, *s.Longitude)
		if d > float64(s.GeofenceRadius) {
			continue
		}
		if best == nil || d < bestDist {
			best = s
			bestDist = d
		}
	}
	return best
}

const earthRadiusMeters = 6371000

func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
