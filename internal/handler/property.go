package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/media"
	"github.com/pkordes/propnest/internal/service"
)

// Location is a coordinate on the wire.
type Location struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Image is a stored picture on the wire.
type Image struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Property is the response shape of a listing.
type Property struct {
	ID               uuid.UUID `json:"id"`
	Slug             string    `json:"slug"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	PropertyType     string    `json:"property_type"`
	TransactionType  string    `json:"transaction_type"`
	Status           string    `json:"status"`
	BHKType          string    `json:"bhk_type"`
	Furnishing       string    `json:"furnishing"`
	Bedrooms         *int      `json:"bedrooms"`
	Bathrooms        *int      `json:"bathrooms"`
	SuperBuiltupArea string    `json:"super_builtup_area"`
	Developer        string    `json:"developer"`
	Project          string    `json:"project"`
	ReraID           string    `json:"rera_id"`
	Price            *float64  `json:"price"`
	Address          string    `json:"address"`
	City             string    `json:"city"`
	Location         *Location `json:"location"`
	Images           []Image   `json:"images"`
	ActiveStatus     string    `json:"active_status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NearbyProperty adds the distance from the search point.
type NearbyProperty struct {
	Property
	DistanceKM float64 `json:"distance_km"`
}

// PropertyRequest is the body of create and update. Every field is optional
// on update.
type PropertyRequest struct {
	Title            *string   `json:"title" validate:"omitempty,max=200"`
	Description      *string   `json:"description"`
	PropertyType     *string   `json:"property_type"`
	TransactionType  *string   `json:"transaction_type"`
	Status           *string   `json:"status"`
	BHKType          *string   `json:"bhk_type"`
	Furnishing       *string   `json:"furnishing"`
	Bedrooms         *int      `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms        *int      `json:"bathrooms" validate:"omitempty,gte=0"`
	SuperBuiltupArea *string   `json:"super_builtup_area"`
	Developer        *string   `json:"developer"`
	Project          *string   `json:"project"`
	ReraID           *string   `json:"rera_id"`
	Price            *float64  `json:"price" validate:"omitempty,gte=0"`
	Address          *string   `json:"address"`
	City             *string   `json:"city"`
	Location         *Location `json:"location"`
	ActiveStatus     *string   `json:"active_status" validate:"omitempty,oneof=Draft Published Archived"`
	RemovedImages    []string  `json:"removed_images"`
}

// NearbyRequest is the body of POST /api/properties/nearby.
type NearbyRequest struct {
	Lat      *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng      *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	RadiusKM *float64 `json:"radius_km" validate:"omitempty,gt=0"`
}

// ListProperties handles GET /api/properties.
func (s *Server) ListProperties(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r, service.PropertyPageDefault, service.PropertyPageMax)
	if !ok {
		return
	}
	f, ok := propertyFilter(w, r)
	if !ok {
		return
	}

	props, total, err := s.properties.List(r.Context(), f, params)
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusOK, newPage(mapSlice(props, propertyToResponse), params, total))
}

// GetProperty handles GET /api/properties/{id}.
func (s *Server) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "property")
	if !ok {
		return
	}
	p, err := s.properties.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusOK, propertyToResponse(p))
}

// GetPropertyBySlug handles GET /api/properties/slug/{slug}.
func (s *Server) GetPropertyBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := s.properties.GetBySlug(r.Context(), chiParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusOK, propertyToResponse(p))
}

// CreateProperty handles POST /api/properties. It accepts JSON or a
// multipart form carrying the same fields plus up to ten "images" files.
func (s *Server) CreateProperty(w http.ResponseWriter, r *http.Request) {
	req, uploads, done, ok := readPropertyRequest(w, r)
	if !ok {
		return
	}
	defer done()
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("title is required"))
		return
	}

	created, err := s.properties.Create(r.Context(), requestToProperty(req), uploads)
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusCreated, propertyToResponse(created))
}

// UpdateProperty handles PUT /api/properties/{id}.
func (s *Server) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "property")
	if !ok {
		return
	}
	req, uploads, done, ok := readPropertyRequest(w, r)
	if !ok {
		return
	}
	defer done()

	updated, err := s.properties.Update(r.Context(), id, requestToPropertyPatch(req), uploads)
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusOK, propertyToResponse(updated))
}

// DuplicateProperty handles POST /api/properties/{id}/duplicate.
func (s *Server) DuplicateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "property")
	if !ok {
		return
	}
	dup, err := s.properties.Duplicate(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusCreated, propertyToResponse(dup))
}

// DeleteProperty handles DELETE /api/properties/{id}.
func (s *Server) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "property")
	if !ok {
		return
	}
	if err := s.properties.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RelatedProperties handles GET /api/properties/{id}/related.
func (s *Server) RelatedProperties(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "property")
	if !ok {
		return
	}
	props, err := s.properties.Related(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(props, propertyToResponse))
}

// CompareProperties handles GET /api/properties/compare?ids=a,b.
func (s *Server) CompareProperties(w http.ResponseWriter, r *http.Request) {
	var raw []string
	if err := bindRequiredList(r, "ids", &raw); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("ids is required"))
		return
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, requestBody("ids must be UUIDs"))
			return
		}
		ids = append(ids, id)
	}

	props, err := s.properties.Compare(r.Context(), ids)
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(props, propertyToResponse))
}

// NearbyProperties handles POST /api/properties/nearby.
func (s *Server) NearbyProperties(w http.ResponseWriter, r *http.Request) {
	var req NearbyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := s.properties.Nearby(r.Context(), domain.GeoPoint{Lat: *req.Lat, Lng: *req.Lng}, req.RadiusKM)
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(out, func(n domain.NearbyProperty) NearbyProperty {
		return NearbyProperty{Property: propertyToResponse(n.Property), DistanceKM: n.DistanceKM}
	}))
}

// --- mapping helpers --------------------------------------------------------

// propertyFilter binds the listing filters from the query string.
func propertyFilter(w http.ResponseWriter, r *http.Request) (domain.PropertyFilter, bool) {
	var (
		f                  domain.PropertyFilter
		priceMin, priceMax *float64
	)
	strs := map[string]*string{
		"search":           &f.Search,
		"city":             &f.City,
		"property_type":    &f.PropertyType,
		"bhk_type":         &f.BHKType,
		"furnishing":       &f.Furnishing,
		"status":           &f.Status,
		"transaction_type": &f.TransactionType,
	}
	for name, dst := range strs {
		var v *string
		if !queryParam(w, r, name, &v) {
			return f, false
		}
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	if !queryParam(w, r, "price_min", &priceMin) || !queryParam(w, r, "price_max", &priceMax) {
		return f, false
	}
	f.PriceMin, f.PriceMax = priceMin, priceMax
	return f, true
}

// readPropertyRequest reads a PropertyRequest from JSON or multipart. The
// returned done func releases any open upload files.
func readPropertyRequest(w http.ResponseWriter, r *http.Request) (PropertyRequest, []media.Upload, func(), bool) {
	noop := func() {}
	if !isMultipart(r) {
		var req PropertyRequest
		if !decodeJSON(w, r, &req) {
			return req, nil, noop, false
		}
		return req, nil, noop, true
	}

	f, err := parseForm(r)
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeServiceError(w, r, err, "")
		} else {
			writeJSON(w, http.StatusUnprocessableEntity, requestBody("malformed multipart body"))
		}
		return PropertyRequest{}, nil, noop, false
	}
	req, err := formToPropertyRequest(f)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return req, nil, noop, false
	}
	if !validBody(w, &req) {
		return req, nil, noop, false
	}
	uploads, done, err := f.uploads("images")
	if err != nil {
		writeServiceError(w, r, err, "")
		return req, nil, noop, false
	}
	return req, uploads, done, true
}

func formToPropertyRequest(f *form) (PropertyRequest, error) {
	req := PropertyRequest{
		Title:            f.str("title"),
		Description:      f.str("description"),
		PropertyType:     f.str("property_type"),
		TransactionType:  f.str("transaction_type"),
		Status:           f.str("status"),
		BHKType:          f.str("bhk_type"),
		Furnishing:       f.str("furnishing"),
		SuperBuiltupArea: f.str("super_builtup_area"),
		Developer:        f.str("developer"),
		Project:          f.str("project"),
		ReraID:           f.str("rera_id"),
		Address:          f.str("address"),
		City:             f.str("city"),
		ActiveStatus:     f.str("active_status"),
	}
	var err error
	if req.Bedrooms, err = f.int("bedrooms"); err != nil {
		return req, err
	}
	if req.Bathrooms, err = f.int("bathrooms"); err != nil {
		return req, err
	}
	if req.Price, err = f.float("price"); err != nil {
		return req, err
	}
	lat, err := f.float("lat")
	if err != nil {
		return req, err
	}
	lng, err := f.float("lng")
	if err != nil {
		return req, err
	}
	if (lat == nil) != (lng == nil) {
		return req, errors.New("lat and lng must be sent together")
	}
	if lat != nil {
		req.Location = &Location{Lat: *lat, Lng: *lng}
	}
	if req.RemovedImages, err = f.list("removed_images"); err != nil {
		return req, err
	}
	return req, nil
}

func requestToProperty(req PropertyRequest) domain.Property {
	patch := requestToPropertyPatch(req)
	p := domain.Property{
		Bedrooms:  patch.Bedrooms,
		Bathrooms: patch.Bathrooms,
		Price:     patch.Price,
		Location:  patch.Location,
	}
	for dst, src := range map[*string]*string{
		&p.Title:            patch.Title,
		&p.Description:      patch.Description,
		&p.PropertyType:     patch.PropertyType,
		&p.TransactionType:  patch.TransactionType,
		&p.Status:           patch.Status,
		&p.BHKType:          patch.BHKType,
		&p.Furnishing:       patch.Furnishing,
		&p.SuperBuiltupArea: patch.SuperBuiltupArea,
		&p.Developer:        patch.Developer,
		&p.Project:          patch.Project,
		&p.ReraID:           patch.ReraID,
		&p.Address:          patch.Address,
		&p.City:             patch.City,
	} {
		if src != nil {
			*dst = *src
		}
	}
	if patch.ActiveStatus != nil {
		p.ActiveStatus = *patch.ActiveStatus
	}
	return p
}

func requestToPropertyPatch(req PropertyRequest) domain.PropertyPatch {
	patch := domain.PropertyPatch{
		Title:            req.Title,
		Description:      req.Description,
		PropertyType:     req.PropertyType,
		TransactionType:  req.TransactionType,
		Status:           req.Status,
		BHKType:          req.BHKType,
		Furnishing:       req.Furnishing,
		Bedrooms:         req.Bedrooms,
		Bathrooms:        req.Bathrooms,
		SuperBuiltupArea: req.SuperBuiltupArea,
		Developer:        req.Developer,
		Project:          req.Project,
		ReraID:           req.ReraID,
		Price:            req.Price,
		Address:          req.Address,
		City:             req.City,
		RemovedImages:    req.RemovedImages,
	}
	if req.Location != nil {
		patch.Location = &domain.GeoPoint{Lat: req.Location.Lat, Lng: req.Location.Lng}
	}
	if req.ActiveStatus != nil && *req.ActiveStatus != "" {
		st := domain.ActiveStatus(*req.ActiveStatus)
		patch.ActiveStatus = &st
	}
	return patch
}

func propertyToResponse(p domain.Property) Property {
	resp := Property{
		ID:               p.ID,
		Slug:             p.Slug,
		Title:            p.Title,
		Description:      p.Description,
		PropertyType:     p.PropertyType,
		TransactionType:  p.TransactionType,
		Status:           p.Status,
		BHKType:          p.BHKType,
		Furnishing:       p.Furnishing,
		Bedrooms:         p.Bedrooms,
		Bathrooms:        p.Bathrooms,
		SuperBuiltupArea: p.SuperBuiltupArea,
		Developer:        p.Developer,
		Project:          p.Project,
		ReraID:           p.ReraID,
		Price:            p.Price,
		Address:          p.Address,
		City:             p.City,
		Images:           mapSlice(p.Images, imageToResponse),
		ActiveStatus:     string(p.ActiveStatus),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.Location != nil {
		resp.Location = &Location{Lat: p.Location.Lat, Lng: p.Location.Lng}
	}
	return resp
}

func imageToResponse(img domain.Image) Image {
	return Image{URL: img.URL, Key: img.Key}
}
