package handler

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/propnest/internal/auth"
	"github.com/pkordes/propnest/internal/domain"
)

var validate = newValidator()

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into dst and validates it. On failure it
// writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			writeServiceError(w, r, err, "")
		case errors.Is(err, io.EOF):
			writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body is required"))
		default:
			writeJSON(w, http.StatusUnprocessableEntity, requestBody("malformed JSON body"))
		}
		return false
	}
	return validBody(w, dst)
}

// validBody runs struct validation on v, writing a 422 on failure.
func validBody(w http.ResponseWriter, v any) bool {
	if err := validate.Struct(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(validationMessage(err)))
		return false
	}
	return true
}

// pathUUID binds the {name} path parameter as a UUID. On failure it writes a
// 404, since a malformed ID can never name an existing resource.
func pathUUID(w http.ResponseWriter, r *http.Request, name, resource string) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusNotFound, notFoundBody(resource+" not found"))
		return uuid.Nil, false
	}
	return id, true
}

// queryParam binds an optional form-style query parameter into dst, which
// must be a pointer to a pointer (e.g. **int). On failure it writes a 422.
func queryParam(w http.ResponseWriter, r *http.Request, name string, dst any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dst); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid query parameter "+name))
		return false
	}
	return true
}

// pagination reads ?page= and ?limit=.
func pagination(w http.ResponseWriter, r *http.Request, defaultLimit, maxLimit int) (domain.PaginationParams, bool) {
	var page, limit *int
	if !queryParam(w, r, "page", &page) || !queryParam(w, r, "limit", &limit) {
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit, defaultLimit, maxLimit), true
}

// principal returns the authenticated caller. Routes that call it sit behind
// RequireAuth, so a missing principal is a wiring bug.
func principal(r *http.Request) domain.Principal {
	p, _ := auth.PrincipalFrom(r.Context())
	return p
}

// PaginationMeta describes one page of a listing.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Page is a paginated listing.
type Page[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

func newPage[T any](data []T, p domain.PaginationParams, total int64) Page[T] {
	return Page[T]{
		Data: data,
		Pagination: PaginationMeta{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: p.TotalPages(total),
		},
	}
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

// chiParam returns the {name} path parameter.
func chiParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// bindRequiredList binds a required comma-separated query parameter.
func bindRequiredList(r *http.Request, name string, dst *[]string) error {
	return runtime.BindQueryParameter("form", false, true, name, r.URL.Query(), dst)
}
