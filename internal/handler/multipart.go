package handler

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/pkordes/propnest/internal/media"
)

// multipartMemory is how much of a multipart body is buffered in memory;
// the rest spills to temporary files.
const multipartMemory = 32 << 20

var errNotMultipart = errors.New("not a multipart request")

// isMultipart reports whether r carries a multipart/form-data body.
func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// form is a parsed multipart request.
type form struct {
	values map[string][]string
	files  map[string][]*multipart.FileHeader
}

func parseForm(r *http.Request) (*form, error) {
	if !isMultipart(r) {
		return nil, errNotMultipart
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, err
	}
	return &form{values: r.MultipartForm.Value, files: r.MultipartForm.File}, nil
}

// str returns the trimmed field value, or nil when the field is absent.
func (f *form) str(name string) *string {
	vs, ok := f.values[name]
	if !ok || len(vs) == 0 {
		return nil
	}
	s := strings.TrimSpace(vs[0])
	return &s
}

func (f *form) int(name string) (*int, error) {
	s := f.str(name)
	if s == nil || *s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(*s)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}

func (f *form) float(name string) (*float64, error) {
	s := f.str(name)
	if s == nil || *s == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &n, nil
}

func (f *form) bool(name string) (*bool, error) {
	s := f.str(name)
	if s == nil || *s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(*s)
	if err != nil {
		return nil, fmt.Errorf("%s must be true or false", name)
	}
	return &b, nil
}

// list accepts a field sent either repeated, comma separated, or as a JSON
// array string.
func (f *form) list(name string) ([]string, error) {
	vs, ok := f.values[name]
	if !ok {
		return nil, nil
	}
	out := []string{}
	for _, v := range vs {
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err != nil {
				return nil, fmt.Errorf("%s must be a JSON array of strings", name)
			}
			out = append(out, arr...)
			continue
		}
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out, nil
}

// uploads opens every file sent under name. The caller must call the
// returned close function once the uploads have been consumed.
func (f *form) uploads(name string) ([]media.Upload, func(), error) {
	headers := f.files[name]
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, fh := range files {
			_ = fh.Close()
		}
	}
	out := make([]media.Upload, 0, len(headers))
	for _, h := range headers {
		file, err := h.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("open %s: %w", h.Filename, err)
		}
		files = append(files, file)
		out = append(out, media.Upload{Filename: h.Filename, Body: file})
	}
	return out, closeAll, nil
}
