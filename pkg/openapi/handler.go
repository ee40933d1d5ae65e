package openapi

import (
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// JSONHandler serves doc as JSON.
func JSONHandler(doc *openapi3.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := doc.MarshalJSON()
		if err != nil {
			http.Error(w, "Failed to encode spec", http.StatusInternalServerError)
			slog.Error("Failed to encode OpenAPI document", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})
}

// YAMLHandler serves doc as YAML.
func YAMLHandler(doc *openapi3.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := MarshalYAML(doc)
		if err != nil {
			http.Error(w, "Failed to encode spec", http.StatusInternalServerError)
			slog.Error("Failed to encode OpenAPI document", "error", err)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(data)
	})
}

// MarshalYAML encodes doc as YAML.
func MarshalYAML(doc *openapi3.T) ([]byte, error) {
	v, err := doc.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(v)
}
