package web

import (
	"net/http"
	"reflect"

	"order-ledger/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// formSchemas are the JSON Schemas of the three write inputs, generated once.
// None of them has a status field: both statuses are derived.
var formSchemas = map[string]*jsonschema.Schema{
	"order":    reflectSchema(core.OrderInput{}),
	"dispatch": reflectSchema(core.DispatchInput{}),
	"payment":  reflectSchema(core.PaymentInput{}),
}

func reflectSchema(v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == decimalType {
				return &jsonschema.Schema{
					Type:    "string",
					Pattern: `^-?[0-9]+(\.[0-9]+)?$`,
				}
			}
			return nil
		},
	}
	return reflector.Reflect(v)
}

// apiSchema handles GET /api/schemas/{form}.
func (h *Handler) apiSchema(w http.ResponseWriter, r *http.Request) {
	s, ok := formSchemas[chi.URLParam(r, "form")]
	if !ok {
		writeError(w, r, "unknown form; expected order, dispatch or payment", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, s)
}
