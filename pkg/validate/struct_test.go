package validate_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/validate"
)

type productForm struct {
	Name  string  `json:"name" validate:"required,min=2"`
	Qty   int     `json:"qty" validate:"gte=1"`
	Email string  `json:"email" validate:"omitempty,email"`
	Role  string  `json:"role" validate:"omitempty,oneof=supplier dealer"`
	Price float64 `json:"price" validate:"omitempty,lte=9999"`
}

func TestStruct_ValidValues(t *testing.T) {
	validator, err := validate.Struct(productForm{})
	if err != nil {
		t.Fatalf("struct validator: %v", err)
	}

	got := validator(form.Values{
		"name": "Widget",
		"qty":  3,
		"role": "supplier",
	})
	if len(got) != 0 {
		t.Fatalf("expected no errors, got %#v", got)
	}
}

func TestStruct_FailuresKeyedByJSONTag(t *testing.T) {
	validator, err := validate.Struct(&productForm{})
	if err != nil {
		t.Fatalf("struct validator: %v", err)
	}

	got := validator(form.Values{
		"name":  "W",
		"qty":   0,
		"email": "not-an-email",
		"role":  "admin",
	})

	want := form.Errors{
		"name":  "Must be at least 2 characters",
		"qty":   "Must be at least 1",
		"email": "Must be a valid email address",
		"role":  "Must be one of: supplier, dealer",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestStruct_RejectsNonStructPrototype(t *testing.T) {
	if _, err := validate.Struct(42); err == nil {
		t.Fatalf("expected error for non-struct prototype")
	}
	if _, err := validate.Struct(nil); err == nil {
		t.Fatalf("expected error for nil prototype")
	}
}

func TestStruct_UndecodableValuesReportNothing(t *testing.T) {
	validator, err := validate.Struct(productForm{})
	if err != nil {
		t.Fatalf("struct validator: %v", err)
	}

	// qty carries a shape that cannot decode into an int; the validator
	// stays total and simply reports no findings for this pass.
	got := validator(form.Values{"name": "Widget", "qty": map[string]any{"boom": true}})
	if len(got) != 0 {
		t.Fatalf("expected no errors for undecodable payload, got %#v", got)
	}
}
