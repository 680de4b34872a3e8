package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Batman16012001/Locally-Connector-New/internal/model"
)

// Source column names. Access is by explicit name because the raw row shape
// is dynamic: the transformer matches every field it knows about and fails
// the row on anything required that is missing or uncoercible.
const (
	colLCID                  = "LCID"
	colLCIDSlug              = "LCID_slug"
	colVariantBarcode        = "Variant Barcode"
	colVariantInventoryQty   = "Variant Inventory Qty"
	colHandle                = "Handle"
	colVendor                = "Vendor"
	colProductGender         = "Product Gender"
	colTitle                 = "Title"
	colTags                  = "Tags"
	colType                  = "Type"
	colOption1Name           = "Option1 Name"
	colOption1Value          = "Option1 Value"
	colOption2Name           = "Option2 Name"
	colOption2Value          = "Option2 Value"
	colVariantPrice          = "Variant Price"
	colVariantCompareAtPrice = "Variant Compare At Price"
	colVariantImage          = "Variant Image"
	colBodyHTML              = "Body HTML"
	colPublished             = "Published"
	colGiftCard              = "Gift Card"
	colWeightLbs             = "Weight LBs"
)

// NaturalKey returns the row's domain identifier for error reporting: the
// LCID cell when present, otherwise a positional fallback.
func NaturalKey(row model.Row, index int) string {
	if v, ok := row[colLCID]; ok && v != nil {
		return fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("row %d", index)
}

// TransformRow maps one raw row into a canonical Product or fails with a
// FieldValidationError. It is a pure function: no I/O, and the same row
// always yields the same record or the same error.
func TransformRow(row model.Row, index int) (model.Product, error) {
	key := NaturalKey(row, index)

	lcid, err := requiredInt(row, key, colLCID)
	if err != nil {
		return model.Product{}, err
	}
	slug, err := requiredString(row, key, colLCIDSlug)
	if err != nil {
		return model.Product{}, err
	}
	barcode, err := requiredStringified(row, key, colVariantBarcode)
	if err != nil {
		return model.Product{}, err
	}
	qty, err := requiredInt(row, key, colVariantInventoryQty)
	if err != nil {
		return model.Product{}, err
	}
	handle, err := requiredString(row, key, colHandle)
	if err != nil {
		return model.Product{}, err
	}
	vendor, err := requiredString(row, key, colVendor)
	if err != nil {
		return model.Product{}, err
	}
	gender, err := requiredString(row, key, colProductGender)
	if err != nil {
		return model.Product{}, err
	}
	title, err := requiredString(row, key, colTitle)
	if err != nil {
		return model.Product{}, err
	}
	typ, err := requiredString(row, key, colType)
	if err != nil {
		return model.Product{}, err
	}
	price, err := requiredFloat(row, key, colVariantPrice)
	if err != nil {
		return model.Product{}, err
	}
	compareAt, err := optionalFloat(row, key, colVariantCompareAtPrice)
	if err != nil {
		return model.Product{}, err
	}
	weight, err := optionalFloat(row, key, colWeightLbs)
	if err != nil {
		return model.Product{}, err
	}

	return model.Product{
		LCID:                  lcid,
		LCIDSlug:              slug,
		VariantBarcode:        barcode,
		VariantInventoryQty:   qty,
		Handle:                handle,
		Vendor:                vendor,
		ProductGender:         gender,
		Title:                 title,
		Tags:                  splitTags(row[colTags]),
		Type:                  typ,
		Option1Name:           optionalString(row[colOption1Name]),
		Option1Value:          optionalString(row[colOption1Value]),
		Option2Name:           optionalString(row[colOption2Name]),
		Option2Value:          optionalString(row[colOption2Value]),
		VariantPrice:          price,
		VariantCompareAtPrice: compareAt,
		VariantImage:          optionalString(row[colVariantImage]),
		BodyHTML:              optionalString(row[colBodyHTML]),
		Published:             ParseBool(row[colPublished]),
		GiftCard:              ParseBool(row[colGiftCard]),
		WeightLbs:             weight,
	}, nil
}

// ParseBool is deliberately permissive: true only for a boolean true or a
// string whose trimmed, case-folded form is "true". Everything else,
// including absent and unparseable values, is false.
func ParseBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(strings.TrimSpace(val), "true")
	default:
		return false
	}
}

// splitTags derives the list field from a delimiter-split string; a null or
// absent source yields an empty list, never nil semantics leaking upward.
func splitTags(v any) []string {
	s, ok := v.(string)
	if !ok || s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func optionalString(v any) *string {
	if v == nil {
		return nil
	}
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return nil
	}
	return &s
}

func requiredString(row model.Row, key, field string) (string, error) {
	v, ok := row[field]
	if !ok || v == nil {
		return "", newFieldError(key, field, "missing required column")
	}
	s, ok := v.(string)
	if !ok {
		return "", newFieldError(key, field, "expected string, got %T", v)
	}
	return s, nil
}

// requiredStringified accepts any non-null scalar and renders it as a string
// (barcodes arrive as either numbers or strings depending on the source).
func requiredStringified(row model.Row, key, field string) (string, error) {
	v, ok := row[field]
	if !ok || v == nil {
		return "", newFieldError(key, field, "missing required column")
	}
	return fmt.Sprintf("%v", v), nil
}

func requiredInt(row model.Row, key, field string) (int, error) {
	v, ok := row[field]
	if !ok || v == nil {
		return 0, newFieldError(key, field, "missing required column")
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case float64:
		return int(val), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, newFieldError(key, field, "cannot coerce %q to integer", val)
		}
		return n, nil
	default:
		return 0, newFieldError(key, field, "cannot coerce %T to integer", v)
	}
}

func requiredFloat(row model.Row, key, field string) (float64, error) {
	v, ok := row[field]
	if !ok || v == nil {
		return 0, newFieldError(key, field, "missing required column")
	}
	f, err := coerceFloat(v)
	if err != nil {
		return 0, newFieldError(key, field, "cannot coerce %v to number", v)
	}
	return f, nil
}

func optionalFloat(row model.Row, key, field string) (*float64, error) {
	v, ok := row[field]
	if !ok || v == nil {
		return nil, nil
	}
	f, err := coerceFloat(v)
	if err != nil {
		return nil, newFieldError(key, field, "cannot coerce %v to number", v)
	}
	return &f, nil
}

func coerceFloat(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(val), 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
