package model

// Row is one raw record from a tabular source: column name to a loosely typed
// cell value (string, float64, bool, or nil for a missing/empty cell).
type Row map[string]any

// Stats summarizes the connector's persisted state for the status endpoint.
type Stats struct {
	Products     int64            `json:"products"`
	JobsByStatus map[string]int64 `json:"jobs_by_status"`
}

// Product is the canonical record persisted by the ingestion pipeline. Every
// persisted Product passed transformation; rows that fail are recorded on the
// job's error list instead.
type Product struct {
	LCID                  int      `bson:"lcid" json:"lcid"`
	LCIDSlug              string   `bson:"lcid_slug" json:"lcid_slug"`
	VariantBarcode        string   `bson:"variant_barcode" json:"variant_barcode"`
	VariantInventoryQty   int      `bson:"variant_inventory_qty" json:"variant_inventory_qty"`
	Handle                string   `bson:"handle" json:"handle"`
	Vendor                string   `bson:"vendor" json:"vendor"`
	ProductGender         string   `bson:"product_gender" json:"product_gender"`
	Title                 string   `bson:"title" json:"title"`
	Tags                  []string `bson:"tags" json:"tags"`
	Type                  string   `bson:"type" json:"type"`
	Option1Name           *string  `bson:"option1_name,omitempty" json:"option1_name,omitempty"`
	Option1Value          *string  `bson:"option1_value,omitempty" json:"option1_value,omitempty"`
	Option2Name           *string  `bson:"option2_name,omitempty" json:"option2_name,omitempty"`
	Option2Value          *string  `bson:"option2_value,omitempty" json:"option2_value,omitempty"`
	VariantPrice          float64  `bson:"variant_price" json:"variant_price"`
	VariantCompareAtPrice *float64 `bson:"variant_compare_at_price,omitempty" json:"variant_compare_at_price,omitempty"`
	VariantImage          *string  `bson:"variant_image,omitempty" json:"variant_image,omitempty"`
	BodyHTML              *string  `bson:"body_html,omitempty" json:"body_html,omitempty"`
	Published             bool     `bson:"published" json:"published"`
	GiftCard              bool     `bson:"gift_card" json:"gift_card"`
	WeightLbs             *float64 `bson:"weight_lbs,omitempty" json:"weight_lbs,omitempty"`
}
