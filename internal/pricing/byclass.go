package pricing

// ClassState holds the discount fields one customer class owns. The MRP is
// shared and lives on ByClass.
type ClassState struct {
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	SellingPrice    float64 `json:"selling_price"`
}

// ByClass tracks retail and wholesale pricing over one shared MRP.
type ByClass struct {
	MRP float64    `json:"mrp"`
	B2C ClassState `json:"b2c"`
	B2B ClassState `json:"b2b"`
}

// State assembles the full pricing quadruple for one class.
func (b ByClass) State(class Class) State {
	cs := b.class(class)
	return State{
		MRP:             b.MRP,
		DiscountPercent: cs.DiscountPercent,
		DiscountAmount:  cs.DiscountAmount,
		SellingPrice:    cs.SellingPrice,
	}
}

func (b ByClass) class(class Class) ClassState {
	if class == ClassB2B {
		return b.B2B
	}
	return b.B2C
}

func (b *ByClass) setClass(class Class, s State) {
	cs := ClassState{
		DiscountPercent: s.DiscountPercent,
		DiscountAmount:  s.DiscountAmount,
		SellingPrice:    s.SellingPrice,
	}
	if class == ClassB2B {
		b.B2B = cs
	} else {
		b.B2C = cs
	}
}

// Edit applies a single field change for one class. Editing the MRP re-derives
// both classes, each from its own stored discount percent; editing any other
// field re-seeds the working state from that class's own stored discount, so
// the two classes never bleed into each other.
func (b *ByClass) Edit(class Class, changed Field, value float64) {
	if changed == FieldMRP {
		next := Derive(b.State(ClassB2C), FieldMRP, value)
		b.setClass(ClassB2C, next)
		b.MRP = next.MRP
		b.setClass(ClassB2B, Derive(b.State(ClassB2B), FieldMRP, value))
		return
	}
	b.setClass(class, Derive(b.State(class), changed, value))
}

// ApplyCategoryDiscount sets a uniform discount percent for one class across
// every product, deriving amount and selling price from each product's own
// MRP. MRPs themselves are never touched.
func ApplyCategoryDiscount(products []*ByClass, class Class, pct float64) {
	for _, p := range products {
		if p == nil {
			continue
		}
		p.Edit(class, FieldDiscountPercent, pct)
	}
}
