package payment

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MaxCartUnits bounds the units of one cart, per line and in total.
const MaxCartUnits = 1000

// CartEncoding names the wire shape the cart metadata arrived in. The
// checkout producer changed shapes over time and all of them stay readable.
type CartEncoding int

const (
	CartEncodingObject CartEncoding = iota + 1 // {"7":{"quantity":2}}
	CartEncodingArray                          // [7,7,9]
	CartEncodingCSV                            // 7,7,9
	CartEncodingBareID                         // 7
)

func (e CartEncoding) String() string {
	switch e {
	case CartEncodingObject:
		return "object"
	case CartEncodingArray:
		return "array"
	case CartEncodingCSV:
		return "csv"
	case CartEncodingBareID:
		return "bare_id"
	default:
		return "unknown"
	}
}

// CartLine is one distinct product with its summed quantity.
type CartLine struct {
	ProductID int64
	Quantity  int
}

// Cart is a multiset of products. Lines are unique per product and keep the
// order in which products first appeared.
type Cart struct {
	Encoding CartEncoding
	Lines    []CartLine
}

// Units expands the cart to one entry per purchased unit.
func (c Cart) Units() []int64 {
	units := make([]int64, 0, c.TotalUnits())
	for _, l := range c.Lines {
		for i := 0; i < l.Quantity; i++ {
			units = append(units, l.ProductID)
		}
	}
	return units
}

func (c Cart) TotalUnits() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// ProductIDs returns the distinct product ids in ascending order.
func (c Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c Cart) Quantities() map[int64]int {
	q := make(map[int64]int, len(c.Lines))
	for _, l := range c.Lines {
		q[l.ProductID] += l.Quantity
	}
	return q
}

func (c Cart) IsEmpty() bool {
	return c.TotalUnits() == 0
}

// cartDecoder reports matched=false when raw is not in its syntax, letting the
// next decoder try. A matched decoder owns the result, including its error.
type cartDecoder struct {
	encoding CartEncoding
	decode   func(raw string) (lines []CartLine, matched bool, err error)
}

// cartDecoders is ordered by priority; the first match wins.
var cartDecoders = []cartDecoder{
	{CartEncodingObject, decodeObjectCart},
	{CartEncodingArray, decodeArrayCart},
	{CartEncodingCSV, decodeCSVCart},
	{CartEncodingBareID, decodeBareIDCart},
}

// ParseCart decodes a cart metadata value in any supported encoding.
func ParseCart(raw string) (Cart, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Cart{}, ErrEmptyCart
	}

	for _, d := range cartDecoders {
		lines, matched, err := d.decode(raw)
		if !matched {
			continue
		}
		if err != nil {
			return Cart{}, fmt.Errorf("%w: %s encoding: %v", ErrMalformedCart, d.encoding, err)
		}
		cart := Cart{Encoding: d.encoding, Lines: mergeLines(lines)}
		if cart.IsEmpty() {
			return Cart{}, ErrEmptyCart
		}
		if err := cart.checkLimits(); err != nil {
			return Cart{}, fmt.Errorf("%w: %s encoding: %v", ErrMalformedCart, d.encoding, err)
		}
		return cart, nil
	}
	return Cart{}, fmt.Errorf("%w: unrecognized encoding %q", ErrMalformedCart, truncate(raw, 64))
}

func decodeObjectCart(raw string) ([]CartLine, bool, error) {
	if !strings.HasPrefix(raw, "{") || !json.Valid([]byte(raw)) {
		return nil, false, nil
	}
	var items map[string]struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, true, err
	}

	lines := make([]CartLine, 0, len(items))
	for k, item := range items {
		id, err := parseProductID(k)
		if err != nil {
			return nil, true, err
		}
		if item.Quantity == nil {
			return nil, true, fmt.Errorf("product %d has no quantity", id)
		}
		if *item.Quantity <= 0 {
			return nil, true, fmt.Errorf("product %d has non-positive quantity %d", id, *item.Quantity)
		}
		lines = append(lines, CartLine{ProductID: id, Quantity: *item.Quantity})
	}
	// map iteration order is random
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, true, nil
}

func decodeArrayCart(raw string) ([]CartLine, bool, error) {
	if !strings.HasPrefix(raw, "[") || !json.Valid([]byte(raw)) {
		return nil, false, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var ids []json.Number
	if err := dec.Decode(&ids); err != nil {
		return nil, true, err
	}

	lines := make([]CartLine, 0, len(ids))
	for _, n := range ids {
		id, err := parseProductID(n.String())
		if err != nil {
			return nil, true, err
		}
		lines = append(lines, CartLine{ProductID: id, Quantity: 1})
	}
	return lines, true, nil
}

func decodeCSVCart(raw string) ([]CartLine, bool, error) {
	if !strings.Contains(raw, ",") {
		return nil, false, nil
	}
	fields := strings.Split(raw, ",")
	lines := make([]CartLine, 0, len(fields))
	for _, f := range fields {
		id, err := parseProductID(f)
		if err != nil {
			return nil, false, nil
		}
		lines = append(lines, CartLine{ProductID: id, Quantity: 1})
	}
	return lines, true, nil
}

func decodeBareIDCart(raw string) ([]CartLine, bool, error) {
	id, err := parseProductID(raw)
	if err != nil {
		return nil, false, nil
	}
	return []CartLine{{ProductID: id, Quantity: 1}}, true, nil
}

func parseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid product id %d", id)
	}
	return id, nil
}

// mergeLines sums duplicate products, keeping first-appearance order.
func mergeLines(lines []CartLine) []CartLine {
	index := make(map[int64]int, len(lines))
	out := make([]CartLine, 0, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// checkLimits rejects lines outside 1..MaxCartUnits and carts above
// MaxCartUnits in total. The total is checked per line so it cannot overflow.
func (c Cart) checkLimits() error {
	total := 0
	for _, l := range c.Lines {
		if l.Quantity <= 0 || l.Quantity > MaxCartUnits {
			return fmt.Errorf("product %d quantity %d outside 1..%d", l.ProductID, l.Quantity, MaxCartUnits)
		}
		total += l.Quantity
		if total > MaxCartUnits {
			return fmt.Errorf("cart exceeds %d units", MaxCartUnits)
		}
	}
	return nil
}

// EncodeCart renders quantities in the object encoding used by current
// checkout producers.
func EncodeCart(quantities map[int64]int) (string, error) {
	items := make(map[string]map[string]int, len(quantities))
	for id, q := range quantities {
		if id <= 0 || q <= 0 || q > MaxCartUnits {
			return "", fmt.Errorf("%w: product %d quantity %d", ErrMalformedCart, id, q)
		}
		items[strconv.FormatInt(id, 10)] = map[string]int{"quantity": q}
	}
	if len(items) == 0 {
		return "", ErrEmptyCart
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
