package intake

import (
	"regexp"
	"strconv"
	"strings"
)

// Free-text extraction helpers. These are deliberately isolated, pure
// functions: input string in, partial structured record out. They never
// error — a miss simply leaves the field at its zero value.

// ---------- package-level compiled regexes ----------

var (
	linearFeetRE    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:linear|lin\.?|ln)\s*(?:feet|foot|ft)\b`)
	wallFeetRE      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:feet|foot|ft|')\s*(?:of\s+)?walls?\b`)
	ceilingFeetRE   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:foot|feet|ft|')?\s*(?:tall\s+|high\s+)?ceilings?\b`)
	ceilingAfterRE  = regexp.MustCompile(`(?i)ceilings?\s+(?:height\s+)?(?:is|are|of)\s+(\d+(?:\.\d+)?)`)
	roomDimsRE      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:x|by|\*)\s*(\d+(?:\.\d+)?)`)
	wallSqftRE      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:sq\.?\s*ft\.?|sqft|square\s*feet)\s*(?:of\s+)?walls?\b`)
	costPerGallonRE = regexp.MustCompile(`(?i)\$?\s*(\d+(?:\.\d+)?)\s*(?:per|a|/)\s*gal(?:lon)?s?\b`)
	coverageRE      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:sq\.?\s*ft\.?|sqft|square\s*feet)\s*(?:per|/)\s*gal(?:lon)?s?\b`)
	coversRE        = regexp.MustCompile(`(?i)covers\s+(?:about\s+|around\s+)?(\d+(?:\.\d+)?)`)
	addressRE       = regexp.MustCompile(`(?i)\b(\d+\s+[\w. ]+?(?:street|st|avenue|ave|road|rd|drive|dr|lane|ln|boulevard|blvd|court|ct|place|pl|way|circle|cir)\b\.?(?:,\s*[\w. ]+)*)`)
)

var quickNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is\s+([\p{L}][\p{L}'-]*(?:\s+[\p{L}][\p{L}'-]*){0,2})`),
	regexp.MustCompile(`(?i)\bname:?\s+([\p{L}][\p{L}'-]*(?:\s+[\p{L}][\p{L}'-]*){0,2})`),
	regexp.MustCompile(`(?i)\bthis is\s+([\p{L}][\p{L}'-]*(?:\s+[\p{L}][\p{L}'-]*){0,2})`),
	// Capitalization is deliberate here: "for Jane Doe at ..." names a
	// customer, "for a blue house" does not.
	regexp.MustCompile(`\b(?:[Qq]uote\s+)?[Ff]or\s+([A-Z][\p{L}'-]+(?:\s+[A-Z][\p{L}'-]+){1,2})\s+at\b`),
	regexp.MustCompile(`(?i)\bcustomer(?:\s+is|:)\s+([\p{L}][\p{L}'-]*(?:\s+[\p{L}][\p{L}'-]*){0,2})`),
}

// paintBrandPatterns maps lowercase substrings to canonical paint brand
// names. Ordered by specificity so longer brands match first.
var paintBrandPatterns = []struct {
	pattern string
	name    string
}{
	{"sherwin williams", "Sherwin-Williams"},
	{"sherwin-williams", "Sherwin-Williams"},
	{"benjamin moore", "Benjamin Moore"},
	{"dunn edwards", "Dunn-Edwards"},
	{"dunn-edwards", "Dunn-Edwards"},
	{"farrow and ball", "Farrow & Ball"},
	{"farrow & ball", "Farrow & Ball"},
	{"behr", "Behr"},
	{"valspar", "Valspar"},
	{"glidden", "Glidden"},
	{"kilz", "Kilz"},
	{"ppg", "PPG"},
}

// negationTokens mark a surface as excluded when they appear shortly before
// its mention ("not painting the ceiling", "no trim", "skip the doors").
var negationTokens = []string{"not ", "no ", "n't ", "skip", "without", "exclud", "except"}

// Measurements holds numeric quantities extracted from free text. Zero
// means the quantity was not mentioned.
type Measurements struct {
	LinearFeetWalls float64 `json:"linear_feet_walls,omitempty"`
	CeilingHeight   float64 `json:"ceiling_height,omitempty"`
	RoomLength      float64 `json:"room_length,omitempty"`
	RoomWidth       float64 `json:"room_width,omitempty"`
	WallSqft        float64 `json:"wall_sqft,omitempty"`
	CeilingSqft     float64 `json:"ceiling_sqft,omitempty"`
}

// Empty reports whether nothing was extracted.
func (m Measurements) Empty() bool {
	return m == Measurements{}
}

// ParseMeasurements extracts wall footage, ceiling height and room
// dimensions from free text, deriving square footage where both operands
// are present.
func ParseMeasurements(text string) Measurements {
	var m Measurements

	if match := linearFeetRE.FindStringSubmatch(text); match != nil {
		m.LinearFeetWalls = parseFloat(match[1])
	} else if match := wallFeetRE.FindStringSubmatch(text); match != nil {
		m.LinearFeetWalls = parseFloat(match[1])
	}

	if match := ceilingFeetRE.FindStringSubmatch(text); match != nil && match[1] != "" {
		m.CeilingHeight = parseFloat(match[1])
	} else if match := ceilingAfterRE.FindStringSubmatch(text); match != nil {
		m.CeilingHeight = parseFloat(match[1])
	}

	if match := roomDimsRE.FindStringSubmatch(text); match != nil {
		m.RoomLength = parseFloat(match[1])
		m.RoomWidth = parseFloat(match[2])
	}

	if match := wallSqftRE.FindStringSubmatch(text); match != nil {
		m.WallSqft = parseFloat(match[1])
	}

	if m.WallSqft == 0 && m.LinearFeetWalls > 0 && m.CeilingHeight > 0 {
		m.WallSqft = m.LinearFeetWalls * m.CeilingHeight
	}
	if m.RoomLength > 0 && m.RoomWidth > 0 {
		m.CeilingSqft = m.RoomLength * m.RoomWidth
	}

	return m
}

// CustomerDetails is a parsed name/address pair.
type CustomerDetails struct {
	CustomerName string `json:"customer_name,omitempty"`
	Address      string `json:"address,omitempty"`
}

// ParseCustomerDetails splits free text on commas/newlines: the first
// segment is the customer name, the remainder is the address.
func ParseCustomerDetails(text string) CustomerDetails {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	var parts []string
	for _, seg := range segments {
		if seg = strings.TrimSpace(seg); seg != "" {
			parts = append(parts, seg)
		}
	}
	if len(parts) == 0 {
		return CustomerDetails{}
	}
	details := CustomerDetails{CustomerName: parts[0]}
	if len(parts) > 1 {
		details.Address = strings.Join(parts[1:], ", ")
	}
	return details
}

// SurfaceScope marks which surfaces a quote covers.
type SurfaceScope struct {
	Walls    bool `json:"walls"`
	Ceilings bool `json:"ceilings"`
	Trim     bool `json:"trim"`
	Doors    bool `json:"doors"`
	Windows  bool `json:"windows"`
}

// QuickQuoteDraft is the structured result of the single-message fast path.
type QuickQuoteDraft struct {
	Customer           CustomerDetails `json:"customer"`
	Measurements       Measurements    `json:"measurements"`
	PaintCostPerGallon float64         `json:"paint_cost_per_gallon,omitempty"`
	CoverageSqftPerGal float64         `json:"coverage_sqft_per_gallon,omitempty"`
	PaintName          string          `json:"paint_name,omitempty"`
	Surfaces           SurfaceScope    `json:"surfaces"`
}

// ParseQuickQuote attempts to extract a full quote draft from one freeform
// message. It returns nil when neither wall square footage nor linear wall
// footage could be derived — the minimum needed to skip the guided flow.
func ParseQuickQuote(text string) *QuickQuoteDraft {
	measurements := ParseMeasurements(text)
	if measurements.WallSqft == 0 && measurements.LinearFeetWalls == 0 {
		return nil
	}

	draft := &QuickQuoteDraft{
		Measurements: measurements,
		Surfaces:     parseSurfaceScope(text),
	}

	for _, pattern := range quickNamePatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			draft.Customer.CustomerName = strings.TrimSpace(match[1])
			break
		}
	}
	if match := addressRE.FindStringSubmatch(text); match != nil {
		draft.Customer.Address = strings.TrimSpace(strings.Trim(match[1], " .,"))
	}

	if match := costPerGallonRE.FindStringSubmatch(text); match != nil {
		draft.PaintCostPerGallon = parseFloat(match[1])
	}
	if match := coverageRE.FindStringSubmatch(text); match != nil {
		draft.CoverageSqftPerGal = parseFloat(match[1])
	} else if match := coversRE.FindStringSubmatch(text); match != nil {
		draft.CoverageSqftPerGal = parseFloat(match[1])
	}

	draft.PaintName = parsePaintName(text)

	return draft
}

// parsePaintName matches a known brand and keeps up to three capitalized
// product words that follow it ("Benjamin Moore Regal Select").
func parsePaintName(text string) string {
	lower := strings.ToLower(text)
	for _, brand := range paintBrandPatterns {
		idx := strings.Index(lower, brand.pattern)
		if idx < 0 {
			continue
		}
		name := brand.name
		rest := strings.Fields(text[idx+len(brand.pattern):])
		for i := 0; i < len(rest) && i < 3; i++ {
			word := strings.Trim(rest[i], ".,!?")
			if word == "" || word[0] < 'A' || word[0] > 'Z' {
				break
			}
			name += " " + word
		}
		return name
	}
	return ""
}

// parseSurfaceScope detects which surfaces are in scope, honoring negation
// phrasing. Walls are in scope by default for any viable quick quote.
func parseSurfaceScope(text string) SurfaceScope {
	lower := strings.ToLower(text)
	return SurfaceScope{
		Walls:    !mentionedNegated(lower, "wall"),
		Ceilings: mentionedPositively(lower, "ceiling"),
		Trim:     mentionedPositively(lower, "trim"),
		Doors:    mentionedPositively(lower, "door"),
		Windows:  mentionedPositively(lower, "window"),
	}
}

// mentionedPositively reports whether keyword appears and no mention of it
// is negated. "not painting the ceiling" overrides an earlier "9 ft
// ceilings".
func mentionedPositively(lower, keyword string) bool {
	idxs := keywordIndexes(lower, keyword)
	for _, idx := range idxs {
		if negatedAt(lower, idx) {
			return false
		}
	}
	return len(idxs) > 0
}

// mentionedNegated reports whether any mention of keyword is negated.
func mentionedNegated(lower, keyword string) bool {
	for _, idx := range keywordIndexes(lower, keyword) {
		if negatedAt(lower, idx) {
			return true
		}
	}
	return false
}

func keywordIndexes(lower, keyword string) []int {
	var idxs []int
	for from := 0; ; {
		idx := strings.Index(lower[from:], keyword)
		if idx < 0 {
			return idxs
		}
		idxs = append(idxs, from+idx)
		from += idx + len(keyword)
	}
}

// negatedAt checks the window of text just before position idx for a
// negation token ("not painting the ceiling", "no trim").
func negatedAt(lower string, idx int) bool {
	start := idx - 30
	if start < 0 {
		start = 0
	}
	window := lower[start:idx]
	// A comma or sentence break resets the negation context.
	if cut := strings.LastIndexAny(window, ",.;"); cut >= 0 {
		window = window[cut+1:]
	}
	for _, token := range negationTokens {
		if strings.Contains(window, token) {
			return true
		}
	}
	return false
}

func parseFloat(s string) float64 {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}
