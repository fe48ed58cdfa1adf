package linguistics

import "regexp"

// Shared patterns. Go's RE2 \b is ASCII-only, matching how the rest of the
// heuristics treat word characters.
var (
	TitleNP    = regexp.MustCompile(`\b(?:Dr|Prof|Professor|Minister|President|CEO|Chair|Senator)\.?\s+[A-Z][a-z]+(?:\s[A-Z][a-z]+)*\b`)
	OrgSuffix  = regexp.MustCompile(`\b[A-Z][A-Za-z&.\-]{1,}\s+(?:Inc|Ltd|LLC|PLC|AG|GmbH|Corp|Co\.|University|Council|Ministry|Department)\b`)
	ProperSeq  = regexp.MustCompile(`\b(?:[A-Z][a-z]+(?:\s|[-'])[A-Z][a-z]+(?:\s[A-Z][a-z]+)*)\b`)
	Acronym    = regexp.MustCompile(`\b[A-Z]{2,}(?:-[A-Z]{2,})?\b`)
	TimePhrase = regexp.MustCompile(`\b(?:in|by|since|during|over|as of|between)\s+(?:\d{4}|January|February|March|April|May|June|July|August|September|October|November|December|last\s+(?:year|quarter|month|week))\b`)
	Domain     = regexp.MustCompile(`(?i)\b[a-z0-9](?:[a-z0-9-]*[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]*[a-z0-9])?)+(?:/[\w\-./?%&=]*)?\b`)

	// NPPatterns are the noun-phrase patterns in precedence order.
	NPPatterns = []*regexp.Regexp{TitleNP, OrgSuffix, ProperSeq, Acronym}

	// FragmentPatterns mark a sentence as a useful context fragment.
	FragmentPatterns = []*regexp.Regexp{TitleNP, OrgSuffix, ProperSeq, Acronym, TimePhrase}

	// ContextPronoun marks a quote that probably leans on earlier sentences.
	ContextPronoun = regexp.MustCompile(`\b(he|she|it|they|them|this|that|these|those|the former|the latter)\b`)

	pronounLead   = regexp.MustCompile(`^(he|she|it|they|them|this|that|these|those|the former|the latter|his|her|its|their)\b`)
	twoCapWords   = regexp.MustCompile(`[A-Z][a-z]+\s[A-Z][a-z]+`)
	numericDomain = regexp.MustCompile(`^[\d.]+$`)
	nonWordSpace  = regexp.MustCompile(`[^\w\s-]`)
	nonWord       = regexp.MustCompile(`[^\w]`)
	multiSpace    = regexp.MustCompile(`\s+`)
	trailingPunct = regexp.MustCompile(`[.,;!?]+$`)
	negation      = regexp.MustCompile(`(?i)\b(?:no\b|not\b|never\b|no evidence\b|lacks\b|decline\b|without\b|isn't\b|wasn't\b|aren't\b|weren't\b|doesn't\b|didn't\b|don't\b|won't\b|wouldn't\b|can't\b|cannot\b|couldn't\b)\b`)
	percentQty    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	currencyQty   = regexp.MustCompile(`(?i)\$(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(million|billion|trillion)?`)
	rangeQty      = regexp.MustCompile(`(?i)between\s+(\d+(?:\.\d+)?)\s+and\s+(\d+(?:\.\d+)?)`)
	comparisonQty = regexp.MustCompile(`(?i)(at least|more than|over|above|up to|less than|under|below|approximately|about|around)\s+(\d+(?:\.\d+)?)`)
	simpleQty     = regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d+)?)\s*([a-z]+)?`)
	yearLiteral   = regexp.MustCompile(`\b(\d{4})\b`)
	monthYear     = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{4})\b`)
)

var months = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// entityAliases canonicalizes common abbreviations in entity memory.
var entityAliases = map[string]string{
	"us":   "united states",
	"usa":  "united states",
	"uk":   "united kingdom",
	"unsw": "university of new south wales",
	"mit":  "massachusetts institute of technology",
	"nasa": "national aeronautics and space administration",
	"fbi":  "federal bureau of investigation",
	"cia":  "central intelligence agency",
	"eu":   "european union",
	"un":   "united nations",
	"who":  "world health organization",
	"nato": "north atlantic treaty organization",
}

var locationAliases = map[string]string{
	"us":  "united states",
	"usa": "united states",
	"uk":  "united kingdom",
	"eu":  "european union",
	"nyc": "new york city",
	"la":  "los angeles",
	"sf":  "san francisco",
}

var acronymStopwords = map[string]bool{
	"THE": true, "AND": true, "OR": true, "BUT": true,
	"FOR": true, "NOR": true, "SO": true, "YET": true,
}
