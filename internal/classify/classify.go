// Package classify turns a raw inbound text message into the small set
// of signals the onboarding conversation understands: affirmative,
// negative, a ZIP code, or a phone number. Matching is whole-token and
// case-folded, so "november" does not read as a "no".
package classify

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Result carries every signal recognized in one message. More than one
// may be set; callers consult them in a fixed priority order per
// conversation stage.
type Result struct {
	Affirmative bool
	Negative    bool
	Zip         string // 5-digit ZIP that resolved to a timezone
	Timezone    string // IANA name resolved from Zip
	Phone       string // E.164
	Raw         string // trimmed original text
}

// Unrecognized reports whether no signal at all was found.
func (r Result) Unrecognized() bool {
	return !r.Affirmative && !r.Negative && r.Zip == "" && r.Phone == ""
}

// Classifier holds the trigger wordlists and collaborators. The
// defaults preserve the historical trigger words; both lists are
// configurable.
type Classifier struct {
	Affirmatives []string
	Negatives    []string
	// Region is the default phone-number region for normalization.
	Region string
	// ZipToTimezone resolves a 5-digit ZIP to an IANA timezone name,
	// returning "" when unknown.
	ZipToTimezone func(zip string) string
}

func New(zipToTimezone func(string) string) *Classifier {
	return &Classifier{
		Affirmatives:  []string{"yes", "y", "yeah", "yep", "yup", "sure"},
		Negatives:     []string{"no", "n", "nope", "nah"},
		Region:        "US",
		ZipToTimezone: zipToTimezone,
	}
}

func (c *Classifier) Classify(text string) Result {
	raw := strings.TrimSpace(text)
	res := Result{Raw: raw}

	tokens := tokenize(raw)
	res.Affirmative = containsAny(tokens, c.Affirmatives)
	res.Negative = containsAny(tokens, c.Negatives)

	digits := digitsOnly(raw)
	if len(digits) == 5 && c.ZipToTimezone != nil {
		if tz := c.ZipToTimezone(digits); tz != "" {
			res.Zip = digits
			res.Timezone = tz
		}
	}
	if res.Zip == "" && digits != "" {
		res.Phone = NormalizePhone(raw, c.Region)
	}
	return res
}

// NormalizePhone parses free text as a phone number and returns its
// E.164 form, or "" when the text is not a valid number.
func NormalizePhone(raw, region string) string {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		num, err = phonenumbers.Parse(digitsOnly(raw), region)
		if err != nil {
			return ""
		}
	}
	if !phonenumbers.IsValidNumber(num) {
		return ""
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

// tokenize lowercases the text and splits it into letter-only words.
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return r < 'a' || r > 'z'
	})
}

func containsAny(tokens, words []string) bool {
	for _, t := range tokens {
		for _, w := range words {
			if t == w {
				return true
			}
		}
	}
	return false
}

func digitsOnly(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
