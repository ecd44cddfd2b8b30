// Package uaparser classifies raw User-Agent strings into device, OS and
// browser families. The tables are compiled once at startup and never
// mutated, so a single classifier is safe for unsynchronized concurrent use
// across requests.
package uaparser

import (
	"errors"
	"regexp"
)

// UserAgent holds the three classified families for one raw UA string.
type UserAgent struct {
	Device  string
	OS      string
	Browser string
}

// Classifier maps a raw user-agent string to its classified families.
type Classifier interface {
	Classify(userAgent string) (UserAgent, error)
}

// ErrEmptyUserAgent reports a blank UA string, which cannot be classified.
var ErrEmptyUserAgent = errors.New("empty user agent")

// OtherFamily is the fallback family when no rule matches.
const OtherFamily = "Other"

type rule struct {
	pattern *regexp.Regexp
	family  string
}

// Rule order matters: more specific tokens first. Chrome-derived browsers
// (Edge, Opera, Samsung Internet) embed "Chrome/", and Chrome itself embeds
// "Safari/".
var browserRules = []rule{
	{regexp.MustCompile(`Edg(e|A|iOS)?/`), "Edge"},
	{regexp.MustCompile(`OPR/|Opera`), "Opera"},
	{regexp.MustCompile(`SamsungBrowser/`), "Samsung Internet"},
	{regexp.MustCompile(`Firefox/|FxiOS/`), "Firefox"},
	{regexp.MustCompile(`CriOS/|Chrome/`), "Chrome"},
	{regexp.MustCompile(`Safari/`), "Safari"},
	{regexp.MustCompile(`MSIE |Trident/`), "IE"},
	{regexp.MustCompile(`(?i)curl/`), "curl"},
}

var osRules = []rule{
	{regexp.MustCompile(`Windows NT`), "Windows"},
	{regexp.MustCompile(`Android`), "Android"},
	{regexp.MustCompile(`iPhone|iPad|iPod`), "iOS"},
	{regexp.MustCompile(`Mac OS X`), "Mac OS X"},
	{regexp.MustCompile(`CrOS`), "Chrome OS"},
	{regexp.MustCompile(`Linux`), "Linux"},
}

var deviceRules = []rule{
	{regexp.MustCompile(`(?i)bot|spider|crawler|slurp`), "Spider"},
	{regexp.MustCompile(`iPhone`), "iPhone"},
	{regexp.MustCompile(`iPad`), "iPad"},
	{regexp.MustCompile(`Android`), "Android"},
}

// Regex is the rule-table backed Classifier used in production.
type Regex struct{}

func NewRegex() *Regex {
	return &Regex{}
}

func (*Regex) Classify(userAgent string) (UserAgent, error) {
	if userAgent == "" {
		return UserAgent{}, ErrEmptyUserAgent
	}

	return UserAgent{
		Device:  matchFamily(deviceRules, userAgent),
		OS:      matchFamily(osRules, userAgent),
		Browser: matchFamily(browserRules, userAgent),
	}, nil
}

func matchFamily(rules []rule, userAgent string) string {
	for _, r := range rules {
		if r.pattern.MatchString(userAgent) {
			return r.family
		}
	}
	return OtherFamily
}

// Static is a fixed-answer Classifier for tests.
type Static struct {
	UserAgent UserAgent
	Err       error
}

func (s Static) Classify(string) (UserAgent, error) {
	if s.Err != nil {
		return UserAgent{}, s.Err
	}
	return s.UserAgent, nil
}
