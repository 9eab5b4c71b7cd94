// Package deeplink classifies raw URLs into launch intents.
package deeplink

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/divyanshu-patil/appshell/internal/domain"
)

// intentPattern anchors on the four recognized intent keywords followed by
// the query separator.
var intentPattern = regexp.MustCompile(`^(room|auth|invite|shareextension)\?`)

// Parser turns raw URLs into launch intents. Parsing is pure and never
// fails hard: anything unrecognized yields a nil intent.
type Parser struct {
	schemePrefix string
	hostPrefix   string
}

// NewParser builds a parser accepting "{scheme}://{path}" and
// "https://{canonicalHost}/{path}" URLs.
func NewParser(scheme, canonicalHost string) *Parser {
	return &Parser{
		schemePrefix: scheme + "://",
		hostPrefix:   "https://" + canonicalHost + "/",
	}
}

// Parse classifies raw into a launch intent, or nil if no intent is
// recognized.
//
// The matched keyword names the intent, with one precedence quirk kept from
// the mobile client: a "type" field in the query string overrides the kind
// for room/auth/invite links, while shareextension links always map to
// KindShareExtension no matter what the query carries.
func (p *Parser) Parse(raw string) *domain.LaunchIntent {
	if raw == "" {
		return nil
	}

	rest := raw
	if after, ok := strings.CutPrefix(rest, p.schemePrefix); ok {
		rest = after
	} else if after, ok := strings.CutPrefix(rest, p.hostPrefix); ok {
		rest = after
	}

	m := intentPattern.FindStringSubmatch(rest)
	if m == nil {
		return nil
	}

	query := strings.TrimSpace(rest[len(m[0]):])
	if query == "" {
		return nil
	}

	// The query collaborator is permissive: keep whatever parsed even when
	// individual pairs are malformed.
	values, _ := url.ParseQuery(query)
	params := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			params[key] = vals[0]
		} else {
			params[key] = ""
		}
	}

	kind := m[1]
	if kind == "shareextension" {
		kind = domain.KindShareExtension
	} else if t := params["type"]; t != "" {
		kind = t
	}

	return &domain.LaunchIntent{Kind: kind, Params: params}
}
