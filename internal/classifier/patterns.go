package classifier

import (
	"regexp"
	"strings"

	"github.com/mikey/linkedin-prioritizer/internal/core"
)

// DefaultRecencyHints are timestamp fragments that mean "just happened"
var DefaultRecencyHints = []string{"just now", "minute", "hour", "today"}

var defaultKeywords = map[core.Priority][]string{
	core.PriorityHigh: {
		`urgent`, `asap`, `immediate`, `opportunity`, `job offer`, `interview`,
		`deadline`, `important`, `crucial`, `CEO|CTO|CFO|COO`, `director`,
		`VP|Vice President`, `follow-?up`, `meeting[ .-]?request`, `contract`,
		`proposal`, `partnership`, `acquisition`, `investment`,
	},
	core.PriorityMedium: {
		`connect`, `introduction`, `referral`, `manager`, `lead`, `team`,
		`project`, `collaboration`, `information`, `inquiry`, `question`,
		`interested`, `feedback`, `review`, `schedule`, `resume`, `recruiter`,
	},
	core.PriorityLow: {
		`newsletter`, `update`, `subscription`, `invitation`, `event`, `webinar`,
		`network`, `service`, `promotion`, `thanks`, `thank you`,
		`looking to connect`, `would like to add you`, `in my network`,
		`reach out`, `looking forward`,
	},
}

var managerialSender = regexp.MustCompile(`(?i)CEO|CTO|CFO|COO|Director|VP|President|Founder|Partner|Hiring|Recruiter`)

// contentBuckets is the order content patterns are tested in; the first match wins
var contentBuckets = []core.Priority{core.PriorityHigh, core.PriorityMedium, core.PriorityLow}

func compileDefaults() map[core.Priority][]*regexp.Regexp {
	out := make(map[core.Priority][]*regexp.Regexp, len(defaultKeywords))
	for bucket, exprs := range defaultKeywords {
		for _, expr := range exprs {
			out[bucket] = append(out[bucket], regexp.MustCompile(`(?i)`+expr))
		}
	}
	return out
}

// literalPattern turns a user keyword into a case-insensitive literal match
func literalPattern(keyword string) *regexp.Regexp {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword))
}
