package audit

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/hyperjump/keiyaku/internal/models"
)

// assessment is the outcome of one pattern match: everything a Finding
// needs besides offsets.
type assessment struct {
	severity    models.Severity
	confidence  float64
	title       string
	description string
}

// matchRule is one risk category: a set of pattern signatures plus an
// assess function that turns a match into severity and confidence. Rules
// are plain data iterated uniformly; adding a category means adding a
// table entry, not a type.
type matchRule struct {
	category string
	patterns []*regexp.Regexp
	// assess receives the matched text and its capture groups, plus the
	// surrounding context window used for carve-out style checks. A nil
	// result drops the match.
	assess func(groups []string, window string) *assessment
}

// absenceRule fires when a topic is discussed but an expected protective
// pattern is missing anywhere in the text. Absence-based inferences carry
// lower confidence than direct matches and have no evidence span.
type absenceRule struct {
	category string
	present  *regexp.Regexp
	expected *regexp.Regexp
	// suppressedBy names a match-rule category: when that rule already
	// produced findings, this absence rule stays silent (the direct
	// finding subsumes it).
	suppressedBy string
	finding      assessment
	evidence     string
}

// Context window sizes around a match, in characters. The leading window
// catches subjects mentioned just before the pattern; the trailing window
// catches carve-outs and qualifiers in the same clause.
const (
	windowBefore = 50
	windowAfter  = 200
)

var (
	reCarveOut     = regexp.MustCompile(`(?i)except|excluding|other than`)
	reUnreasonably = regexp.MustCompile(`(?i)not\s+(?:be\s+)?unreasonably\s+withheld`)
	reNoticeDays   = regexp.MustCompile(`(?i)(\d+)\s*day(?:s)?\s*(?:notice|prior|advance)`)
)

var matchRules = []matchRule{
	{
		category: "auto_renewal_short_notice",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)auto(?:matically)?\s+renew(?:al|s|ed)?[^.]{0,150}?(\d+)\s*day(?:s)?`),
			regexp.MustCompile(`(?i)renew(?:al|s|ed)?\s+(?:automatically|auto)[^.]{0,150}?(\d+)\s*day(?:s)?`),
		},
		assess: func(groups []string, _ string) *assessment {
			days, err := strconv.Atoi(groups[1])
			if err != nil || days >= 30 {
				return nil
			}
			severity := models.SeverityMedium
			if days < 15 {
				severity = models.SeverityHigh
			}
			return &assessment{
				severity:   severity,
				confidence: 0.9,
				title:      fmt.Sprintf("Auto-renewal with %d-day notice period", days),
				description: fmt.Sprintf("Contract automatically renews with only %d days' notice, "+
					"which may be insufficient to cancel before renewal.", days),
			}
		},
	},
	{
		category: "unlimited_liability",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)unlimited\s+liability`),
			regexp.MustCompile(`(?i)liabilit(?:y|ies)[^.]{0,80}?(?:is|are|shall\s+be)\s+unlimited`),
			regexp.MustCompile(`(?i)no\s+(?:limit|cap)\s+(?:on|to)\s+liability`),
			regexp.MustCompile(`(?i)liability\s+shall\s+not\s+be\s+limited`),
			regexp.MustCompile(`(?i)without\s+(?:limit|limitation)\s+of\s+liability`),
		},
		assess: func(_ []string, _ string) *assessment {
			return &assessment{
				severity:   models.SeverityCritical,
				confidence: 0.95,
				title:      "Unlimited liability clause detected",
				description: "Contract contains language indicating unlimited liability, " +
					"which could expose the party to significant financial risk.",
			}
		},
	},
	{
		category: "broad_indemnity",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)indemnif(?:y|ication)[\s\S]{0,150}?(?:any|all)[\s\S]{0,100}?(?:claims?|losses?|damages?|liabilities)`),
			regexp.MustCompile(`(?is)hold\s+harmless[\s\S]{0,150}?(?:any|all)[\s\S]{0,100}?(?:claims?|losses?)`),
			regexp.MustCompile(`(?is)indemnif(?:y|ication)[\s\S]{0,150}?(?:including|without\s+limitation)`),
		},
		assess: func(_ []string, window string) *assessment {
			// Carve-outs in the same clause soften the finding.
			severity := models.SeverityHigh
			if reCarveOut.MatchString(window) {
				severity = models.SeverityMedium
			}
			return &assessment{
				severity:   severity,
				confidence: 0.85,
				title:      "Broad indemnification obligation",
				description: "Contract contains broad indemnification language that may expose " +
					"party to extensive liability for third-party claims.",
			}
		},
	},
	{
		category: "unilateral_termination",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:may|shall|can)\s+terminate[^.]{0,150}?(?:at\s+any\s+time|without\s+cause|for\s+any\s+reason)`),
			regexp.MustCompile(`(?i)terminate[^.]{0,150}?(?:at|in)\s+its\s+sole\s+discretion`),
		},
		assess: func(_ []string, _ string) *assessment {
			return &assessment{
				severity:   models.SeverityMedium,
				confidence: 0.8,
				title:      "Unilateral termination right",
				description: "Contract allows one party to terminate at will, which may create " +
					"imbalance in contractual obligations.",
			}
		},
	},
	{
		category: "assignment_restriction",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:may|shall)\s+not\s+assign[^.]{0,150}?without[^.]{0,100}?(?:consent|approval)`),
			regexp.MustCompile(`(?i)assignment[^.]{0,100}?prohibited[^.]{0,100}?without[^.]{0,100}?(?:consent|approval)`),
		},
		assess: func(_ []string, window string) *assessment {
			// A consent that cannot be unreasonably withheld is the market
			// standard; downgrade rather than drop.
			severity := models.SeverityMedium
			if reUnreasonably.MatchString(window) {
				severity = models.SeverityLow
			}
			return &assessment{
				severity:   severity,
				confidence: 0.75,
				title:      "Restrictive assignment clause",
				description: "Contract restricts assignment rights, potentially limiting " +
					"flexibility in business transactions.",
			}
		},
	},
	{
		category: "perpetual_confidentiality",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)confidential(?:ity)?[\s\S]{0,200}?(?:perpetual|indefinite|forever)`),
			regexp.MustCompile(`(?is)confidential(?:ity)?[\s\S]{0,200}?(?:survive|continue)[\s\S]{0,100}?(?:indefinitely|termination)`),
			regexp.MustCompile(`(?is)confidential(?:ity)?[\s\S]{0,200}?no\s+time\s+limit`),
		},
		assess: func(_ []string, _ string) *assessment {
			return &assessment{
				severity:   models.SeverityMedium,
				confidence: 0.8,
				title:      "Perpetual confidentiality obligation",
				description: "Contract requires confidentiality obligations to continue " +
					"indefinitely, which may be impractical or overly burdensome.",
			}
		},
	},
}

var absenceRules = []absenceRule{
	{
		category:     "auto_renewal_unclear_notice",
		present:      regexp.MustCompile(`(?i)auto(?:matically)?\s+renew(?:al|s)?`),
		expected:     reNoticeDays,
		suppressedBy: "auto_renewal_short_notice",
		finding: assessment{
			severity:   models.SeverityMedium,
			confidence: 0.8,
			title:      "Auto-renewal clause without clear notice period",
			description: "Contract contains auto-renewal language but does not specify a clear " +
				"notice period for cancellation.",
		},
	},
	{
		category:     "no_liability_cap",
		present:      regexp.MustCompile(`(?i)liabilit(?:y|ies)`),
		expected:     regexp.MustCompile(`(?i)(?:limited|capped|cap)\s+(?:to|at)\s+(?:\$|USD|EUR)?[\d,]+`),
		suppressedBy: "unlimited_liability",
		finding: assessment{
			severity:   models.SeverityHigh,
			confidence: 0.7,
			title:      "No clear liability cap specified",
			description: "Contract mentions liability but does not specify a clear monetary " +
				"cap or limitation.",
		},
		evidence: "Liability section present but no cap found",
	},
}
