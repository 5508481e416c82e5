package detection

import (
	"regexp"
	"strings"
)

// Rule describes one sensitive-information pattern. All rules are evaluated
// against the full body; order only affects presentation order of findings.
type Rule struct {
	InfoType  string
	Pattern   *regexp.Regexp
	RiskScore int
}

// Finding is a single detected occurrence of sensitive content in a
// response body. Match holds a redacted sample of the matched text.
type Finding struct {
	URL       string `json:"url"`
	InfoType  string `json:"info_type"`
	RiskScore int    `json:"risk_score"`
	Match     string `json:"match"`
}

// Rules is the fixed rule set, ordered by descending risk score.
var Rules = []Rule{
	{
		InfoType:  "Private Key Block",
		Pattern:   regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH |DSA |PGP )?PRIVATE KEY( BLOCK)?-----`),
		RiskScore: 10,
	},
	{
		InfoType:  "AWS Access Key",
		Pattern:   regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		RiskScore: 9,
	},
	{
		InfoType:  "AWS Secret Key",
		Pattern:   regexp.MustCompile(`(?i)(aws_secret_access_key|aws_secret_key)["'\s:=]+[A-Za-z0-9/+=]{40}`),
		RiskScore: 9,
	},
	{
		InfoType:  "GitHub Token",
		Pattern:   regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,255}`),
		RiskScore: 9,
	},
	{
		InfoType:  "Database Connection String",
		Pattern:   regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb|redis|amqp)://[^\s"']+:[^\s"']+@[^\s"']+`),
		RiskScore: 9,
	},
	{
		InfoType:  "Stripe Secret Key",
		Pattern:   regexp.MustCompile(`sk_live_[0-9a-zA-Z]{24,}`),
		RiskScore: 9,
	},
	{
		InfoType:  "Google API Key",
		Pattern:   regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
		RiskScore: 8,
	},
	{
		InfoType:  "Slack Token",
		Pattern:   regexp.MustCompile(`xox[baprs]-[0-9]{10,13}-[0-9]{10,13}-[a-zA-Z0-9]{24,}`),
		RiskScore: 8,
	},
	{
		InfoType:  "JWT Token",
		Pattern:   regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
		RiskScore: 7,
	},
	{
		InfoType:  "Generic Credential",
		Pattern:   regexp.MustCompile(`(?i)"?(password|passwd|pwd|secret|api[_-]?key|access[_-]?token|auth[_-]?token)"?\s*[:=]\s*"?[^\s"',;]{6,}`),
		RiskScore: 6,
	},
	{
		InfoType:  "Internal IP Address",
		Pattern:   regexp.MustCompile(`\b(10\.\d{1,3}\.\d{1,3}\.\d{1,3}|192\.168\.\d{1,3}\.\d{1,3}|172\.(1[6-9]|2\d|3[01])\.\d{1,3}\.\d{1,3})\b`),
		RiskScore: 4,
	},
	{
		InfoType:  "Internal Hostname",
		Pattern:   regexp.MustCompile(`\b[a-zA-Z0-9][a-zA-Z0-9-]*\.(internal|intranet|corp|lan)\b`),
		RiskScore: 3,
	},
	{
		InfoType:  "Internal Email",
		Pattern:   regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		RiskScore: 2,
	},
}

// Detector classifies response bodies against the fixed rule set. It holds
// no mutable state and is safe to share across concurrent workers.
type Detector struct {
	rules []Rule
}

func NewDetector() *Detector {
	return &Detector{rules: Rules}
}

// Detect returns one finding per independent rule match in body. Duplicate
// findings of the same type within a body are allowed. Never fails; an empty
// slice means nothing was detected.
func (d *Detector) Detect(url, body string) []Finding {
	var findings []Finding
	for _, rule := range d.rules {
		for _, match := range rule.Pattern.FindAllString(body, -1) {
			findings = append(findings, Finding{
				URL:       url,
				InfoType:  rule.InfoType,
				RiskScore: rule.RiskScore,
				Match:     Redact(match),
			})
		}
	}
	return findings
}

// Redact masks the middle of a matched value so reports never carry the
// secret verbatim.
func Redact(match string) string {
	if len(match) <= 8 {
		return strings.Repeat("*", len(match))
	}
	return match[:4] + strings.Repeat("*", len(match)-8) + match[len(match)-4:]
}
