package core

import (
	"fmt"
	"strings"
)

const promptFormat = `Analyze this email for potential phishing attempts. Consider the sender, subject, content, and URLs:

Sender: %s <%s>
Subject: %s
URLs found: %s

Email body:
%s

Provide a detailed analysis in JSON format with the following structure:
{
    "isPhishing": boolean,
    "confidenceScore": number (0-100),
    "reasons": array of strings explaining why,
    "riskLevel": "low"|"medium"|"high",
    "technicalDetails": {
        "suspiciousUrls": array of suspicious URLs,
        "domainMismatch": boolean,
        "spoofingAttempt": boolean,
        "languageAnalysis": {
            "suspiciousPhrases": array of strings,
            "urgencyDetected": boolean
        }
    }
}`

// BuildPrompt renders the analysis prompt for an email. body replaces email.Body so
// callers can pass a truncated copy.
func BuildPrompt(email *EmailRecord, body string) string {
	return fmt.Sprintf(promptFormat,
		email.Sender.Name,
		email.Sender.Email,
		email.Subject,
		strings.Join(email.URLs, ", "),
		body,
	)
}
