package mail

import (
	"fmt"
	"html"
)

func TierUpgradeEmail(name, tier, multiplier string) (string, string) {
	subject := fmt.Sprintf("You reached %s status in The Garden", tier)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your 360LOCK commitment moved you up to <strong>%s</strong> status.</p>
<p>Affiliate and NCTR-Live rewards now earn a <strong>%sx</strong> multiplier.</p>
<p>The Garden</p>`, html.EscapeString(displayName(name)), html.EscapeString(tier), html.EscapeString(multiplier))
	return subject, body
}

func FreeTrialWelcomeEmail(name, bonus string) (string, string) {
	subject := "Welcome to The Garden"
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Thanks for starting your free trial. We added <strong>%s NCTR</strong> to your portfolio as a 90LOCK commitment.</p>
<p>Upgrade it to 360LOCK any time to count it toward your status.</p>
<p>The Garden</p>`, html.EscapeString(displayName(name)), html.EscapeString(bonus))
	return subject, body
}

func LockReleasedEmail(name, amount, category string) (string, string) {
	subject := "Your NCTR commitment has matured"
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your %s commitment of <strong>%s NCTR</strong> is complete and the amount is now available.</p>
<p>The Garden</p>`, html.EscapeString(displayName(name)), html.EscapeString(category), html.EscapeString(amount))
	return subject, body
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
