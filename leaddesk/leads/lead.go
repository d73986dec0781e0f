package leads

import (
	"fmt"
	"strings"
)

// Lead is one contact record handed out to callers. The pool is fixed in
// config; the bot never mutates it.
type Lead struct {
	Name  string `toml:"name"`
	Phone string `toml:"phone"`
	Email string `toml:"email"`
}

// FormatPool renders the lead list as a single numbered message body.
func FormatPool(pool []Lead) string {
	var sb strings.Builder
	for i, lead := range pool {
		sb.WriteString(fmt.Sprintf("**%d. %s**\nPhone: %s\nEmail: %s\n", i+1, lead.Name, lead.Phone, lead.Email))
		if i < len(pool)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
