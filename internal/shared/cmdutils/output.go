package cmdutils

import (
	"fmt"
	"io"
)

const logo = "🐬"

// PrintResponse writes a bot reply under the bot's name. Empty replies
// print nothing.
func PrintResponse(w io.Writer, name, text string) {
	if text == "" {
		return
	}

	fmt.Fprintf(w, "\n%s %s\n%s\n\n", logo, name, text)
}
