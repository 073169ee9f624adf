package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aman-CERP/rigcheck/internal/runner"
)

// firstOutput runs commands in order and returns the first usable output
// together with the command that produced it.
func firstOutput(ctx context.Context, r runner.Runner, commands ...string) (string, string, bool) {
	for _, cmd := range commands {
		if out, ok := r.Run(ctx, cmd).Value(); ok {
			return out, cmd, true
		}
	}
	return "", "", false
}

// python builds a one-shot interpreter invocation. The interpreter is a
// single path, quoted for the shell. The script must not contain single
// quotes.
func python(s Settings, script string) string {
	return fmt.Sprintf("%s -c '%s' 2>/dev/null", shellQuote(s.Python), script)
}

// shellQuote returns word as one shell word, leaving plain paths as they are.
func shellQuote(word string) string {
	plain := word != "" && strings.IndexFunc(word, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case strings.ContainsRune("_-./+:=@%,", r):
			return false
		}
		return true
	}) < 0
	if plain {
		return word
	}
	return "'" + strings.ReplaceAll(word, "'", `'\''`) + "'"
}

// curlJSON fetches url with a short connect budget; the runner timeout
// still bounds the whole call.
func curlJSON(url string) string {
	return fmt.Sprintf("curl -sf --max-time 3 %s", url)
}

// joinURL appends path to a base URL without doubling slashes.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// formatGB renders a byte count in decimal gigabytes with one decimal.
func formatGB(bytes uint64) string {
	return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
}

// pluralize returns "1 model" / "3 models".
func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// bulletList renders items one per line with a leading dash.
func bulletList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}

// gb is a decimal gigabyte. The kernel reserves part of installed memory,
// so MemTotal in GiB reads below the size on the box (128 GB reads about
// 125.5 GiB); in decimal units it lands at or above it.
const gb = 1e9
