package harness

import (
	"path/filepath"
	"strings"
)

// CommandConfig holds the resolved command and arguments needed to run
// an external harness.
type CommandConfig struct {
	Binary string
	Args   []string
}

// WrapCommand returns the exec configuration for a harness target. Native
// binaries run as is; JVM jars need java -jar and Python scripts need an
// interpreter.
func WrapCommand(target string, args []string) CommandConfig {
	var prefix []string

	switch strings.ToLower(filepath.Ext(target)) {
	case ".jar":
		prefix = []string{"java", "-jar", target}
	case ".py":
		prefix = []string{"python3", target}
	default:
		return CommandConfig{
			Binary: target,
			Args:   append([]string(nil), args...),
		}
	}

	return CommandConfig{
		Binary: prefix[0],
		Args:   append(prefix[1:], args...),
	}
}
