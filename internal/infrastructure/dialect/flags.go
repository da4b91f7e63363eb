package dialect

import (
	"strings"

	"github.com/doeshing/aiterm/internal/domain"
)

// parsedArgs separates a segment's arguments into flags and positionals.
type parsedArgs struct {
	// flags holds raw flag names without their prefix; long and Windows
	// names are lower-cased, POSIX short letters keep their case.
	flags []string
	// values holds flag values keyed by the same names as flags.
	values      map[string]string
	positionals []string
}

func (p parsedArgs) has(name string) bool {
	for _, flag := range p.flags {
		if flag == name {
			return true
		}
	}
	return false
}

// PowerShell parameters that take a value; the value is consumed with them.
var psValueParams = map[string]bool{
	"path": true, "literalpath": true, "destination": true, "filter": true, "include": true,
	"exclude": true, "itemtype": true, "name": true, "value": true, "uri": true, "outfile": true,
	"infile": true, "method": true, "body": true, "verb": true, "filepath": true, "argumentlist": true,
	"id": true, "processname": true, "pattern": true, "encoding": true, "executionpolicy": true,
	"scope": true, "command": true, "encodedcommand": true, "credential": true, "driveletter": true,
	"filesystem": true, "newname": true, "type": true, "propertytype": true, "headers": true,
	"file": true, "scriptblock": true, "computername": true, "number": true, "first": true,
	"last": true, "depth": true, "delimiter": true, "aclobject": true,
}

// PowerShell parameters whose value names a filesystem or registry location.
var psPathParamOrder = []string{"path", "literalpath", "destination", "outfile", "filepath"}

// PowerShell switch parameters accept unambiguous prefixes; each entry lists
// the shortest accepted prefix length.
var psSwitches = []struct {
	name     string
	min      int
	modifier string
}{
	{"recurse", 1, domain.ModRecursive},
	{"force", 2, domain.ModForce},
	{"whatif", 1, domain.ModDryRun},
	{"confirm", 2, domain.ModInteractive},
}

// POSIX short flags with a dialect-wide meaning.
var posixShortModifiers = map[byte]string{
	'r': domain.ModRecursive,
	'R': domain.ModRecursive,
	'f': domain.ModForce,
	'i': domain.ModInteractive,
}

var posixLongModifiers = map[string]string{
	"recursive":   domain.ModRecursive,
	"force":       domain.ModForce,
	"dry-run":     domain.ModDryRun,
	"interactive": domain.ModInteractive,
}

// CMD switches with a dialect-wide meaning.
var cmdModifiers = map[string]string{
	"s": domain.ModRecursive,
	"q": domain.ModForce,
	"f": domain.ModForce,
	"y": domain.ModForce,
	"p": domain.ModInteractive,
}

func parseArgs(args []string, dialect domain.ShellDialect) parsedArgs {
	switch dialect {
	case domain.DialectPowerShell:
		return parsePowerShellArgs(args)
	case domain.DialectCMD:
		return parseCMDArgs(args)
	default:
		return parsePOSIXArgs(args)
	}
}

func parsePOSIXArgs(args []string) parsedArgs {
	out := parsedArgs{values: map[string]string{}}
	for i, arg := range args {
		switch {
		case arg == "--":
			out.positionals = append(out.positionals, args[i+1:]...)
			return out
		case strings.HasPrefix(arg, "--") && len(arg) > 2:
			name, value, hasValue := strings.Cut(arg[2:], "=")
			name = strings.ToLower(name)
			out.flags = append(out.flags, name)
			if hasValue {
				out.values[name] = value
			}
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			for j := 1; j < len(arg); j++ {
				out.flags = append(out.flags, arg[j:j+1])
			}
		default:
			out.positionals = append(out.positionals, arg)
		}
	}
	return out
}

func parsePowerShellArgs(args []string) parsedArgs {
	out := parsedArgs{values: map[string]string{}}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || len(arg) < 2 || isNumeric(arg[1:]) {
			out.positionals = append(out.positionals, arg)
			continue
		}
		name, value, hasValue := strings.Cut(strings.ToLower(arg[1:]), ":")
		out.flags = append(out.flags, name)
		switch {
		case hasValue:
			out.values[name] = value
		case psValueParams[name] && i+1 < len(args):
			i++
			out.values[name] = args[i]
		}
	}
	return out
}

func parseCMDArgs(args []string) parsedArgs {
	out := parsedArgs{values: map[string]string{}}
	for _, arg := range args {
		if !isCMDSwitch(arg) {
			out.positionals = append(out.positionals, arg)
			continue
		}
		name, value, hasValue := strings.Cut(strings.ToLower(arg[1:]), ":")
		out.flags = append(out.flags, name)
		if hasValue {
			out.values[name] = value
		}
	}
	return out
}

// isCMDSwitch accepts /x, /word and /x:value; a second slash or backslash
// makes it a path.
func isCMDSwitch(arg string) bool {
	if len(arg) < 2 || (arg[0] != '/' && arg[0] != '-') {
		return false
	}
	head, _, _ := strings.Cut(arg[1:], ":")
	if head == "" || strings.ContainsAny(head, `/\.`) {
		return false
	}
	if arg[0] == '-' && len(head) > 1 {
		return true
	}
	c := head[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '?'
}

// canonicalModifiers returns the raw flag names plus their canonical meaning.
func canonicalModifiers(args parsedArgs, dialect domain.ShellDialect) map[string]bool {
	mods := make(map[string]bool, len(args.flags))
	for _, flag := range args.flags {
		mods[flag] = true
		switch dialect {
		case domain.DialectPowerShell:
			for _, sw := range psSwitches {
				if len(flag) >= sw.min && strings.HasPrefix(sw.name, flag) {
					mods[sw.modifier] = true
				}
			}
		case domain.DialectCMD:
			if mod, ok := cmdModifiers[flag]; ok {
				mods[mod] = true
			}
		default:
			if len(flag) == 1 {
				if mod, ok := posixShortModifiers[flag[0]]; ok {
					mods[mod] = true
				}
			} else if mod, ok := posixLongModifiers[flag]; ok {
				mods[mod] = true
			}
		}
	}
	return mods
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
