// Package dialect maps dialect-specific command segments onto a shared intent
// vocabulary so one rule table can judge every shell, and renders abstract
// operations back into a dialect's literal syntax.
package dialect

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// Mapper canonicalizes segments against a set of target classes.
type Mapper struct {
	targets classifier
}

var _ ports.Canonicalizer = (*Mapper)(nil)

// NewMapper builds a mapper; classes maps a class name to its glob patterns.
func NewMapper(classes map[string][]string) *Mapper {
	return &Mapper{targets: newClassifier(classes)}
}

// CanonicalizeAll canonicalizes every segment and links pipe consumers to
// their producer. A network producer taints the rest of its pipeline.
func (m *Mapper) CanonicalizeAll(segments []domain.CommandSegment) []domain.IntentTokens {
	out := make([]domain.IntentTokens, 0, len(segments))
	for i, seg := range segments {
		tokens := m.Canonicalize(seg)
		if seg.Operator == domain.OpPipe && i > 0 {
			prev := out[i-1]
			tokens.Upstream = prev.Intent
			if prev.Upstream == domain.IntentNetworkTransfer {
				tokens.Upstream = domain.IntentNetworkTransfer
			}
		}
		out = append(out, tokens)
	}
	return out
}

// Canonicalize maps one segment to intent tokens. Upstream is left empty.
func (m *Mapper) Canonicalize(seg domain.CommandSegment) domain.IntentTokens {
	tokens := domain.IntentTokens{
		Intent:          domain.IntentUnrecognized,
		Modifiers:       map[string]bool{},
		TargetClasses:   map[string]bool{},
		RedirectClasses: m.targets.classifyAll(seg.Redirects),
		Embedded:        seg.Substitutions,
		Text:            seg.Text,
		Dialect:         seg.Dialect,
	}

	if len(seg.Words) == 0 {
		switch {
		case seg.Nested != "":
			tokens.Intent = domain.IntentCompound
			tokens.Inline = seg.Nested
			tokens.InlineDialect = seg.Dialect
		case strings.TrimSpace(seg.Text) == "":
			tokens.Intent = domain.IntentEmpty
		}
		return tokens
	}

	tokens.Program = programName(seg.Words[0])
	words := unwrap(&tokens, seg.Words)
	if len(words) == 0 {
		if tokens.Elevated {
			tokens.Intent = domain.IntentPrivilegeEscalation
		} else {
			tokens.Intent = domain.IntentInspect
		}
		return tokens
	}

	program := programName(words[0])
	tokens.Program = program
	if isStatement(program, seg.Dialect) {
		tokens.Intent = domain.IntentCompound
		if seg.Nested != "" {
			tokens.Inline = seg.Nested
			tokens.InlineDialect = seg.Dialect
		}
		return tokens
	}
	// a value in command position is output, but & $cmd invokes it
	if seg.Dialect == domain.DialectPowerShell && isExpression(words[0]) && len(words) == len(seg.Words) {
		tokens.Intent = domain.IntentInspect
		return tokens
	}
	if tokens.Elevated && len(words) == 1 && isInteractiveShell(program) && seg.Operator != domain.OpPipe {
		tokens.Intent = domain.IntentPrivilegeEscalation
		return tokens
	}

	args := parseArgs(words[1:], seg.Dialect)
	tokens.Modifiers = canonicalModifiers(args, seg.Dialect)

	intent, known := lookupProgram(program)
	if !known {
		tokens.TargetClasses = m.targets.classifyAll(args.positionals)
		tokens.Targets = normalizeAll(args.positionals)
		return tokens
	}
	tokens.Intent = intent

	positionals := args.positionals
	if sub, ok := impliedSubcommands[program]; ok {
		tokens.Subcommand = sub
	} else if takesSubcommand(program, intent) && len(positionals) > 0 {
		tokens.Subcommand = strings.ToLower(positionals[0])
		positionals = positionals[1:]
	}

	targets := m.refine(&tokens, seg, words, args, positionals)
	if seg.Dialect == domain.DialectPowerShell {
		targets = append(targets, powerShellPathValues(args)...)
	}
	tokens.Targets = normalizeAll(targets)
	tokens.TargetClasses = m.targets.classifyAll(targets)
	return tokens
}

// refine applies per-intent argument grammar and returns the filesystem targets.
func (m *Mapper) refine(tokens *domain.IntentTokens, seg domain.CommandSegment, words []string, args parsedArgs, positionals []string) []string {
	program := tokens.Program
	switch tokens.Intent {
	case domain.IntentNavigate:
		if len(positionals) == 0 && seg.Dialect == domain.DialectCMD {
			tokens.Intent = domain.IntentInspect
		}
	case domain.IntentRead:
		if program == "type" && len(positionals) == 1 && strings.EqualFold(positionals[0], "nul") && len(seg.Redirects) > 0 {
			tokens.Intent = domain.IntentCreateFile
			return nil
		}
	case domain.IntentCreateFile:
		if strings.EqualFold(args.values["itemtype"], "directory") {
			tokens.Intent = domain.IntentMakeDirectory
		}
		if program == "tee" {
			for class := range m.targets.classifyAll(positionals) {
				tokens.RedirectClasses[class] = true
			}
		}
	case domain.IntentSearch:
		if program == "find" && seg.Dialect != domain.DialectCMD && seg.Dialect != domain.DialectPowerShell {
			return findActions(tokens, words[1:])
		}
	case domain.IntentDiskWrite:
		return ddTargets(words[1:])
	case domain.IntentWipe:
		if program == "cipher" {
			if !args.has("w") {
				tokens.Intent = domain.IntentInspect
				return positionals
			}
			if dir := args.values["w"]; dir != "" {
				return []string{dir}
			}
		}
	case domain.IntentPermissionChange:
		return permissionTargets(tokens, args, positionals)
	case domain.IntentNetworkTransfer:
		if isUpload(program, args, positionals) {
			tokens.Modifiers[domain.ModUpload] = true
		}
		return withoutURLs(positionals)
	case domain.IntentScriptExec:
		return scriptExec(tokens, words[1:], args, positionals)
	case domain.IntentPrivilegeEscalation:
		if body, ok := shellInline(words[1:]); ok {
			tokens.Inline = body
			tokens.InlineDialect = domain.DialectBash
		}
		return nil
	case domain.IntentSystemConfig, domain.IntentRegistryEdit, domain.IntentContainer:
		if readOnly(program, tokens.Subcommand, args, positionals) {
			tokens.Intent = domain.IntentInspect
		}
	case domain.IntentVersionControl:
		if args.has("D") || (tokens.Subcommand == "push" && hasForcedRefspec(positionals)) {
			tokens.Modifiers[domain.ModForce] = true
		}
		if tokens.Subcommand == "clean" && args.has("n") {
			tokens.Modifiers[domain.ModDryRun] = true
		}
	}
	return positionals
}

// unwrap strips launcher prefixes such as sudo, env, nohup and Start-Process.
func unwrap(tokens *domain.IntentTokens, words []string) []string {
	for len(words) > 0 {
		name := programName(words[0])
		switch name {
		case "sudo", "doas":
			tokens.Elevated = true
			words = skipFlags(words[1:], "u", "g", "h", "p", "C", "U", "r", "t", "D", "T")
		case "nohup", "command", "exec", "builtin", "stdbuf", "time", "call", "&":
			words = skipFlags(words[1:])
		case "nice", "ionice":
			words = skipFlags(words[1:], "n", "c")
		case "xargs":
			words = skipFlags(words[1:], "n", "I", "d", "P", "L", "s", "E", "a")
		case "timeout":
			words = skipFlags(words[1:], "s", "k")
			if len(words) > 0 {
				words = words[1:]
			}
		case "env":
			rest := skipFlags(words[1:], "u", "C", "S")
			for len(rest) > 0 && strings.Contains(rest[0], "=") {
				rest = rest[1:]
			}
			if len(rest) == 0 {
				return words
			}
			words = rest
		case "python", "python3", "py":
			if len(words) > 2 && words[1] == "-m" {
				words = words[2:]
				continue
			}
			return words
		case "start":
			if tokens.Dialect != domain.DialectCMD {
				return words
			}
			rest := words[1:]
			for len(rest) > 0 && (rest[0] == "" || isCMDSwitch(rest[0])) {
				rest = rest[1:]
			}
			words = rest
		case "runas":
			tokens.Elevated = true
			args := parseCMDArgs(words[1:])
			if len(args.positionals) > 0 {
				tokens.Inline = args.positionals[len(args.positionals)-1]
				tokens.InlineDialect = domain.DialectCMD
			}
			return nil
		case "start-process", "saps":
			return startProcess(tokens, words)
		case "if", "while", "not", "else", "begin", "end":
			// Fish runs the condition as an ordinary command
			if tokens.Dialect != domain.DialectFish {
				return words
			}
			words = words[1:]
		default:
			if tokens.Dialect == domain.DialectPowerShell && isExpression(words[0]) && len(words) > 2 && isAssignment(words[1]) {
				words = words[2:]
				continue
			}
			return words
		}
	}
	return words
}

// startProcess rewrites Start-Process into the command it launches.
func startProcess(tokens *domain.IntentTokens, words []string) []string {
	args := parsePowerShellArgs(words[1:])
	if strings.EqualFold(args.values["verb"], "runas") {
		tokens.Elevated = true
	}
	positionals := args.positionals
	file := args.values["filepath"]
	if file == "" && len(positionals) > 0 {
		file, positionals = positionals[0], positionals[1:]
	}
	if file == "" {
		return words
	}
	argList := args.values["argumentlist"]
	if argList == "" && len(positionals) > 0 {
		argList = positionals[0]
	}
	out := []string{file}
	for _, field := range strings.FieldsFunc(argList, func(r rune) bool { return r == ',' || r == ' ' }) {
		out = append(out, strings.Trim(field, `"'`))
	}
	return out
}

// skipFlags drops leading flags; names listed in valued consume the next word.
func skipFlags(words []string, valued ...string) []string {
	for len(words) > 0 && strings.HasPrefix(words[0], "-") && len(words[0]) > 1 {
		flag := words[0]
		words = words[1:]
		if flag == "--" {
			break
		}
		if len(flag) == 2 && len(words) > 0 {
			for _, name := range valued {
				if flag[1:] == name {
					words = words[1:]
					break
				}
			}
		}
	}
	return words
}

// readOnly recognizes configuration tools invoked only to report state.
func readOnly(program, subcommand string, args parsedArgs, positionals []string) bool {
	if readOnlySubcommands[program][subcommand] {
		return true
	}
	switch program {
	case "sysctl":
		if args.has("w") {
			return false
		}
		for _, p := range positionals {
			if strings.Contains(p, "=") {
				return false
			}
		}
		return true
	case "crontab":
		return args.has("l")
	case "mount":
		return len(positionals) == 0 && (len(args.flags) == 0 || (len(args.flags) == 1 && args.has("l")))
	case "reg", "systemctl":
		return subcommand == "" && len(args.flags) == 0
	}
	return false
}

func takesSubcommand(program string, intent domain.Intent) bool {
	switch intent {
	case domain.IntentPackageManage, domain.IntentVersionControl, domain.IntentContainer:
		return true
	}
	switch program {
	case "reg", "systemctl", "launchctl", "sc", "net", "netsh", "vssadmin", "wevtutil", "ufw", "bcdedit":
		return true
	}
	return false
}

func isInteractiveShell(program string) bool {
	if _, ok := inlineShells[program]; ok {
		return true
	}
	switch program {
	case "powershell", "pwsh", "cmd", "su":
		return true
	}
	return false
}

func ddTargets(args []string) []string {
	var out []string
	for _, arg := range args {
		if value, ok := strings.CutPrefix(arg, "of="); ok {
			out = append(out, value)
		}
	}
	return out
}

func permissionTargets(tokens *domain.IntentTokens, args parsedArgs, positionals []string) []string {
	switch tokens.Program {
	case "chmod":
		if len(positionals) == 0 {
			return nil
		}
		if worldWritableMode(positionals[0]) {
			tokens.Modifiers[domain.ModWorldWritable] = true
		}
		return positionals[1:]
	case "chown", "chgrp":
		if len(positionals) == 0 {
			return nil
		}
		return positionals[1:]
	case "icacls", "cacls":
		var out []string
		for _, p := range positionals {
			if isGrant(p) {
				if worldGrant(p) {
					tokens.Modifiers[domain.ModWorldWritable] = true
				}
				continue
			}
			out = append(out, p)
		}
		if grant := args.values["grant"]; grant != "" && worldGrant(grant) {
			tokens.Modifiers[domain.ModWorldWritable] = true
		}
		return out
	}
	return positionals
}

// worldWritableMode recognizes octal modes with the other-write bit and
// symbolic modes granting write to others.
func worldWritableMode(mode string) bool {
	if len(mode) >= 3 && len(mode) <= 4 && isOctal(mode) {
		return (mode[len(mode)-1]-'0')&2 != 0
	}
	for _, clause := range strings.Split(mode, ",") {
		idx := strings.IndexAny(clause, "+=")
		if idx < 0 {
			continue
		}
		who, perms := clause[:idx], clause[idx+1:]
		if strings.Trim(who, "ugoa") != "" {
			continue
		}
		if (who == "" || strings.ContainsAny(who, "oa")) && strings.Contains(perms, "w") {
			return true
		}
	}
	return false
}

func isOctal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}
	return true
}

// isGrant reports an icacls principal:permission entry (not a drive path).
func isGrant(arg string) bool {
	idx := strings.Index(arg, ":")
	return idx > 1
}

func worldGrant(grant string) bool {
	principal, perms, ok := strings.Cut(strings.ToLower(grant), ":")
	if !ok {
		return false
	}
	principal = strings.TrimSpace(principal)
	if principal != "everyone" && principal != "*s-1-1-0" && principal != "users" {
		return false
	}
	perms = strings.NewReplacer("(oi)", "", "(ci)", "", "(io)", "", "(np)", "").Replace(perms)
	return strings.ContainsAny(perms, "fmw")
}

var uploadLongFlags = map[string]bool{
	"data": true, "data-binary": true, "data-raw": true, "data-urlencode": true, "form": true,
	"form-string": true, "upload-file": true, "json": true, "post-file": true, "post-data": true,
	"body-file": true, "body-data": true,
}

func isUpload(program string, args parsedArgs, positionals []string) bool {
	for _, flag := range args.flags {
		if uploadLongFlags[flag] {
			return true
		}
	}
	switch program {
	case "curl":
		return args.has("d") || args.has("F") || args.has("T")
	case "invoke-webrequest", "iwr", "invoke-restmethod", "irm":
		switch strings.ToLower(args.values["method"]) {
		case "post", "put", "patch":
			return true
		}
		return args.values["infile"] != "" || args.has("body")
	case "scp", "rsync":
		return len(positionals) > 1 && isRemoteSpec(positionals[len(positionals)-1])
	case "nc", "ncat":
		return !args.has("l")
	}
	return false
}

// isRemoteSpec recognizes host:path destinations.
func isRemoteSpec(arg string) bool {
	idx := strings.Index(arg, ":")
	return idx > 1 && !strings.Contains(arg, "://")
}

func withoutURLs(args []string) []string {
	var out []string
	for _, arg := range args {
		if strings.Contains(arg, "://") || isRemoteSpec(arg) {
			continue
		}
		out = append(out, arg)
	}
	return out
}

func hasForcedRefspec(positionals []string) bool {
	for _, p := range positionals {
		if strings.HasPrefix(p, "+") {
			return true
		}
	}
	return false
}

// scriptExec extracts inline scripts from interpreters and shells.
func scriptExec(tokens *domain.IntentTokens, raw []string, args parsedArgs, positionals []string) []string {
	program := tokens.Program
	if inlineDialect, ok := inlineShells[program]; ok {
		if body, found := shellInline(raw); found {
			tokens.Inline = body
			tokens.InlineDialect = inlineDialect
			tokens.Modifiers["inline"] = true
			return nil
		}
		if len(positionals) == 0 {
			tokens.Modifiers["stdin"] = true
		}
		return positionals
	}

	switch program {
	case "powershell", "pwsh":
		for i, arg := range raw {
			name := strings.ToLower(strings.TrimLeft(arg, "-/"))
			if !strings.HasPrefix(arg, "-") || name == "" {
				continue
			}
			switch {
			case strings.HasPrefix("command", name):
				tokens.Inline = strings.Join(raw[i+1:], " ")
				tokens.InlineDialect = domain.DialectPowerShell
				tokens.Modifiers["inline"] = true
				return nil
			case len(name) >= 2 && strings.HasPrefix("encodedcommand", name):
				tokens.Modifiers["encoded"] = true
				return nil
			}
		}
		if len(raw) == 0 {
			tokens.Modifiers["stdin"] = true
		}
	case "cmd":
		for i, arg := range raw {
			switch strings.ToLower(arg) {
			case "/c", "/k", "/r":
				tokens.Inline = strings.Join(raw[i+1:], " ")
				tokens.InlineDialect = domain.DialectCMD
				tokens.Modifiers["inline"] = true
				return nil
			}
		}
	case "iex", "invoke-expression":
		tokens.Modifiers["dynamic"] = true
		if len(positionals) > 0 {
			tokens.Inline = strings.Join(positionals, " ")
			tokens.InlineDialect = domain.DialectPowerShell
		}
		return nil
	case "invoke-command", "icm":
		if block := args.values["scriptblock"]; block != "" {
			tokens.Inline = strings.TrimSpace(strings.Trim(block, "{}"))
			tokens.InlineDialect = domain.DialectPowerShell
			tokens.Modifiers["inline"] = true
		}
		return nil
	case "eval":
		tokens.Modifiers["dynamic"] = true
		if len(positionals) > 0 {
			tokens.Inline = strings.Join(positionals, " ")
			tokens.InlineDialect = tokens.Dialect
		}
		return nil
	default:
		if args.has("c") || args.has("e") {
			tokens.Modifiers["inline-code"] = true
			return nil
		}
		if len(positionals) == 0 {
			tokens.Modifiers["stdin"] = true
		}
	}
	return positionals
}

// findActions applies find's action primaries. -delete turns the search
// into a recursive delete of its roots; -exec style commands become the
// inline body, one per line.
func findActions(tokens *domain.IntentTokens, raw []string) []string {
	// find's primaries are words, not clusters of short flags
	tokens.Modifiers = map[string]bool{}
	i := 0
	for i < len(raw) && (raw[i] == "-H" || raw[i] == "-L" || raw[i] == "-P") {
		i++
	}
	var roots []string
	for ; i < len(raw); i++ {
		if strings.HasPrefix(raw[i], "-") || raw[i] == "(" || raw[i] == "!" {
			break
		}
		roots = append(roots, raw[i])
	}
	if len(roots) == 0 {
		roots = []string{"."}
	}

	var bodies []string
	for ; i < len(raw); i++ {
		switch raw[i] {
		case "-delete":
			tokens.Intent = domain.IntentDelete
			tokens.Modifiers[domain.ModRecursive] = true
		case "-exec", "-execdir", "-ok", "-okdir":
			end := i + 1
			for end < len(raw) && raw[end] != ";" && raw[end] != "+" {
				end++
			}
			if body := quoteWords(raw[i+1 : end]); body != "" {
				bodies = append(bodies, body)
			}
			i = end
		}
	}
	if len(bodies) > 0 {
		tokens.Inline = strings.Join(bodies, "\n")
		tokens.InlineDialect = domain.DialectBash
	}
	return roots
}

// quoteWords joins argv back into shell source, quoting where needed.
func quoteWords(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, word := range words {
		if q, err := syntax.Quote(word, syntax.LangBash); err == nil {
			word = q
		}
		quoted = append(quoted, word)
	}
	return strings.Join(quoted, " ")
}

// isStatement reports PowerShell, CMD and Fish statement keywords and bare
// groupings; their bodies arrive through Nested and Substitutions.
func isStatement(program string, dialect domain.ShellDialect) bool {
	if dialect.IsPOSIX() {
		return false
	}
	if strings.HasPrefix(program, "(") || strings.HasPrefix(program, "{") {
		return true
	}
	return statementKeywords[program]
}

// isExpression recognizes PowerShell statements that start with a value
// rather than a command name.
func isExpression(word string) bool {
	return strings.HasPrefix(word, "$") || isNumeric(word)
}

func isAssignment(word string) bool {
	switch word {
	case "=", "+=", "-=", "*=", "/=", "%=", "??=":
		return true
	}
	return false
}

// shellInline finds the body following -c (or a cluster containing c).
func shellInline(args []string) (string, bool) {
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") && strings.Contains(arg[1:], "c") {
			if i+1 < len(args) {
				return args[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

func powerShellPathValues(args parsedArgs) []string {
	var out []string
	for _, name := range psPathParamOrder {
		value := args.values[name]
		if value == "" {
			continue
		}
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func normalizeAll(targets []string) []string {
	if len(targets) == 0 {
		return nil
	}
	out := make([]string, 0, len(targets))
	for _, target := range targets {
		if normalized := NormalizePath(target); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}
