package domain

import "sort"

// CandidateCommand is raw command text produced by a generator for one dialect.
type CandidateCommand struct {
	Text        string
	Dialect     ShellDialect
	Explanation string
	Source      string
}

// ChainOperator links a segment to the one before it.
type ChainOperator string

const (
	OpNone       ChainOperator = ""
	OpSequential ChainOperator = "sequential"
	OpAnd        ChainOperator = "and"
	OpOr         ChainOperator = "or"
	OpPipe       ChainOperator = "pipe"
)

// Symbol returns the conventional spelling used when rendering a chain.
func (o ChainOperator) Symbol() string {
	switch o {
	case OpSequential:
		return ";"
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpPipe:
		return "|"
	default:
		return ""
	}
}

// CommandSegment is one unit of a possibly compound command.
type CommandSegment struct {
	Index     int
	Text      string
	Words     []string
	Redirects []string
	Operator  ChainOperator
	Dialect   ShellDialect
	// Nested holds the source of the bodies a compound command runs: a
	// subshell, block, function, loop, conditional or script block.
	Nested string
	// Substitutions holds the source of command substitutions and
	// subexpressions embedded in the segment's words.
	Substitutions []string
}

// Intent is a dialect-agnostic description of what a segment does.
type Intent string

const (
	IntentUnrecognized        Intent = "unrecognized"
	IntentEmpty               Intent = "empty"
	IntentList                Intent = "list"
	IntentNavigate            Intent = "navigate"
	IntentRead                Intent = "read"
	IntentSearch              Intent = "search"
	IntentInspect             Intent = "inspect"
	IntentMakeDirectory       Intent = "make-directory"
	IntentCreateFile          Intent = "create-file"
	IntentCopy                Intent = "copy"
	IntentMove                Intent = "move"
	IntentDelete              Intent = "delete"
	IntentFormatDevice        Intent = "format-device"
	IntentDiskWrite           Intent = "disk-write"
	IntentWipe                Intent = "wipe"
	IntentPermissionChange    Intent = "permission-change"
	IntentProcessKill         Intent = "process-kill"
	IntentNetworkTransfer     Intent = "network-transfer"
	IntentScriptExec          Intent = "script-exec"
	IntentPrivilegeEscalation Intent = "privilege-escalation"
	IntentRegistryEdit        Intent = "registry-edit"
	IntentSystemConfig        Intent = "system-config"
	IntentPackageManage       Intent = "package-manage"
	IntentPower               Intent = "power"
	IntentVersionControl      Intent = "version-control"
	IntentContainer           Intent = "container"
	IntentEditor              Intent = "editor"
	IntentCompound            Intent = "compound"
)

// AllIntents lists every intent the mapper can produce.
func AllIntents() []Intent {
	return []Intent{
		IntentUnrecognized, IntentEmpty, IntentList, IntentNavigate, IntentRead, IntentSearch,
		IntentInspect, IntentMakeDirectory, IntentCreateFile, IntentCopy, IntentMove, IntentDelete,
		IntentFormatDevice, IntentDiskWrite, IntentWipe, IntentPermissionChange, IntentProcessKill,
		IntentNetworkTransfer, IntentScriptExec, IntentPrivilegeEscalation, IntentRegistryEdit,
		IntentSystemConfig, IntentPackageManage, IntentPower, IntentVersionControl, IntentEditor,
		IntentContainer, IntentCompound,
	}
}

// KnownIntent reports whether value names an intent.
func KnownIntent(value string) bool {
	for _, intent := range AllIntents() {
		if string(intent) == value {
			return true
		}
	}
	return false
}

// Common modifier names produced by flag canonicalization.
const (
	ModRecursive     = "recursive"
	ModForce         = "force"
	ModDryRun        = "dry-run"
	ModUpload        = "upload"
	ModWorldWritable = "world-writable"
	ModInteractive   = "interactive"
)

// Built-in target classes; others come from the rule table.
const (
	TargetWildcard = "wildcard"
	TargetOther    = "other"
)

// IntentTokens is the canonical, dialect-free form of a segment used for classification.
type IntentTokens struct {
	Intent          Intent
	Program         string
	Subcommand      string
	Modifiers       map[string]bool
	Targets         []string
	TargetClasses   map[string]bool
	RedirectClasses map[string]bool
	Elevated        bool
	Upstream        Intent
	Inline          string
	InlineDialect   ShellDialect
	Embedded        []string // substitution bodies, in Dialect
	Text            string
	Dialect         ShellDialect
}

// Has reports whether the modifier is present.
func (t IntentTokens) Has(modifier string) bool {
	return t.Modifiers[modifier]
}

// ModifierList returns modifiers sorted for stable output.
func (t IntentTokens) ModifierList() []string {
	return sortedKeys(t.Modifiers)
}

// ClassList returns target classes sorted for stable output.
func (t IntentTokens) ClassList() []string {
	return sortedKeys(t.TargetClasses)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for key, ok := range m {
		if ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
