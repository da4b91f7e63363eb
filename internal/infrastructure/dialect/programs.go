package dialect

import (
	"strings"

	"github.com/doeshing/aiterm/internal/domain"
)

// programIntents maps lower-cased program names (and PowerShell cmdlets/aliases)
// to intents. Names are shared across dialects: PowerShell aliases rm/ls/cat, and
// CMD builtins never collide with a different meaning elsewhere.
var programIntents = map[string]domain.Intent{
	// listing and navigation
	"ls": domain.IntentList, "dir": domain.IntentList, "get-childitem": domain.IntentList,
	"gci": domain.IntentList, "tree": domain.IntentList, "exa": domain.IntentList, "eza": domain.IntentList,
	"cd": domain.IntentNavigate, "chdir": domain.IntentNavigate, "pushd": domain.IntentNavigate,
	"popd": domain.IntentNavigate, "set-location": domain.IntentNavigate, "sl": domain.IntentNavigate,

	// reading and searching
	"cat": domain.IntentRead, "type": domain.IntentRead, "get-content": domain.IntentRead, "gc": domain.IntentRead,
	"head": domain.IntentRead, "tail": domain.IntentRead, "less": domain.IntentRead, "more": domain.IntentRead,
	"bat": domain.IntentRead, "wc": domain.IntentRead, "sort": domain.IntentRead, "uniq": domain.IntentRead,
	"grep": domain.IntentSearch, "egrep": domain.IntentSearch, "rg": domain.IntentSearch, "find": domain.IntentSearch,
	"findstr": domain.IntentSearch, "select-string": domain.IntentSearch, "sls": domain.IntentSearch,
	"where": domain.IntentSearch, "locate": domain.IntentSearch, "fd": domain.IntentSearch, "awk": domain.IntentSearch,

	// read-only inspection
	"echo": domain.IntentInspect, "printf": domain.IntentInspect, "pwd": domain.IntentInspect,
	"whoami": domain.IntentInspect, "id": domain.IntentInspect, "uname": domain.IntentInspect,
	"hostname": domain.IntentInspect, "date": domain.IntentInspect, "uptime": domain.IntentInspect,
	"ps": domain.IntentInspect, "top": domain.IntentInspect, "htop": domain.IntentInspect,
	"df": domain.IntentInspect, "du": domain.IntentInspect, "free": domain.IntentInspect,
	"env": domain.IntentInspect, "printenv": domain.IntentInspect, "which": domain.IntentInspect,
	"whereis": domain.IntentInspect, "clear": domain.IntentInspect, "cls": domain.IntentInspect,
	"clear-host": domain.IntentInspect, "history": domain.IntentInspect, "man": domain.IntentInspect,
	"ping": domain.IntentInspect, "netstat": domain.IntentInspect, "ss": domain.IntentInspect,
	"ifconfig": domain.IntentInspect, "ipconfig": domain.IntentInspect, "nslookup": domain.IntentInspect,
	"dig": domain.IntentInspect, "tasklist": domain.IntentInspect, "systeminfo": domain.IntentInspect,
	"ver": domain.IntentInspect, "vol": domain.IntentInspect, "set": domain.IntentInspect,
	"get-process": domain.IntentInspect, "gps": domain.IntentInspect, "get-location": domain.IntentInspect,
	"get-computerinfo": domain.IntentInspect, "get-psdrive": domain.IntentInspect, "get-service": domain.IntentInspect,
	"write-output": domain.IntentInspect, "write-host": domain.IntentInspect, "get-date": domain.IntentInspect,
	"get-help": domain.IntentInspect, "get-command": domain.IntentInspect, "test-path": domain.IntentInspect,
	"test-connection": domain.IntentInspect, "true": domain.IntentInspect, "false": domain.IntentInspect,
	"sleep": domain.IntentInspect, "start-sleep": domain.IntentInspect,
	"jq": domain.IntentInspect, "diff": domain.IntentInspect, "file": domain.IntentInspect, "stat": domain.IntentInspect,
	"lsblk": domain.IntentInspect, "foreach-object": domain.IntentInspect, "%": domain.IntentInspect,
	"where-object": domain.IntentInspect, "?": domain.IntentInspect, "select-object": domain.IntentInspect,
	"sort-object": domain.IntentInspect, "measure-object": domain.IntentInspect, "format-table": domain.IntentInspect,
	"ft": domain.IntentInspect, "format-list": domain.IntentInspect, "fl": domain.IntentInspect,
	"out-string": domain.IntentInspect, "out-host": domain.IntentInspect, "join-path": domain.IntentInspect,
	"split-path": domain.IntentInspect, "resolve-path": domain.IntentInspect, "get-item": domain.IntentInspect,

	// additive file operations
	"mkdir": domain.IntentMakeDirectory, "md": domain.IntentMakeDirectory,
	"touch": domain.IntentCreateFile, "tee": domain.IntentCreateFile, "new-item": domain.IntentCreateFile, "ni": domain.IntentCreateFile,
	"cp": domain.IntentCopy, "copy": domain.IntentCopy, "xcopy": domain.IntentCopy, "robocopy": domain.IntentCopy,
	"copy-item": domain.IntentCopy, "cpi": domain.IntentCopy,
	"mv": domain.IntentMove, "move": domain.IntentMove, "ren": domain.IntentMove, "rename": domain.IntentMove,
	"move-item": domain.IntentMove, "mi": domain.IntentMove, "rename-item": domain.IntentMove,

	// destructive file operations
	"rm": domain.IntentDelete, "rmdir": domain.IntentDelete, "rd": domain.IntentDelete, "del": domain.IntentDelete,
	"erase": domain.IntentDelete, "remove-item": domain.IntentDelete, "ri": domain.IntentDelete,
	"unlink": domain.IntentDelete, "trash": domain.IntentDelete,
	"format": domain.IntentFormatDevice, "format-volume": domain.IntentFormatDevice, "clear-disk": domain.IntentFormatDevice,
	"diskpart": domain.IntentFormatDevice, "wipefs": domain.IntentFormatDevice, "fdisk": domain.IntentFormatDevice,
	"parted": domain.IntentFormatDevice, "initialize-disk": domain.IntentFormatDevice,
	"dd": domain.IntentDiskWrite,
	"shred": domain.IntentWipe, "cipher": domain.IntentWipe, "srm": domain.IntentWipe,

	// permissions and processes
	"chmod": domain.IntentPermissionChange, "chown": domain.IntentPermissionChange, "chgrp": domain.IntentPermissionChange,
	"icacls": domain.IntentPermissionChange, "cacls": domain.IntentPermissionChange, "takeown": domain.IntentPermissionChange,
	"attrib": domain.IntentPermissionChange, "set-acl": domain.IntentPermissionChange,
	"kill": domain.IntentProcessKill, "pkill": domain.IntentProcessKill, "killall": domain.IntentProcessKill,
	"taskkill": domain.IntentProcessKill, "stop-process": domain.IntentProcessKill, "spps": domain.IntentProcessKill,

	// network
	"curl": domain.IntentNetworkTransfer, "wget": domain.IntentNetworkTransfer, "invoke-webrequest": domain.IntentNetworkTransfer,
	"iwr": domain.IntentNetworkTransfer, "invoke-restmethod": domain.IntentNetworkTransfer, "irm": domain.IntentNetworkTransfer,
	"bitsadmin": domain.IntentNetworkTransfer, "certutil": domain.IntentNetworkTransfer, "scp": domain.IntentNetworkTransfer,
	"rsync": domain.IntentNetworkTransfer, "nc": domain.IntentNetworkTransfer, "ncat": domain.IntentNetworkTransfer,
	"ftp": domain.IntentNetworkTransfer, "sftp": domain.IntentNetworkTransfer, "start-bitstransfer": domain.IntentNetworkTransfer,

	// interpreters
	"sh": domain.IntentScriptExec, "bash": domain.IntentScriptExec, "zsh": domain.IntentScriptExec,
	"fish": domain.IntentScriptExec, "dash": domain.IntentScriptExec, "ksh": domain.IntentScriptExec,
	"python": domain.IntentScriptExec, "python3": domain.IntentScriptExec, "py": domain.IntentScriptExec,
	"node": domain.IntentScriptExec, "perl": domain.IntentScriptExec, "ruby": domain.IntentScriptExec,
	"php": domain.IntentScriptExec, "iex": domain.IntentScriptExec, "invoke-expression": domain.IntentScriptExec,
	"powershell": domain.IntentScriptExec, "pwsh": domain.IntentScriptExec, "cmd": domain.IntentScriptExec,
	"source": domain.IntentScriptExec, ".": domain.IntentScriptExec, "eval": domain.IntentScriptExec,
	"cscript": domain.IntentScriptExec, "wscript": domain.IntentScriptExec, "mshta": domain.IntentScriptExec,
	"invoke-command": domain.IntentScriptExec, "icm": domain.IntentScriptExec,

	// privilege
	"su": domain.IntentPrivilegeEscalation,

	// registry and system configuration
	"reg": domain.IntentRegistryEdit, "regedit": domain.IntentRegistryEdit, "set-itemproperty": domain.IntentRegistryEdit,
	"sp": domain.IntentRegistryEdit, "new-itemproperty": domain.IntentRegistryEdit, "remove-itemproperty": domain.IntentRegistryEdit,
	"sysctl": domain.IntentSystemConfig, "bcdedit": domain.IntentSystemConfig, "systemctl": domain.IntentSystemConfig,
	"service": domain.IntentSystemConfig, "launchctl": domain.IntentSystemConfig, "setx": domain.IntentSystemConfig,
	"set-executionpolicy": domain.IntentSystemConfig, "crontab": domain.IntentSystemConfig, "sc": domain.IntentSystemConfig,
	"vssadmin": domain.IntentSystemConfig, "wevtutil": domain.IntentSystemConfig, "netsh": domain.IntentSystemConfig,
	"iptables": domain.IntentSystemConfig, "ufw": domain.IntentSystemConfig, "usermod": domain.IntentSystemConfig,
	"useradd": domain.IntentSystemConfig, "userdel": domain.IntentSystemConfig, "passwd": domain.IntentSystemConfig,
	"net": domain.IntentSystemConfig, "stop-service": domain.IntentSystemConfig, "set-service": domain.IntentSystemConfig,
	"umount": domain.IntentSystemConfig, "swapoff": domain.IntentSystemConfig, "chattr": domain.IntentSystemConfig,
	"mount": domain.IntentSystemConfig,

	// packages
	"pip": domain.IntentPackageManage, "pip3": domain.IntentPackageManage, "conda": domain.IntentPackageManage,
	"mamba": domain.IntentPackageManage, "poetry": domain.IntentPackageManage, "pipenv": domain.IntentPackageManage,
	"uv": domain.IntentPackageManage, "npm": domain.IntentPackageManage, "yarn": domain.IntentPackageManage,
	"pnpm": domain.IntentPackageManage, "apt": domain.IntentPackageManage, "apt-get": domain.IntentPackageManage,
	"yum": domain.IntentPackageManage, "dnf": domain.IntentPackageManage, "pacman": domain.IntentPackageManage,
	"zypper": domain.IntentPackageManage, "apk": domain.IntentPackageManage, "brew": domain.IntentPackageManage,
	"port": domain.IntentPackageManage, "choco": domain.IntentPackageManage, "winget": domain.IntentPackageManage,
	"scoop": domain.IntentPackageManage, "gem": domain.IntentPackageManage, "cargo": domain.IntentPackageManage,
	"go": domain.IntentPackageManage, "snap": domain.IntentPackageManage, "flatpak": domain.IntentPackageManage,
	"install-module": domain.IntentPackageManage, "uninstall-module": domain.IntentPackageManage,
	"install-package": domain.IntentPackageManage, "uninstall-package": domain.IntentPackageManage,

	// power
	"shutdown": domain.IntentPower, "reboot": domain.IntentPower, "poweroff": domain.IntentPower,
	"halt": domain.IntentPower, "init": domain.IntentPower, "stop-computer": domain.IntentPower,
	"restart-computer": domain.IntentPower,

	// tools with their own subcommand grammar
	"git": domain.IntentVersionControl, "docker": domain.IntentContainer, "podman": domain.IntentContainer, "kubectl": domain.IntentContainer,

	"vim": domain.IntentEditor, "vi": domain.IntentEditor, "nvim": domain.IntentEditor, "nano": domain.IntentEditor,
	"emacs": domain.IntentEditor, "notepad": domain.IntentEditor, "code": domain.IntentEditor,
}

// implied subcommands for cmdlets that encode their verb in the name
var impliedSubcommands = map[string]string{
	"install-module":    "install",
	"install-package":   "install",
	"uninstall-module":  "uninstall",
	"uninstall-package": "uninstall",
}

// subcommands that only read state, per program
var readOnlySubcommands = map[string]map[string]bool{
	"reg":       {"query": true, "export": true, "compare": true},
	"systemctl": {"status": true, "list-units": true, "list-unit-files": true, "list-timers": true, "show": true, "cat": true, "is-active": true, "is-enabled": true, "is-failed": true},
	"launchctl": {"list": true, "print": true, "blame": true},
	"sc":        {"query": true, "queryex": true, "qc": true, "qdescription": true},
	"vssadmin":  {"list": true},
	"wevtutil":  {"el": true, "enum-logs": true, "qe": true, "query-events": true, "gl": true, "get-log": true},
	"ufw":       {"status": true},
	"net":       {"view": true, "statistics": true, "config": true},
	"docker":    {"ps": true, "images": true, "inspect": true, "logs": true, "version": true, "info": true, "stats": true, "top": true, "port": true, "history": true, "search": true, "diff": true},
	"podman":    {"ps": true, "images": true, "inspect": true, "logs": true, "version": true, "info": true, "stats": true, "top": true, "port": true, "history": true, "search": true, "diff": true},
	"kubectl":   {"get": true, "describe": true, "logs": true, "version": true, "explain": true, "top": true, "api-resources": true, "api-versions": true, "cluster-info": true, "diff": true},
}

// statement keywords of PowerShell, CMD and Fish
var statementKeywords = map[string]bool{
	"if": true, "elseif": true, "else": true, "for": true, "foreach": true, "while": true, "do": true,
	"until": true, "switch": true, "try": true, "catch": true, "finally": true, "trap": true,
	"function": true, "filter": true,
}

// shells that accept an inline script after -c, and the dialect of that script
var inlineShells = map[string]domain.ShellDialect{
	"sh":   domain.DialectBash,
	"bash": domain.DialectBash,
	"dash": domain.DialectBash,
	"ksh":  domain.DialectBash,
	"zsh":  domain.DialectZsh,
	"fish": domain.DialectFish,
}

func lookupProgram(name string) (domain.Intent, bool) {
	if intent, ok := programIntents[name]; ok {
		return intent, true
	}
	if strings.HasPrefix(name, "mkfs") || strings.HasPrefix(name, "mke2fs") || strings.HasPrefix(name, "newfs") {
		return domain.IntentFormatDevice, true
	}
	if strings.HasPrefix(name, "python3.") {
		return domain.IntentScriptExec, true
	}
	return domain.IntentUnrecognized, false
}

// programName reduces a path or invocation to its lower-cased base name.
func programName(word string) string {
	name := strings.ReplaceAll(word, `\`, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 && idx < len(name)-1 {
		name = name[idx+1:]
	}
	name = strings.ToLower(name)
	for _, ext := range []string{".exe", ".com", ".bat", ".cmd"} {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
