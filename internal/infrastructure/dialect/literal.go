package dialect

import (
	"fmt"
	"sort"

	"github.com/doeshing/aiterm/internal/domain"
)

// Operation is an abstract shell action that every dialect spells differently.
type Operation string

const (
	OpListFiles            Operation = "list-files"
	OpShowDirectory        Operation = "show-directory"
	OpClearScreen          Operation = "clear-screen"
	OpListProcesses        Operation = "list-processes"
	OpCreateFile           Operation = "create-file"
	OpMakeDirectory        Operation = "make-directory"
	OpRemoveFile           Operation = "remove-file"
	OpRemoveRecursive      Operation = "remove-recursive"
	OpForceRemoveRecursive Operation = "force-remove-recursive"
	OpCopy                 Operation = "copy"
	OpMove                 Operation = "move"
	OpShowFile             Operation = "show-file"
	OpSearchText           Operation = "search-text"
	OpSystemInfo           Operation = "system-info"
	OpDiskUsage            Operation = "disk-usage"
	OpKillProcess          Operation = "kill-process"
	OpDownload             Operation = "download"
	OpChangePermissions    Operation = "change-permissions"
	OpFormatDevice         Operation = "format-device"
	OpElevate              Operation = "elevate"
	OpRegistryEdit         Operation = "registry-edit"
	OpInstallPackage       Operation = "install-package"
)

type operationSpec struct {
	intent    domain.Intent
	modifiers []string
	// argument marks literals that expect operands appended after them.
	argument bool
	// posix covers bash and zsh, and fish unless fish is set.
	posix      string
	fish       string
	powershell string
	cmd        string
}

var operations = map[Operation]operationSpec{
	OpListFiles: {
		intent: domain.IntentList, argument: true,
		posix: "ls -la", powershell: "Get-ChildItem -Force", cmd: "dir /a",
	},
	OpShowDirectory: {
		intent: domain.IntentInspect,
		posix:  "pwd", powershell: "Get-Location", cmd: "cd",
	},
	OpClearScreen: {
		intent: domain.IntentInspect,
		posix:  "clear", powershell: "Clear-Host", cmd: "cls",
	},
	OpListProcesses: {
		intent: domain.IntentInspect,
		posix:  "ps aux", powershell: "Get-Process", cmd: "tasklist",
	},
	OpCreateFile: {
		intent: domain.IntentCreateFile, argument: true,
		posix: "touch", powershell: "New-Item -ItemType File -Path", cmd: "type nul >",
	},
	OpMakeDirectory: {
		intent: domain.IntentMakeDirectory, argument: true,
		posix: "mkdir -p", powershell: "New-Item -ItemType Directory -Force -Path", cmd: "mkdir",
	},
	OpRemoveFile: {
		intent: domain.IntentDelete, argument: true,
		posix: "rm", powershell: "Remove-Item", cmd: "del",
	},
	OpRemoveRecursive: {
		intent: domain.IntentDelete, modifiers: []string{domain.ModRecursive}, argument: true,
		posix: "rm -r", powershell: "Remove-Item -Recurse", cmd: "rmdir /s",
	},
	OpForceRemoveRecursive: {
		intent: domain.IntentDelete, modifiers: []string{domain.ModRecursive, domain.ModForce}, argument: true,
		posix: "rm -rf", powershell: "Remove-Item -Recurse -Force", cmd: "rmdir /s /q",
	},
	OpCopy: {
		intent: domain.IntentCopy, argument: true,
		posix: "cp", powershell: "Copy-Item", cmd: "copy",
	},
	OpMove: {
		intent: domain.IntentMove, argument: true,
		posix: "mv", powershell: "Move-Item", cmd: "move",
	},
	OpShowFile: {
		intent: domain.IntentRead, argument: true,
		posix: "cat", powershell: "Get-Content", cmd: "type",
	},
	OpSearchText: {
		intent: domain.IntentSearch, argument: true,
		posix: "grep -rn", powershell: "Select-String -Pattern", cmd: "findstr /s /i",
	},
	OpSystemInfo: {
		intent: domain.IntentInspect,
		posix:  "uname -a", powershell: "Get-ComputerInfo", cmd: "systeminfo",
	},
	OpDiskUsage: {
		intent: domain.IntentInspect,
		posix:  "df -h", powershell: "Get-PSDrive -PSProvider FileSystem",
	},
	OpKillProcess: {
		intent: domain.IntentProcessKill, argument: true,
		posix: "kill", powershell: "Stop-Process -Id", cmd: "taskkill /PID",
	},
	OpDownload: {
		intent: domain.IntentNetworkTransfer, argument: true,
		posix: "curl -fLO", powershell: "Invoke-WebRequest -Uri", cmd: "curl -fLO",
	},
	OpChangePermissions: {
		intent: domain.IntentPermissionChange, argument: true,
		posix: "chmod u+x", powershell: "icacls", cmd: "icacls",
	},
	OpFormatDevice: {
		intent: domain.IntentFormatDevice, argument: true,
		posix: "mkfs.ext4", powershell: "Format-Volume -DriveLetter", cmd: "format",
	},
	OpElevate: {
		intent: domain.IntentPrivilegeEscalation,
		posix:  "sudo -i", powershell: "Start-Process powershell -Verb RunAs", cmd: "runas /user:Administrator cmd",
	},
	OpRegistryEdit: {
		intent: domain.IntentRegistryEdit, argument: true,
		powershell: "Set-ItemProperty -Path", cmd: "reg add",
	},
	OpInstallPackage: {
		intent: domain.IntentPackageManage, argument: true,
		posix: "pip install", powershell: "pip install", cmd: "pip install",
	},
}

// Operations lists every known operation in a stable order.
func Operations() []Operation {
	out := make([]Operation, 0, len(operations))
	for op := range operations {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Intent is the canonical intent of the operation's literal in any dialect.
func (o Operation) Intent() domain.Intent {
	return operations[o].intent
}

// Modifiers lists the canonical modifiers the literal carries.
func (o Operation) Modifiers() []string {
	return operations[o].modifiers
}

// TakesArgument reports whether operands are appended after the literal.
func (o Operation) TakesArgument() bool {
	return operations[o].argument
}

// Literalize renders an operation in the dialect's syntax.
func Literalize(op Operation, dialect domain.ShellDialect) (string, error) {
	spec, ok := operations[op]
	if !ok {
		return "", fmt.Errorf("unknown operation %q", op)
	}
	var literal string
	switch dialect {
	case domain.DialectBash, domain.DialectZsh:
		literal = spec.posix
	case domain.DialectFish:
		literal = spec.fish
		if literal == "" {
			literal = spec.posix
		}
	case domain.DialectPowerShell:
		literal = spec.powershell
	case domain.DialectCMD:
		literal = spec.cmd
	default:
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
	if literal == "" {
		return "", fmt.Errorf("operation %s has no %s form", op, dialect)
	}
	return literal, nil
}
