package help

// ContextualUsageTemplate lists subcommands per group, keeping commands the
// workspace cannot run yet in a separate section with the reason.
const ContextualUsageTemplate = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$ctx := helpContext}}{{$cmds := .Commands}}{{range $group := .Groups}}{{with filterAvailable (inGroup $cmds $group.ID) $ctx}}

{{$group.Title}}{{range .}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{with filterAvailable (inGroup $cmds "") $ctx}}

Additional Commands:{{range .}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{with filterUnavailable $cmds $ctx}}

Not Available Yet:{{range .}}
  {{rpad .Name .NamePadding }} {{.Short}}{{with unavailableReason .Name}} ({{.}}){{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
