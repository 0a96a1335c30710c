package main

// Command names
const (
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameVersion  = "version"
	CmdNameHelp     = "help"
)

// Help topics that are not commands
const (
	HelpTopicSyntax = "syntax"
)

// Global aliases accepted in place of a command
const (
	AliasHelpShort    = "-h"
	AliasHelpLong     = "--help"
	AliasVersionShort = "-V"
	AliasVersionLong  = "--version"
)

// Flag names - long form
const (
	FlagTemplate = "template"
	FlagData     = "data"
	FlagDataFile = "data-file"
	FlagVar      = "var"
	FlagList     = "list"
	FlagOutput   = "output"
	FlagLenient  = "lenient"
	FlagVerbose  = "verbose"
	FlagFormat   = "format"
)

// Flag names - short form
const (
	FlagTemplateShort = "t"
	FlagDataShort     = "d"
	FlagDataFileShort = "f"
	FlagOutputShort   = "o"
	FlagVerboseShort  = "v"
	FlagFormatShort   = "F"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Binding flag syntax
const (
	BindingAssign        = "="
	BindingListSeparator = ","
)

// Data file extensions
const (
	DataFileExtYAML = ".yaml"
	DataFileExtYML  = ".yml"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand    = "unknown command"
	ErrMsgInvalidArguments  = "invalid arguments"
	ErrMsgMissingTemplate   = "template source required"
	ErrMsgInvalidData       = "invalid binding data"
	ErrMsgInvalidBinding    = "binding must be NAME=VALUE"
	ErrMsgEmptyBindingName  = "binding name cannot be empty"
	ErrMsgReadFileFailed    = "failed to read file"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgCompileFailed     = "template compilation failed"
	ErrMsgRenderFailed      = "template rendering failed"
	ErrMsgInvalidFormat     = "invalid output format"
	ErrMsgJSONMarshalFailed = "failed to marshal JSON"
	ErrMsgDataConflict      = "use either --data or --data-file, not both"
)

// Help text templates
const (
	HelpMainUsage = `go-tempel - placeholder and loop templating CLI

Usage:
    tempel <command> [options]

Commands:
    render      Render a template with bindings
    validate    Check a template and list its variables and loops
    version     Show version information
    help        Show help for a command or topic

Topics:
    syntax      Placeholder and loop syntax, and what render does with them

Use "tempel help <command>" for more information about a command.`

	HelpRenderUsage = `Render a template with bindings

Usage:
    tempel render [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -d, --data <json>       JSON object of bindings
    -f, --data-file <file>  JSON or YAML file of bindings
    --var NAME=VALUE        Bind a scalar (repeatable)
    --list NAME=a,b,c       Bind a list (repeatable)
    -o, --output <file>     Output file (default: stdout)
    --lenient               Render loops over unbound lists as empty
    -v, --verbose           Debug logging to stderr

Bindings from --var and --list override those from --data and --data-file.

Examples:
    tempel render -t greeting.txt --var name=Alice
    tempel render -t report.txt -f data.yaml -o report.out
    echo 'Hi {{ who }}' | tempel render -t - -d '{"who": "Bob"}'
    tempel render -t list.txt --list names=foo,bar,baz`

	HelpValidateUsage = `Check a template and list its variables and loops

Usage:
    tempel validate [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -F, --format <format>   Output format: text, json (default: text)

Exits with status 3 when the template is invalid.

Examples:
    tempel validate -t template.txt
    cat template.txt | tempel validate -t - -F json`

	HelpVersionUsage = `Show version information

Usage:
    tempel version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command or topic

Usage:
    tempel help [command|topic]

Commands:
    render      Show help for render command
    validate    Show help for validate command
    version     Show help for version command

Topics:
    syntax      Show the template syntax reference`

	HelpSyntaxUsage = `Template syntax

Placeholders:
    {{ name }}
        Replaced by the value bound to name. Spaces and tabs inside
        the braces are ignored.
        A list bound to a placeholder renders as [a, b, c].
        An unbound placeholder is left in the output as written.

Loops:
    {% for item in items %} ... {% endfor %}
        Repeats the body once per element of the list bound to items,
        with {{ item }} set to the element. item and items are letters
        and underscores. An empty list renders nothing.
        A loop over an unbound list fails the render unless --lenient
        is given, in which case it renders nothing.

Errors:
    A template whose {{ and }} do not pair up, whose for and endfor tags
    do not pair up, or that nests one loop inside another is rejected by
    render and validate with exit status 3 and the line and column of
    the problem.

Example:
    $ cat menu.txt
    Today: {% for dish in dishes %}{{ dish }}; {% endfor %}by {{ chef }}
    $ tempel render -t menu.txt --list dishes=soup,pie --var chef=Ana
    Today: soup; pie; by Ana`

	HelpFmtSuggestion = "Did you mean %q?\n"
)

// Version output format templates
const (
	VersionTextTemplate = "go-tempel version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
	VersionsFileName    = "versions.yaml"
)

// Validation output format templates
const (
	ValidationTextSuccess   = "Template is valid"
	ValidationTextInvalid   = "Template is invalid"
	ValidationTextVariables = "Variables: %s"
	ValidationTextLoops     = "Loops: %s"
	ValidationTextLoop      = "%s in %s"
	ValidationTextPosition  = "  at line %d, column %d"
	ValidationTextRange     = "  delimiters at offsets %d and %d"
	ValidationTextNone      = "(none)"
	ValidationTextJoin      = ", "
)

// CLI metadata
const (
	CLIName = "tempel"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
)
